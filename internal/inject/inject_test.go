package inject

import (
	"net"
	"testing"
	"time"

	"github.com/kprusa/dvrouted/core/codec"
)

func TestSend_DeliversExpectedPacket(t *testing.T) {
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 19101}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}
	defer conn.Close()

	if err := Send(19101, "R3", "hi", 0); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	buf := make([]byte, 1024)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("ReadFromUDP() error = %v", err)
	}

	pkt, err := codec.Decode(buf[:n])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if pkt.Destination != "R3" || pkt.Hop != 0 {
		t.Errorf("pkt = %+v, want destination=R3 hop=0", pkt)
	}
	dp, err := pkt.DecodeDataPayload()
	if err != nil {
		t.Fatalf("DecodeDataPayload() error = %v", err)
	}
	if dp.Msg != "hi" {
		t.Errorf("Msg = %q, want hi", dp.Msg)
	}
}

func TestSend_ErrorsOnInvalidPort(t *testing.T) {
	// DialUDP for loopback UDP never itself errors on a missing listener
	// (connectionless), so Send's own error path is exercised by an
	// invalid port instead.
	if err := Send(-1, "R1", "x", 0); err == nil {
		t.Error("Send() with invalid port: error = nil, want error")
	}
}
