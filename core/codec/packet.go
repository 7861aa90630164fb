// Package codec provides the JSON wire format for distance-vector routing
// packets.
//
// Every packet on the wire is a single JSON object, UTF-8 encoded, at most
// 1024 bytes: an envelope carrying a destination, an opaque data payload, and
// a hop counter. The envelope's Data field is decoded into ControlData for
// Broadcast packets and into DataPayload for everything else.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxPacketSize is the maximum size, in bytes, of an encoded packet. Payloads
// that would exceed this are a caller error, not a wire condition this
// package enforces on decode (a peer could send something larger; it is
// simply outside the protocol's contract).
const MaxPacketSize = 1024

// ErrMalformedPacket is returned when a packet fails to decode or is missing
// a required envelope field.
var ErrMalformedPacket = errors.New("malformed packet")

// Packet is the envelope shared by every packet on the wire.
//
// Data is kept as a json.RawMessage so that a packet in transit can be
// re-marshaled with only Hop changed, without round-tripping through a typed
// representation of a payload this node may not even inspect.
type Packet struct {
	Destination string          `json:"destination"`
	Data        json.RawMessage `json:"data"`
	Hop         int             `json:"hop"`
}

// ControlData is the payload of a Broadcast (Hello or Update) packet.
type ControlData struct {
	// Name is the sender's router name.
	Name string `json:"name"`
	// Port is the sender's input port on the link the broadcast was sent
	// over. Nothing on the receive side currently consumes this field; it
	// is carried for diagnostic logging and forward compatibility.
	Port int `json:"port"`
	// Hello is 1 for the bootstrap broadcast, 0 for a periodic or triggered
	// update. It is an int, not a bool, to match the wire shape literally.
	Hello int `json:"Hello"`
	// Msg is a human-readable tag, not protocol-significant.
	Msg string `json:"msg"`
	// DVector is the sender's full distance vector at the time of sending.
	DVector map[string]int `json:"d_vector"`
}

// IsHello reports whether this control packet is a bootstrap Hello rather
// than a periodic or triggered Update.
func (c ControlData) IsHello() bool {
	return c.Hello != 0
}

// DataPayload is the payload of a packet addressed to a specific router name.
type DataPayload struct {
	Msg string `json:"msg"`
}

// Decode parses a raw datagram into a Packet envelope. It returns
// ErrMalformedPacket if the bytes are not valid JSON or the envelope is
// missing its destination or data fields.
func Decode(raw []byte) (*Packet, error) {
	var p Packet
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}
	if p.Destination == "" || len(p.Data) == 0 {
		return nil, fmt.Errorf("%w: missing destination or data", ErrMalformedPacket)
	}
	return &p, nil
}

// Encode serializes the packet envelope back to its wire form.
func (p *Packet) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// DecodeControlData parses the envelope's Data field as a Broadcast payload.
func (p *Packet) DecodeControlData() (*ControlData, error) {
	var cd ControlData
	if err := json.Unmarshal(p.Data, &cd); err != nil {
		return nil, fmt.Errorf("%w: invalid control data: %v", ErrMalformedPacket, err)
	}
	return &cd, nil
}

// DecodeDataPayload parses the envelope's Data field as an addressed-packet
// payload.
func (p *Packet) DecodeDataPayload() (*DataPayload, error) {
	var dp DataPayload
	if err := json.Unmarshal(p.Data, &dp); err != nil {
		return nil, fmt.Errorf("%w: invalid data payload: %v", ErrMalformedPacket, err)
	}
	return &dp, nil
}

// BuildControlPacket constructs a Broadcast envelope carrying the given
// distance vector. hello selects between the bootstrap and update framing;
// msg is the human-readable tag carried alongside the vector. Control
// packets always carry hop=1 and are never built by incrementing an existing
// packet's hop, per the protocol's rule that control packets are freshly
// originated on every broadcast, not relayed verbatim.
func BuildControlPacket(name string, port int, hello bool, msg string, vector map[string]int) (*Packet, error) {
	h := 0
	if hello {
		h = 1
	}
	data, err := json.Marshal(ControlData{
		Name:    name,
		Port:    port,
		Hello:   h,
		Msg:     msg,
		DVector: vector,
	})
	if err != nil {
		return nil, fmt.Errorf("building control packet: %w", err)
	}
	return &Packet{
		Destination: "Broadcast",
		Data:        data,
		Hop:         1,
	}, nil
}

// BuildDataPacket constructs a packet addressed to destination, starting at
// the given hop count, carrying msg as its payload.
func BuildDataPacket(destination, msg string, hop int) (*Packet, error) {
	data, err := json.Marshal(DataPayload{Msg: msg})
	if err != nil {
		return nil, fmt.Errorf("building data packet: %w", err)
	}
	return &Packet{
		Destination: destination,
		Data:        data,
		Hop:         hop,
	}, nil
}

// WithHop returns a copy of the packet with Hop replaced. The envelope's Data
// is shared (it is never mutated in place), matching the protocol's rule that
// only the hop counter changes as a data packet transits a router.
func (p *Packet) WithHop(hop int) *Packet {
	return &Packet{
		Destination: p.Destination,
		Data:        p.Data,
		Hop:         hop,
	}
}
