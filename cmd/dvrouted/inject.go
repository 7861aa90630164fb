package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kprusa/dvrouted/internal/inject"
)

var (
	injectPort        int
	injectDestination string
	injectMsg         string
	injectHop         int
)

var injectCmd = &cobra.Command{
	Use:   "inject",
	Short: "send a single data packet into a running topology",
	RunE:  runInject,
}

func init() {
	injectCmd.Flags().IntVar(&injectPort, "port", 0, "input port of the router to inject into (required)")
	injectCmd.Flags().StringVar(&injectDestination, "dest", "", "destination router name (required)")
	injectCmd.Flags().StringVar(&injectMsg, "msg", "", "message payload")
	injectCmd.Flags().IntVar(&injectHop, "hop", 0, "initial hop count")
	_ = injectCmd.MarkFlagRequired("port")
	_ = injectCmd.MarkFlagRequired("dest")
}

func runInject(cmd *cobra.Command, args []string) error {
	if err := inject.Send(injectPort, injectDestination, injectMsg, injectHop); err != nil {
		return fmt.Errorf("injecting packet: %w", err)
	}
	return nil
}
