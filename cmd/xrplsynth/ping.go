package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/opd-ai/xrplsynth"
	"github.com/opd-ai/xrplsynth/protocol"
)

func newPingCmd() *cobra.Command {
	var count int
	var interval time.Duration
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "ping <host:port>",
		Short: "Handshake with a peer and measure ping round trips",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts, err := optionsFromCmd(cmd)
			if err != nil {
				return err
			}
			node, err := xrplsynth.New(opts)
			if err != nil {
				return err
			}
			defer node.ShutDown()

			target := args[0]
			if err := node.Connect(runCtx, target); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "connected: %s\n", target)

			for seq := uint32(1); seq <= uint32(count); seq++ {
				sent := time.Now()
				if _, err := node.Unicast(target, &protocol.Ping{
					Kind:     protocol.PingTypePing,
					Seq:      seq,
					PingTime: uint64(sent.Unix()),
				}); err != nil {
					return err
				}

				env, ok := node.ExpectMessage(func(e xrplsynth.Envelope) bool {
					p, isPing := e.Payload.(*protocol.Ping)
					return isPing && p.Kind == protocol.PingTypePong && p.Seq == seq
				}, timeout)
				if !ok {
					return fmt.Errorf("no pong for seq %d within %s", seq, timeout)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pong seq=%d peer=%s rtt=%s\n",
					seq, env.Peer.Short(), time.Since(sent).Round(time.Microsecond))

				if seq < uint32(count) {
					select {
					case <-time.After(interval):
					case <-runCtx.Done():
						return nil
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 3, "Number of pings to send")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Delay between pings")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Per-ping pong deadline")
	return cmd
}
