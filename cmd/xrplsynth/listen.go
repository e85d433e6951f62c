package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/xrplsynth"
)

func newListenCmd() *cobra.Command {
	var listenAddr string
	var maxPeers int
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Accept peer connections and log inbound traffic",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts, err := optionsFromCmd(cmd)
			if err != nil {
				return err
			}
			opts.ListenAddr = listenAddr
			opts.MaxPeers = maxPeers

			node, err := xrplsynth.New(opts)
			if err != nil {
				return err
			}
			defer node.ShutDown()

			addr, err := node.StartListening()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "listening: %s\nnode_public: %s\n", addr, node.NodePublic())

			node.OnDisconnect(func(remote string, reason error) {
				entry := logrus.WithField("remote", remote)
				if reason != nil {
					entry = entry.WithError(reason)
				}
				entry.Info("peer disconnected")
			})

			for {
				env, err := node.RecvMessage(runCtx)
				if err != nil {
					if runCtx.Err() != nil {
						return nil
					}
					return err
				}
				logrus.WithFields(logrus.Fields{
					"from":  env.From,
					"peer":  env.Peer.Short(),
					"type":  env.Type.String(),
					"bytes": len(env.Raw),
				}).Info("message")
			}
		},
	}
	cmd.Flags().StringVar(&listenAddr, "addr", "0.0.0.0:51235", "Bind address")
	cmd.Flags().IntVar(&maxPeers, "max-peers", 10, "Inbound admission limit")
	return cmd
}
