package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/xrplsynth"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xrplsynth",
		Short: "Synthetic XRPL peer",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return applyLogLevel(cmd)
		},
	}
	cmd.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().String("identifier", "", "User-Agent / Server string (default xrplsynth-<node id>)")
	cmd.PersistentFlags().Uint32("network-id", 0, "Network-ID header value; 0 omits the check")

	cmd.AddCommand(newListenCmd())
	cmd.AddCommand(newPingCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func applyLogLevel(cmd *cobra.Command) error {
	raw, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}
	level, err := logrus.ParseLevel(raw)
	if err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	logrus.SetLevel(level)
	return nil
}

// optionsFromCmd maps the persistent flags onto node options.
func optionsFromCmd(cmd *cobra.Command) (*xrplsynth.Options, error) {
	opts := xrplsynth.NewOptions()

	identifier, err := cmd.Flags().GetString("identifier")
	if err != nil {
		return nil, err
	}
	if identifier != "" {
		opts.Identifier = identifier
	}

	networkID, err := cmd.Flags().GetUint32("network-id")
	if err != nil {
		return nil, err
	}
	opts.NetworkID = networkID

	opts.Logger = logrus.StandardLogger()
	return opts, nil
}
