package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godamri/helix-config/config"
	"github.com/godamri/helix-config/tree"
)

func newCheckCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Boot the service configuration and report the first failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var fingerprint string
			_, err := config.BootContextOf[AppConfig](cmd.Context(),
				config.WithSource(e.source),
				config.WithLogger(e.logger),
				config.OnLoaded(func(root *tree.Tree) { fingerprint = config.Fingerprint(root) }),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration OK (%s)\n", fingerprint)
			return nil
		},
	}
}
