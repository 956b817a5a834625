package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godamri/helix-config/config"
	"github.com/godamri/helix-config/source"
)

func newRenderCmd(e *env) *cobra.Command {
	var fingerprintOnly bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the redacted effective configuration tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := source.Load(e.source)
			if err != nil {
				return err
			}
			if fingerprintOnly {
				fmt.Fprintln(cmd.OutOrStdout(), config.Fingerprint(root))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), config.Redact(root).Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&fingerprintOnly, "fingerprint", false, "print only the configuration fingerprint")
	return cmd
}
