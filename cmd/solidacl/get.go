package main

import (
	"github.com/spf13/cobra"

	"github.com/itme/solidacl/internal/wac"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <url>",
		Short: "Resolve the effective access a principal has to a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			grantee, err := granteeFromFlags(cmd)
			if err != nil {
				return err
			}
			client, err := newPodClient()
			if err != nil {
				return err
			}

			url := args[0]
			modes, resolved, err := wac.ResolveAccess(cmd.Context(), client, url, grantee)
			if err != nil {
				return err
			}
			return printReport(url, modes, resolved)
		},
	}
	granteeFlags(cmd)
	return cmd
}
