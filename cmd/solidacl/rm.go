package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itme/solidacl/internal/wac"
)

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <url>",
		Short: "Remove a resource's own ACL so it inherits from its container again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			client, err := newPodClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			url := args[0]

			res, err := wac.ResolveACL(ctx, client, url)
			if err != nil {
				return err
			}
			if !res.HasResourceACL() {
				return fmt.Errorf("%s has no resource acl", url)
			}

			if _, err := wac.DeleteACL(ctx, client, res); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", res.AclURL)
			return nil
		},
	}
}
