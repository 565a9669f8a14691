package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itme/solidacl/internal/wac"
)

func newSetCmd() *cobra.Command {
	var modesCSV string
	var asDefault bool

	cmd := &cobra.Command{
		Use:   "set <url>",
		Short: "Grant a principal exactly the given access to a resource",
		Long: `Set rewrites the resource's ACL so the selected principal holds exactly
the given modes, without touching any other principal's access. A resource
without its own ACL gets one first, initialized from the ACL it currently
inherits. An empty --modes revokes the principal's grant.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			grantee, err := granteeFromFlags(cmd)
			if err != nil {
				return err
			}
			desired, err := parseModes(modesCSV)
			if err != nil {
				return err
			}
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

			var acl *wac.RuleSet
			switch {
			case res.ResourceAcl != nil:
				acl = res.ResourceAcl
			case res.FallbackAcl != nil:
				if acl, err = wac.NewACLFromFallback(res); err != nil {
					return err
				}
			default:
				if res.AclURL == "" {
					return fmt.Errorf("cannot edit access for %s: acl location unknown", url)
				}
				if acl, err = wac.NewACL(res); err != nil {
					return err
				}
			}

			scope := wac.ScopeResource
			if asDefault {
				scope = wac.ScopeDefault
			}
			updated := wac.SetAccess(acl, grantee, scope, desired)

			saved, err := wac.SaveACL(ctx, client, res, updated)
			if err != nil {
				return err
			}

			res.ResourceAcl = saved
			modes, resolved := wac.AccessFor(res, grantee)
			return printReport(url, modes, resolved)
		},
	}

	granteeFlags(cmd)
	cmd.Flags().StringVar(&modesCSV, "modes", "", "Comma-separated modes: read,append,write,control (empty revokes)")
	cmd.Flags().BoolVar(&asDefault, "default", false, "Edit the container's inheritable defaults instead of its own access")
	return cmd
}
