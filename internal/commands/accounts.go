package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itaulink/itaulink/internal/accounts"
	"github.com/itaulink/itaulink/internal/model"
)

func newAccountsCommand(opts *globalOptions) *cobra.Command {
	var creds credentials
	var accountType string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Log in and list accounts without downloading statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := creds.apply(cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx, _, _ := opts.runContext(cmd, cfg)
			client, err := newClient(cfg)
			if err != nil {
				return err
			}
			_, listing, err := client.Authenticate(ctx, cfg.Username, cfg.Password)
			if err != nil {
				return err
			}
			catalog, err := accounts.Parse(listing)
			if err != nil {
				return fmt.Errorf("reading account listing: %w", err)
			}
			accts, err := filterByType(accounts.NewService(catalog), accountType)
			if err != nil {
				return err
			}
			return printAccounts(cmd, accts)
		},
	}
	creds.register(cmd)
	cmd.Flags().StringVar(&accountType, "type", "", "list only one account type (savings, transactional, collections, junior-savings)")

	return cmd
}

// filterByType returns the accounts of the named type, or all of them when
// name is empty.
func filterByType(svc *accounts.Service, name string) ([]model.Account, error) {
	if name == "" {
		return svc.All(), nil
	}
	for _, cat := range accounts.Categories {
		if string(cat.Type) == name {
			return svc.ByType(cat.Type), nil
		}
	}
	return nil, fmt.Errorf("unknown account type %q", name)
}

func printAccounts(cmd *cobra.Command, accts []model.Account) error {
	if len(accts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts found.")
		return nil
	}
	return accounts.WriteAccounts(cmd.OutOrStdout(), accts)
}
