package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/itaulink/itaulink/internal/accounts"
	"github.com/itaulink/itaulink/internal/config"
	"github.com/itaulink/itaulink/internal/export"
	"github.com/itaulink/itaulink/internal/fetchlog"
	"github.com/itaulink/itaulink/internal/model"
	"github.com/itaulink/itaulink/internal/statement"
)

type fetchOptions struct {
	creds    credentials
	saveCSV  bool
	out      string
	epoch    string
	accounts []string
}

func newFetchCommand(opts *globalOptions) *cobra.Command {
	fo := &fetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Log in and download the full statement history of every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts, fo)
		},
	}

	fo.creds.register(cmd)
	cmd.Flags().BoolVar(&fo.saveCSV, "save-csv", false, "write a statement file per account instead of printing a summary")
	cmd.Flags().StringVar(&fo.out, "out", "", "directory for exported files (default from config)")
	cmd.Flags().StringVar(&fo.epoch, "epoch", "", "earliest statement date as YYYY-MM-DD; its month is not fetched")
	cmd.Flags().StringSliceVar(&fo.accounts, "account", nil, "fetch only these account IDs (repeatable)")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *globalOptions, fo *fetchOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := fo.creds.apply(cfg); err != nil {
		return err
	}
	if fo.out != "" {
		cfg.Export.Dir = fo.out
	}
	if fo.epoch != "" {
		cfg.Fetch.Epoch = fo.epoch
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	epoch, err := cfg.EpochDate()
	if err != nil {
		return err
	}

	ctx, log, runID := opts.runContext(cmd, cfg)
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	session, listing, err := client.Authenticate(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return err
	}
	catalog, err := accounts.Parse(listing)
	if err != nil {
		return fmt.Errorf("reading account listing: %w", err)
	}
	accts, err := selectAccounts(accounts.NewService(catalog), fo.accounts)
	if err != nil {
		return err
	}
	log.Info().Int("accounts", len(accts)).Str("epoch", cfg.Fetch.Epoch).Msg("logged in")

	results := client.FetchAccounts(ctx, session, accts, epoch)
	fetched := make([]model.Account, len(results))
	for i, r := range results {
		fetched[i] = r.Account
		warnInvalid(log, r.Account)
	}

	if !fo.saveCSV {
		printSummary(cmd.OutOrStdout(), results)
		return nil
	}
	return saveExports(cmd, cfg, runID, fetched, results)
}

// selectAccounts returns the accounts named by ids, in the order given and
// without repeats, or the whole catalog when ids is empty.
func selectAccounts(svc *accounts.Service, ids []string) ([]model.Account, error) {
	if len(ids) == 0 {
		return svc.All(), nil
	}

	seen := make(map[string]bool, len(ids))
	selected := make([]model.Account, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		acct, ok := svc.Get(id)
		if !ok {
			return nil, fmt.Errorf("account %s not found", id)
		}
		selected = append(selected, acct)
	}
	return selected, nil
}

// warnInvalid logs every invariant the aggregated account breaks. Exports
// still go ahead.
func warnInvalid(log zerolog.Logger, acct model.Account) {
	for _, v := range statement.Validate(acct) {
		log.Warn().Err(v).Str("account", acct.ID).Msg("statement failed validation")
	}
}

func saveExports(cmd *cobra.Command, cfg *config.Config, runID string, fetched []model.Account, results []statement.Result) error {
	dir := cfg.Export.Dir

	paths, err := export.SaveAll(dir, fetched)
	if err != nil {
		return err
	}
	if err := accounts.NewService(fetched).Save(dir); err != nil {
		return err
	}
	if cfg.Export.FetchReport {
		if err := fetchlog.Append(dir, fetchlog.FromResults(runID, time.Now().UTC(), results)); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintf(out, "Wrote %s\n", p)
	}
	return nil
}
