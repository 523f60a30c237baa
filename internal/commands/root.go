package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/itaulink/itaulink/internal/buildinfo"
	"github.com/itaulink/itaulink/internal/config"
	"github.com/itaulink/itaulink/internal/logger"
	"github.com/itaulink/itaulink/internal/portal"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = "itaulink.yaml"

type globalOptions struct {
	configPath string
	envFile    string
	verbose    int
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "itaulink",
		Short:   "Download account statements from Itaú Link",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", DefaultConfigFile, "path to itaulink.yaml")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file with ITAULINK_* variables")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (-v info, -vv debug)")

	rootCmd.AddCommand(newFetchCommand(opts))
	rootCmd.AddCommand(newAccountsCommand(opts))
	rootCmd.AddCommand(newInitConfigCommand(opts))

	return rootCmd
}

// loadConfig layers the config file, the dotenv file and the environment.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, o.envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runContext returns a context carrying a logger tagged with a fresh run id.
func (o *globalOptions) runContext(cmd *cobra.Command, cfg *config.Config) (context.Context, zerolog.Logger, string) {
	level := logger.ParseLevel(cfg.Log.Level)
	if o.verbose > 0 {
		level = logger.LevelForVerbosity(o.verbose)
	}

	runID := uuid.NewString()
	log := logger.NewConsole(cmd.ErrOrStderr(), level).With().Str("run_id", runID).Logger()
	return logger.WithContext(cmd.Context(), log), log, runID
}

type credentials struct {
	username string
	password string
}

func (c *credentials) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.username, "username", "", "Itaú Link username, usually a Uruguayan identity card number (or "+config.EnvUsername+")")
	cmd.Flags().StringVar(&c.password, "password", "", "Itaú Link password (or "+config.EnvPassword+")")
}

// apply overrides cfg's credentials with any flags given and requires both.
func (c *credentials) apply(cfg *config.Config) error {
	if c.username != "" {
		cfg.Username = c.username
	}
	if c.password != "" {
		cfg.Password = c.password
	}
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("username and password are required (--username/--password or %s/%s)",
			config.EnvUsername, config.EnvPassword)
	}
	return nil
}

func newClient(cfg *config.Config) (*portal.Client, error) {
	return portal.NewClient(cfg.Portal.BaseURL, cfg.Portal.Timeout,
		portal.WithConcurrency(cfg.Fetch.Concurrency),
		portal.WithRateLimit(cfg.Fetch.RequestsPerSecond),
	)
}
