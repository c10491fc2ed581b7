package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	_ "golang.org/x/crypto/x509roots/fallback"

	sqliteadapter "github.com/ericfisherdev/reviewhub/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/reviewhub/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(slog.Default()).ExecuteContext(ctx); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

// cli carries state shared by all subcommands. cfg is populated before any
// subcommand runs.
type cli struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	c := &cli{logger: logger}

	root := &cobra.Command{
		Use:           "reviewhub",
		Short:         "ReviewHub review API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			return nil
		},
	}

	root.AddCommand(
		c.serveCommand(),
		c.userCommand(),
		c.tokenCommand(),
		c.repoCommand(),
	)

	return root
}

// openDB opens the database and brings its schema up to date. The caller
// must close the returned DB.
func (c *cli) openDB(ctx context.Context) (*sqliteadapter.DB, error) {
	db, err := sqliteadapter.NewDB(ctx, c.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	c.logger.Info("database opened", "path", c.cfg.DBPath)

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func (c *cli) closeDB(db *sqliteadapter.DB) {
	if err := db.Close(); err != nil {
		c.logger.Error("error closing database", "error", err)
	}
}
