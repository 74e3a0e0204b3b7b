// Package main is the entry point of the content server. The serve command
// reconciles the content schema and starts the HTTP server; reconcile and
// describe work on the schema from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"contentcms/internal/cache"
	"contentcms/internal/config"
	"contentcms/internal/database"
	"contentcms/internal/engine"
	"contentcms/internal/models"
	"contentcms/internal/reconcile"
	"contentcms/internal/schema"
	"contentcms/internal/store"
)

// cfg is loaded from the environment before any command runs.
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "contentcms",
	Short: "Schema driven content groups for web pages and emails",
	Long: `contentcms keeps stored content groups in line with a declared schema,
serves an editing API for them with live previews, and serves their content
to sites.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = c
		setupLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(describeCmd)
}

// setupLogger installs the default logger: JSON in production, text with
// debug output in development.
func setupLogger(c *config.Config) {
	if c.IsDev() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
		return
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
}

// loadSchema reads the configured schema file, or the example schema when
// none is configured. Every preview template is compiled before the schema
// is returned.
func loadSchema(c *config.Config, eng *engine.Engine) (*schema.Schema, error) {
	content, err := c.ContentDefinition().Finalize()
	if err != nil {
		return nil, err
	}

	var s *schema.Schema
	if c.SchemaFile != "" {
		s, err = schema.LoadFile(c.SchemaFile, content)
	} else {
		slog.Warn("no content schema configured, using the example schema")
		s, err = schema.Example(content)
	}
	if err != nil {
		return nil, err
	}

	if err := eng.ValidateSchema(s); err != nil {
		return nil, err
	}
	return s, nil
}

// runLog records reconciliation runs. It is implemented by
// store.ReconcileLogStore.
type runLog interface {
	Log(created, updated, removed int, runErr error) error
	RecentEntries(limit int) ([]store.ReconcileLogEntry, error)
}

// app holds what the serve and reconcile commands share.
type app struct {
	schema *schema.Schema
	engine *engine.Engine
	repo   store.Repository

	// runs is nil on the memory store.
	runs    runLog
	closers []func() error
}

// openApp loads the schema and opens the configured repository, with the
// Valkey cache in front of it when enabled.
func openApp(c *config.Config) (*app, error) {
	a := &app{engine: engine.New()}

	s, err := loadSchema(c, a.engine)
	if err != nil {
		return nil, err
	}
	a.schema = s

	switch c.Store {
	case config.StoreMemory:
		slog.Warn("using the in-memory store, content is lost on exit")
		a.repo = store.NewMemoryStore()
	default:
		db, err := database.Connect(c.DSN(), database.Pool{MaxOpenConns: c.DBMaxOpenConns})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if _, err := database.Migrate(db); err != nil {
			a.Close()
			return nil, err
		}
		a.repo = store.NewContentGroupStore(db)
		a.runs = store.NewReconcileLogStore(db)
	}

	if c.CacheEnabled() {
		client, err := cache.ConnectValkey(cache.ValkeyOptions{
			Host:     c.ValkeyHost,
			Port:     c.ValkeyPort,
			Password: c.ValkeyPassword,
			DB:       c.ValkeyDB,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.repo = cache.NewGroupCache(a.repo, client, c.CacheTTL)
	}

	return a, nil
}

// reconcile brings the stored groups in line with the schema and records
// the run.
func (a *app) reconcile() (reconcile.Result, error) {
	res, err := reconcile.New(a.repo, models.SystemClock).Run(a.schema)
	if a.runs != nil {
		if logErr := a.runs.Log(res.Created, res.Updated, res.Removed, err); logErr != nil {
			slog.Warn("failed to record reconciliation", "error", logErr)
		}
	}
	return res, err
}

// Close releases connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
