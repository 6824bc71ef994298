package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"mumsale-backend/lib/sheetsapi"
	"mumsale-backend/services/storefront"
	"mumsale-backend/services/storefront/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

// BaseUrl is the Apps Script deployment url, set by main before
// execution.
var BaseUrl string

var dbPath *string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "storefront is a CLI for browsing the mum catalog and placing orders.",
}

func init() {
	dbPath = rootCmd.PersistentFlags().String("db", "storefront.db", "The database holding the cart and customer info between runs.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

func openDB(schema, path string) (*sql.DB, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	_, err = database.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return database, nil
}

func openService(ctx context.Context) (*storefront.Service, func()) {
	database, err := openDB(db.Schema, *dbPath)
	if err != nil {
		fatal("failed to open db", err)
	}

	client := sheetsapi.NewClient(sheetsapi.Config{BaseUrl: BaseUrl})
	service, err := storefront.NewService(ctx, database, client)
	if err != nil {
		fatal("failed to initialize storefront", err)
	}
	err = service.LoadCatalog(ctx)
	if err != nil {
		fatal("failed to load catalog", err)
	}

	return service, func() { database.Close() }
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
