package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"retailsync/database"
	"retailsync/ingestion"
	"retailsync/internal/config"
	"retailsync/internal/domain/models"
	"retailsync/internal/logging"
	"retailsync/internal/sampledata"
	"retailsync/server"
)

const configKey = "config"

func newApp() *cli.App {
	return &cli.App{
		Name:    "retailsync",
		Usage:   "Reconcile retail transactions with warehouse inventory",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Optional .env file with configuration",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (DEBUG, INFO, WARN, ERROR); overrides LOG_LEVEL",
			},
			&cli.StringFlag{
				Name:  "db-driver",
				Usage: "Database driver (sqlite3, postgres, mysql); overrides DATABASE_DRIVER",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"database"},
				Usage:   "Database path or DSN; overrides DATABASE_PATH",
			},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			runCommand(),
			verifyCommand(),
			previewCommand(),
			serveCommand(),
			generateCommand(),
		},
	}
}

// loadConfig собирает конфигурацию: .env, переменные окружения, затем флаги
func loadConfig(c *cli.Context) error {
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return err
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("db-driver") {
		cfg.DatabaseDriver = c.String("db-driver")
	}
	if c.IsSet("db") {
		cfg.DatabasePath = c.String("db")
	}

	logging.Setup(os.Stderr, cfg.LogLevel)
	c.App.Metadata = map[string]interface{}{configKey: cfg}
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	cfg, _ := config.LoadConfig()
	return cfg
}

// signalContext отменяется по SIGINT/SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// =============================================================================
// RUN
// =============================================================================

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Load both sources, reconcile and write the results database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "retail", Aliases: []string{"r"}, Usage: "Retail CSV/XLSX path; overrides RETAIL_CSV_PATH"},
			&cli.StringFlag{Name: "warehouse", Aliases: []string{"w"}, Usage: "Warehouse CSV/XLSX path; overrides WAREHOUSE_CSV_PATH"},
			&cli.StringFlag{Name: "encoding", Usage: "Source encoding (auto, utf-8, windows-1252, ...)"},
			&cli.StringFlag{Name: "delimiter", Usage: "CSV delimiter"},
			&cli.StringFlag{Name: "rules", Usage: "Plural rules JSON file merged over built-in rules"},
			&cli.IntFlag{Name: "batch", Usage: "Transaction rows per commit"},
			&cli.Float64Flag{Name: "rate", Usage: "Producer pacing in events per second (0 = unlimited)"},
			&cli.IntFlag{Name: "burst", Usage: "Producer burst size when pacing"},
		},
		Action: runIngestion,
	}
}

func runIngestion(c *cli.Context) error {
	cfg := configFrom(c)
	if c.IsSet("retail") {
		cfg.RetailPath = c.String("retail")
	}
	if c.IsSet("warehouse") {
		cfg.WarehousePath = c.String("warehouse")
	}
	if c.IsSet("encoding") {
		cfg.SourceEncoding = c.String("encoding")
	}
	if c.IsSet("delimiter") {
		cfg.CSVDelimiter = c.String("delimiter")
	}
	if c.IsSet("rules") {
		cfg.NormalizerRulesPath = c.String("rules")
	}
	if c.IsSet("batch") {
		cfg.CommitBatch = c.Int("batch")
	}
	if c.IsSet("rate") {
		cfg.EventsPerSecond = c.Float64("rate")
	}
	if c.IsSet("burst") {
		cfg.Burst = c.Int("burst")
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, stop := signalContext(c.Context)
	defer stop()

	runner := ingestion.NewRunner(ingestion.Options{
		RetailPath:    cfg.RetailPath,
		WarehousePath: cfg.WarehousePath,
		Reader:        cfg.ReaderConfig(),
		Database:      cfg.DBConfig(),
		RulesPath:     cfg.NormalizerRulesPath,
		CommitBatch:   cfg.CommitBatch,
		Pipeline:      cfg.PipelineConfig(),
	})

	summary, runErr := runner.Run(ctx)
	if err := writeJSON(c.App.Writer, summary); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if summary.Status != models.RunStatusSuccess {
		msg := string(summary.Status)
		if runErr != nil {
			msg = fmt.Sprintf("%s: %v", summary.Status, runErr)
		}
		return cli.Exit(msg, 1)
	}
	return nil
}

// =============================================================================
// VERIFY / PREVIEW
// =============================================================================

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:   "verify",
		Usage:  "Report row counts and one sample row for each result table",
		Action: runVerify,
	}
}

func runVerify(c *cli.Context) error {
	cfg := configFrom(c)
	dbConfig := cfg.DBConfig()

	if !database.Exists(dbConfig) {
		fmt.Fprintf(c.App.Writer, "Database %s not found. Run `retailsync run` first.\n", dbConfig.DSN)
		return nil
	}

	store, err := database.Open(dbConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := store.Verify(c.Context)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, reports)
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "List tables and print their first rows",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "Rows per table"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of text tables"},
		},
		Action: runPreview,
	}
}

func runPreview(c *cli.Context) error {
	cfg := configFrom(c)
	dbConfig := cfg.DBConfig()

	if !database.Exists(dbConfig) {
		fmt.Fprintf(c.App.Writer, "Database %s not found. Run `retailsync run` first.\n", dbConfig.DSN)
		return nil
	}

	store, err := database.Open(dbConfig)
	if err != nil {
		return err
	}
	defer store.Close()

	previews, err := store.Preview(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, previews)
	}
	return printPreviews(c.App.Writer, previews)
}

func printPreviews(w io.Writer, previews []database.TablePreview) error {
	fmt.Fprintf(w, "Tables: %d\n", len(previews))
	for _, p := range previews {
		fmt.Fprintf(w, "\n== %s ==\n", p.Table)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(p.Columns, "\t"))
		for _, row := range p.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				if v == nil {
					cells[i] = "NULL"
				} else {
					cells[i] = fmt.Sprint(v)
				}
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SERVE
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the read-only HTTP query API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "HTTP port; overrides SERVER_PORT"},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg := configFrom(c)
	if c.IsSet("port") {
		cfg.Port = c.String("port")
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	store, err := database.Open(cfg.DBConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.NewServer(server.Config{Port: cfg.Port}, store)

	ctx, stop := signalContext(c.Context)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// =============================================================================
// GENERATE
// =============================================================================

func generateCommand() *cli.Command {
	defaults := sampledata.DefaultOptions()
	return &cli.Command{
		Name:  "generate",
		Usage: "Write synthetic Retail.csv and Warehouse.csv files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "retail", Value: "Retail.csv", Usage: "Retail output path"},
			&cli.StringFlag{Name: "warehouse", Value: "Warehouse.csv", Usage: "Warehouse output path"},
			&cli.IntFlag{Name: "retail-rows", Value: defaults.RetailRows, Usage: "Retail rows to generate"},
			&cli.IntFlag{Name: "warehouse-rows", Value: defaults.WarehouseRows, Usage: "Warehouse rows to generate"},
			&cli.Int64Flag{Name: "seed", Value: defaults.Seed, Usage: "Random seed"},
			&cli.Float64Flag{Name: "missing-rate", Value: defaults.MissingRate, Usage: "Share of rows with a missing value"},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	gen := sampledata.NewGenerator(sampledata.Options{
		RetailRows:    c.Int("retail-rows"),
		WarehouseRows: c.Int("warehouse-rows"),
		Seed:          c.Int64("seed"),
		MissingRate:   c.Float64("missing-rate"),
	})

	result, err := gen.Generate(c.String("retail"), c.String("warehouse"))
	if err != nil {
		return err
	}
	logging.Logger.Info("Sample data generated",
		"retail", c.String("retail"),
		"warehouse", c.String("warehouse"),
		"retail_rows", result.RetailRows,
		"warehouse_rows", result.WarehouseRows)
	return writeJSON(c.App.Writer, result)
}
