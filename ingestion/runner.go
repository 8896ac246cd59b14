package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"retailsync/catalog"
	"retailsync/database"
	"retailsync/importer"
	"retailsync/internal/domain/models"
	"retailsync/internal/logging"
	"retailsync/normalization"
	"retailsync/pipeline"
)

// ErrIncomplete конвейер не довел запись транзакций до конца
var ErrIncomplete = errors.New("ingestion incomplete")

// Options параметры запуска сверки
type Options struct {
	RetailPath    string
	WarehousePath string
	Reader        importer.ReaderConfig
	Database      database.DBConfig
	RulesPath     string
	CommitBatch   int
	Pipeline      pipeline.Config
}

// Runner выполняет полный цикл: загрузка, нормализация, сопоставление, запись
type Runner struct {
	options Options
}

// NewRunner создает исполнителя запуска
func NewRunner(options Options) *Runner {
	if options.CommitBatch <= 0 {
		options.CommitBatch = database.DefaultCommitBatch
	}
	return &Runner{options: options}
}

// prepared результат этапов, не затрагивающих хранилище
type prepared struct {
	build      *catalog.BuildResult
	matched    []models.RetailTransaction
	report     catalog.MatchReport
	collisions []models.StemCollision
	retailLoad importer.RetailLoadStats
	explode    importer.ExplodeStats
	warehouse  importer.WarehouseLoadStats
}

// Run выполняет запуск и возвращает сводку.
// Сводка возвращается всегда, в том числе вместе с ошибкой.
// Ошибки чтения источников прерывают запуск до обращения к хранилищу.
func (r *Runner) Run(ctx context.Context) (*models.RunSummary, error) {
	startedAt := time.Now()
	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)

	summary := &models.RunSummary{
		Status:    models.RunStatusFailed,
		RunID:     runID,
		StartedAt: startedAt.UTC(),
		Database:  r.options.Database.DSN,
	}
	finish := func(err error) (*models.RunSummary, error) {
		summary.Duration = time.Since(startedAt).Round(time.Millisecond).String()
		if err != nil {
			summary.Error = err.Error()
			logging.LogError(ctx, err, "Ingestion run failed", "status", summary.Status)
		} else {
			logging.LogInfo(ctx, "Ingestion run finished", "status", summary.Status, "duration", summary.Duration)
		}
		return summary, err
	}

	logging.LogInfo(ctx, "Ingestion run started",
		"retail", r.options.RetailPath,
		"warehouse", r.options.WarehousePath,
		"driver", r.options.Database.Driver)

	p, err := r.prepare(ctx)
	if err != nil {
		return finish(err)
	}
	fillSourceSummaries(summary, p)

	store, err := database.Open(r.options.Database)
	if err != nil {
		return finish(err)
	}
	defer store.Close()

	result, started, err := r.persist(ctx, store, p)
	if started {
		summary.Pipeline = result.Summary()
	}

	if tables, countErr := store.TableCounts(ctx); countErr == nil {
		summary.Tables = tables
	} else {
		logging.LogWarn(ctx, "Failed to count result tables", "error", countErr)
	}

	summary.Alerts = buildAlerts(summary)

	if err != nil {
		if started {
			summary.Status = models.RunStatusIncomplete
			return finish(fmt.Errorf("%w: %w", ErrIncomplete, err))
		}
		return finish(err)
	}
	if !result.Completed {
		summary.Status = models.RunStatusIncomplete
		return finish(ErrIncomplete)
	}

	summary.Status = models.RunStatusSuccess
	return finish(nil)
}

// prepare загружает оба источника и строит каталог в памяти
func (r *Runner) prepare(ctx context.Context) (*prepared, error) {
	rules, err := normalization.LoadPluralRules(r.options.RulesPath)
	if err != nil {
		return nil, err
	}
	normalizer := normalization.NewProductNormalizer(rules)

	start := time.Now()
	retailRows, retailStats, err := importer.LoadRetail(r.options.RetailPath, r.options.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to load retail source: %w", err)
	}
	inventory, warehouseStats, err := importer.LoadWarehouse(r.options.WarehousePath, r.options.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to load warehouse source: %w", err)
	}
	logging.LogDuration(ctx, "load", start,
		"retail_rows", len(retailRows),
		"warehouse_rows", len(inventory))

	start = time.Now()
	transactions, explodeStats := importer.ExplodeRetail(retailRows)
	build := catalog.NewBuilder(normalizer).Build(transactions, inventory)
	matched := catalog.Match(build.Retail, build.WarehouseSKUs)
	report := catalog.Summarize(matched, build.WarehouseSKUs)
	collisions := catalog.StemCollisions(build.Catalog, normalization.NewSKUStemmer())
	logging.LogDuration(ctx, "reconcile", start,
		"exploded_rows", len(transactions),
		"catalog_size", build.Catalog.Size(),
		"matched_skus", report.MatchedSKUs,
		"unmatched_skus", report.UnmatchedSKUs)

	return &prepared{
		build:      build,
		matched:    matched,
		report:     report,
		collisions: collisions,
		retailLoad: retailStats,
		explode:    explodeStats,
		warehouse:  warehouseStats,
	}, nil
}

// persist пересоздает схему, пишет склад и каталог, затем прогоняет
// транзакции через конвейер. started=false означает, что до конвейера дело не дошло.
func (r *Runner) persist(ctx context.Context, store *database.Store, p *prepared) (result pipeline.Result, started bool, err error) {
	start := time.Now()
	if err := store.ResetSchema(ctx); err != nil {
		return result, false, err
	}
	if err := store.InsertInventory(ctx, p.build.Inventory); err != nil {
		return result, false, err
	}
	if err := store.InsertProducts(ctx, p.build.Catalog.Products()); err != nil {
		return result, false, err
	}
	logging.LogDuration(ctx, "reference_tables", start,
		"inventory_rows", len(p.build.Inventory),
		"products", p.build.Catalog.Size())

	writer := store.NewTransactionWriter(r.options.CommitBatch)
	defer writer.Close()

	config := r.options.Pipeline
	if config.Logger == nil {
		config.Logger = logging.FromContext(ctx)
	}
	result, err = pipeline.New(writer, config).Run(ctx, p.matched)
	if err != nil {
		logging.LogError(ctx, err, "Pipeline did not complete",
			slog.Int64("written", result.Written),
			slog.Int64("durable", result.Durable))
	}
	return result, true, err
}

func fillSourceSummaries(summary *models.RunSummary, p *prepared) {
	summary.Retail = models.RetailSummary{
		SourceRows:               p.retailLoad.SourceRows,
		DiscardedMissingIdentity: p.retailLoad.DiscardedMissingIdentity,
		QuantityDefaulted:        p.retailLoad.QuantityDefaulted,
		ListParseFallbacks:       p.explode.ListParseFallbacks,
		DroppedEmptyNames:        p.explode.DroppedEmptyNames,
		TotalExplodedRows:        len(p.matched),
		UniqueProducts:           p.build.RetailStats.UniqueProducts,
		UniqueSKUs:               p.build.RetailStats.UniqueSKUs,
		EmptySKURows:             p.build.RetailStats.EmptySKURows,
	}
	summary.Warehouse = models.WarehouseSummary{
		SourceRows:           p.warehouse.SourceRows,
		DiscardedMissingName: p.warehouse.DiscardedMissingName,
		StockMissing:         p.warehouse.StockMissing,
		StockNotNumeric:      p.warehouse.StockNotNumeric,
		TotalRows:            len(p.build.Inventory),
		UniqueProducts:       p.build.WarehouseStats.UniqueProducts,
		UniqueSKUs:           p.build.WarehouseStats.UniqueSKUs,
		EmptySKURows:         p.build.WarehouseStats.EmptySKURows,
	}
	summary.Matching = models.MatchingSummary{
		MatchedRows:   p.report.MatchedRows,
		UnmatchedRows: p.report.UnmatchedRows,
		MatchedSKUs:   p.report.MatchedSKUs,
		UnmatchedSKUs: p.report.UnmatchedSKUs,
		UnmatchedList: p.report.UnmatchedList,
	}
	summary.ProductsCatalogSize = p.build.Catalog.Size()
	summary.StemCollisions = p.collisions
}
