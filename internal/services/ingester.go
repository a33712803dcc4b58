package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vvka-141/sheetload/internal/batch"
	"github.com/vvka-141/sheetload/internal/dispatch"
	"github.com/vvka-141/sheetload/internal/schema"
	"github.com/vvka-141/sheetload/internal/source"
	"github.com/vvka-141/sheetload/internal/table"
	"github.com/vvka-141/sheetload/internal/worker"
	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// Ingester runs one spreadsheet import end to end.
// Thread-Safety: safe for concurrent Run calls; each run owns its dispatcher.
type Ingester struct {
	tables      *table.Manager
	worker      *worker.Worker
	logger      sheetload.Logger
	parallelism func() int
	tempDir     string
}

// IngesterOption configures an Ingester.
type IngesterOption func(*Ingester)

// WithHostParallelism overrides the CPU count used to size the worker pool.
func WithHostParallelism(n int) IngesterOption {
	return func(i *Ingester) { i.parallelism = func() int { return n } }
}

// WithTempDir sets where piped input is spooled. Empty uses os.TempDir().
func WithTempDir(dir string) IngesterOption {
	return func(i *Ingester) { i.tempDir = dir }
}

// NewIngester wires an Ingester. schemaStores opens the session used for
// table management; insertStores opens one session per insert attempt.
//
// Panics on nil dependencies.
func NewIngester(schemaStores, insertStores sheetload.StoreFactory, logger sheetload.Logger, opts ...IngesterOption) *Ingester {
	if schemaStores == nil {
		panic("schemaStores cannot be nil")
	}
	if insertStores == nil {
		panic("insertStores cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	i := &Ingester{
		tables:      table.NewManager(schemaStores, logger),
		worker:      worker.New(insertStores, logger),
		logger:      logger,
		parallelism: dispatch.HostParallelism,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Run reads in, prepares the destination table and inserts every valid row.
//
// The table is created or altered once, before the first row is read.
// Rows with a missing value are skipped with a warning. Run returns only after
// every enqueued batch has finished and the input has been released.
// Failed batches make Run return sheetload.ErrInsertFailed unless
// cfg.OnFailure is FailureContinue.
func (i *Ingester) Run(ctx context.Context, cfg sheetload.IngestConfig, in source.Input) (sheetload.Summary, error) {
	start := time.Now()
	summary := sheetload.Summary{Table: cfg.Table}

	if err := cfg.Validate(); err != nil {
		return summary, err
	}

	limits := dispatch.ResolveLimits(cfg.MaxWorkers, cfg.MaxConcurrentTasks, i.parallelism())
	i.logger.Info("Max thread: %d", limits.MaxWorkers)
	i.logger.Verbose("Destination %s, table %s, batch size %d, %d concurrent task(s)",
		cfg.Target, cfg.Table, cfg.BatchSize, limits.MaxConcurrentTasks)

	sheet, err := source.Open(ctx, in, source.Options{Sheet: cfg.Sheet, TempDir: i.tempDir})
	if err != nil {
		return summary, err
	}
	sheetOpen := true
	closeSheet := func() {
		if !sheetOpen {
			return
		}
		sheetOpen = false
		if err := sheet.Close(); err != nil {
			i.logger.Warn("Failed to release input: %v", err)
		}
	}
	defer closeSheet()

	columns, err := i.columns(sheet)
	if err != nil {
		return summary, err
	}
	summary.Columns = sheetload.ColumnNames(columns)

	plan, err := i.tables.Ensure(ctx, cfg.Target, cfg.Table, columns)
	if err != nil {
		return summary, err
	}
	summary.TableCreated = plan.Create
	summary.ColumnsAdded = plan.Add

	d := dispatch.New(ctx, limits, i.worker.Execute, cfg.OnFailure, i.logger)
	defer d.Close()

	var batchOpts []batch.Option
	if cfg.NormalizeDates {
		batchOpts = append(batchOpts, batch.WithDateNormalization())
	}
	batcher := batch.New(columns, cfg.BatchSize, func(b sheetload.Batch) error {
		return d.Enqueue(sheetload.WorkTask{
			Batch:    b,
			Target:   cfg.Target,
			Table:    cfg.Table,
			WorkerID: uuid.NewString(),
		})
	}, i.logger, batchOpts...)

	readErr := i.feed(sheet, batcher)

	// Completion barrier: every batch finishes, then the input is released.
	d.Close()
	closeSheet()

	stats := batcher.Stats()
	run := d.Stats()
	summary.RowsRead = stats.Rows
	summary.RowsRejected = stats.Rejected
	summary.Batches = stats.Batches
	summary.RowsInserted = run.RowsInserted
	summary.FailedBatches = run.Failed
	summary.DiscardedTasks = run.Discarded
	summary.PeakActive = run.PeakActive
	summary.Duration = time.Since(start)

	if readErr != nil {
		return summary, readErr
	}

	i.logger.Verbose("%d row(s) read, %d skipped, %d inserted in %d batch(es), peak %d concurrent task(s), %v",
		summary.RowsRead, summary.RowsRejected, summary.RowsInserted, summary.Batches, summary.PeakActive, summary.Duration.Round(time.Millisecond))

	if summary.FailedBatches > 0 && cfg.OnFailure != sheetload.FailureContinue {
		return summary, fmt.Errorf("%d of %d batch(es) failed, %d discarded: %w",
			summary.FailedBatches, summary.Batches, summary.DiscardedTasks, sheetload.ErrInsertFailed)
	}

	i.logger.Info("Import complete")
	return summary, nil
}

func (i *Ingester) columns(sheet *source.Sheet) ([]sheetload.Column, error) {
	header, err := sheet.Header()
	if err != nil {
		return nil, err
	}
	res, err := schema.Normalize(header)
	for _, s := range res.Skipped {
		i.logger.Warn("Header cell %d (%q) ignored: %s", s.Index+1, s.Raw, s.Reason)
	}
	if err != nil {
		return nil, err
	}
	return res.Columns, nil
}

func (i *Ingester) feed(sheet *source.Sheet, batcher *batch.Batcher) error {
	for sheet.Next() {
		if err := batcher.Add(sheet.RowNumber(), sheet.Row()); err != nil {
			return err
		}
	}
	if err := sheet.Err(); err != nil {
		return err
	}
	return batcher.Flush()
}
