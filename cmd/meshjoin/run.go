package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"meshjoin/internal/config"
	"meshjoin/internal/datasource"
	"meshjoin/internal/datasource/file"
	"meshjoin/internal/datasource/httpds"
	"meshjoin/internal/meshjoin"
	"meshjoin/internal/metrics"
	"meshjoin/internal/model"
	"meshjoin/internal/reference"
	"meshjoin/internal/sink"
	"meshjoin/internal/skiplog"
	"meshjoin/internal/storage"
)

// malformedShown caps the malformed-line messages repeated in the summary.
const malformedShown = 10

// runSummary is what a finished run reports to the CLI.
type runSummary struct {
	Stats           meshjoin.Snapshot
	Results         int
	Output          sink.Report
	Stored          int64
	Rejects         map[string]int
	ReferenceErrors []error
	SinkErrors      []error
}

// runPipeline executes one join: load reference data, stream transactions
// through the engine, then write the CSV and the optional results table.
//
// Only an unopenable stream or cancellation returns an error. Reference and
// sink failures are contained and reported in the summary.
func runPipeline(ctx context.Context, p config.Pipeline, verbose bool) (runSummary, error) {
	var sum runSummary
	job := jobName(p)
	rt := p.Runtime.Resolved()
	if verbose {
		log.Printf("pipeline: job=%s reference=%s stream=%s storage=%q batch=%d queue=%d partitions=%d",
			job, p.Reference.Kind, p.Stream.Kind, p.Storage.Kind, rt.BatchSize, rt.QueueCapacity, rt.Partitions)
	}

	var rejects *skiplog.Log
	if p.Output.RejectPath != "" {
		l, err := skiplog.Open(p.Output.RejectPath)
		if err != nil {
			log.Printf("rejects: %v; reject log disabled", err)
		} else {
			rejects = l
			defer func() {
				if err := rejects.Close(); err != nil {
					log.Printf("rejects: close %s: %v", p.Output.RejectPath, err)
				}
			}()
		}
	}
	agg := newErrAgg(malformedShown)
	diag := diagnosticHook(agg, rejects, verbose)

	// Reference data.
	start := time.Now()
	provider, closeRef := buildProvider(ctx, p.Reference)
	ref := meshjoin.LoadReference(ctx, provider, rt.Partitions, diag)
	closeRef()
	sum.ReferenceErrors = ref.Errors
	metrics.RecordStep(job, "load_reference", errors.Join(ref.Errors...), time.Since(start))

	// Join.
	stream, err := openStream(ctx, p.Stream)
	if err != nil {
		err = fmt.Errorf("%w: stream: %v", meshjoin.ErrSourceUnavailable, err)
		metrics.RecordStep(job, "join", err, 0)
		return sum, err
	}
	defer stream.Close()

	start = time.Now()
	engine := meshjoin.New(ref, meshjoin.Options{
		BatchSize:     rt.BatchSize,
		QueueCapacity: rt.QueueCapacity,
		OnDiagnostic:  diag,
	})
	err = engine.Run(ctx, stream)
	metrics.RecordStep(job, "join", err, time.Since(start))
	sum.Stats = engine.Stats()
	if err != nil {
		return sum, err
	}
	rows := engine.Results().Rows()
	sum.Results = len(rows)

	// Sinks.
	start = time.Now()
	sum.Output, err = sink.WriteFile(p.Output.Path, rows)
	metrics.RecordStep(job, "sink", err, time.Since(start))
	if err != nil {
		sum.SinkErrors = append(sum.SinkErrors, err)
	}

	if p.Storage.Kind != "" {
		start = time.Now()
		sum.Stored, err = storeResults(ctx, p.Storage, rows)
		metrics.RecordStep(job, "store", err, time.Since(start))
		if err != nil {
			sum.SinkErrors = append(sum.SinkErrors, err)
		}
	}

	if rejects != nil {
		sum.Rejects = rejects.Counts()
		if verbose {
			log.Printf("rejects: %s", rejects.Summary())
		}
	}
	logMalformedSummary(agg)
	logSummary(sum)
	recordMetrics(job, sum)
	return sum, nil
}

// diagnosticHook aggregates malformed lines, copies them to the reject log
// and logs everything else the engine's default way. With verbose set every
// malformed line is also logged individually.
func diagnosticHook(agg *errAgg, rejects *skiplog.Log, verbose bool) meshjoin.DiagnosticFunc {
	return func(d meshjoin.Diagnostic) {
		if !errors.Is(d, meshjoin.ErrMalformedRecord) {
			meshjoin.LogDiagnostic(d)
			return
		}
		agg.add(d.Error())
		if rejects != nil {
			rejects.Add("malformed_record", d.Line, d.Raw)
		}
		if verbose {
			meshjoin.LogDiagnostic(d)
		}
	}
}

// buildProvider returns the reference provider for r and a func releasing
// any connection it holds. A database that cannot be opened yields a
// provider failing both relations, so the run continues with empty
// reference data.
func buildProvider(ctx context.Context, r config.Reference) (meshjoin.Provider, func()) {
	if r.Kind == "csv" {
		return reference.NewCSV(sourceFor(r.CustomersPath), sourceFor(r.ProductsPath)), func() {}
	}
	repo, err := storage.New(ctx, storage.Config{Kind: r.Kind, DSN: r.DSN})
	if err != nil {
		return unavailable{err: err}, func() {}
	}
	return reference.NewSQL(repo, reference.Tables{
		Customers: r.CustomersTable,
		Products:  r.ProductsTable,
	}), repo.Close
}

// unavailable is a Provider whose relations both fail with err.
type unavailable struct{ err error }

func (u unavailable) Customers(context.Context) ([]model.Customer, error) { return nil, u.err }
func (u unavailable) Products(context.Context) ([]model.Product, error)   { return nil, u.err }

// sourceFor reads http(s) locations through the retrying client and
// everything else from the local filesystem.
func sourceFor(loc string) datasource.Source {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return httpds.NewSource(httpds.NewClient(httpds.Config{}), loc)
	}
	return file.NewLocal(loc)
}

func openStream(ctx context.Context, s config.Stream) (io.ReadCloser, error) {
	switch s.Kind {
	case "file":
		return file.NewLocal(s.File.Path).Open(ctx)
	case "http":
		client := httpds.NewClient(httpds.Config{
			Timeout:    time.Duration(s.HTTP.TimeoutSeconds) * time.Second,
			MaxRetries: s.HTTP.MaxRetries,
		})
		return httpds.NewSource(client, s.HTTP.URL).Open(ctx)
	default:
		return nil, fmt.Errorf("unsupported stream.kind=%s", s.Kind)
	}
}

// storeResults loads rows into the configured results table, creating it
// first when asked to.
func storeResults(ctx context.Context, s config.Storage, rows []model.Result) (int64, error) {
	table := s.ResultsTable()
	repo, err := storage.New(ctx, storage.Config{
		Kind:    s.Kind,
		DSN:     s.DB.DSN,
		Table:   table,
		Columns: model.OutputColumns,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: open %s: %v", meshjoin.ErrSinkWrite, s.Kind, err)
	}
	defer repo.Close()

	if s.DB.AutoCreateTable {
		if err := storage.EnsureTable(ctx, s.Kind, repo, table); err != nil {
			return 0, fmt.Errorf("%w: create %s: %v", meshjoin.ErrSinkWrite, table, err)
		}
	}
	return sink.Store(ctx, repo, rows, sink.DefaultStoreBatch)
}

// errAgg keeps the first limit messages and a total count.
type errAgg struct {
	mu    sync.Mutex
	limit int
	count int
	first []string
}

func newErrAgg(limit int) *errAgg {
	return &errAgg{limit: limit}
}

func (a *errAgg) add(msg string) {
	a.mu.Lock()
	if a.count < a.limit {
		a.first = append(a.first, msg)
	}
	a.count++
	a.mu.Unlock()
}

func logMalformedSummary(agg *errAgg) {
	if agg.count == 0 {
		return
	}
	log.Printf("malformed lines: %d (showing first %d)", agg.count, len(agg.first))
	for i, s := range agg.first {
		log.Printf("  #%03d: %s", i+1, s)
	}
}

// logSummary prints the final counters and checks that every data line is
// accounted for:
//
//	lines  == parsed + malformed
//	parsed == joined + unmatched_customer + unmatched_product
func logSummary(s runSummary) {
	st := s.Stats
	log.Printf(
		"summary: lines=%d parsed=%d malformed=%d batches=%d joined=%d unmatched_customer=%d unmatched_product=%d money_errors=%d results=%d stored=%d",
		st.Lines, st.Parsed, st.Malformed, st.Batches, st.Joined,
		st.UnmatchedCustomer, st.UnmatchedProduct, st.MoneyErrors, s.Results, s.Stored,
	)
	if st.Lines != st.Parsed+st.Malformed || st.Parsed != st.Joined+st.Unmatched() {
		log.Printf("WARNING: line accounting mismatch: lines=%d parsed=%d malformed=%d joined=%d unmatched=%d",
			st.Lines, st.Parsed, st.Malformed, st.Joined, st.Unmatched())
	}
}

func recordMetrics(job string, s runSummary) {
	st := s.Stats
	for kind, n := range map[string]int64{
		"lines":              st.Lines,
		"parsed":             st.Parsed,
		"malformed":          st.Malformed,
		"joined":             st.Joined,
		"unmatched_customer": st.UnmatchedCustomer,
		"unmatched_product":  st.UnmatchedProduct,
		"money_errors":       st.MoneyErrors,
		"results":            int64(s.Results),
		"stored":             s.Stored,
	} {
		metrics.RecordRecords(job, kind, n)
	}
	metrics.RecordBatches(job, st.Batches)
}
