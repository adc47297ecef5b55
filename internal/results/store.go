package results

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jpbench/jpbench/internal/bench"
	bencherrors "github.com/jpbench/jpbench/internal/errors"
	"github.com/jpbench/jpbench/internal/stats"
)

// Run is one recorded invocation.
type Run struct {
	RunID       string
	StartedAt   time.Time
	Host        string
	GoVersion   string
	Status      string
	CompletedAt time.Time // zero until the run completes
}

// MeasurementRecord is a stored measurement.
type MeasurementRecord struct {
	RunID        string
	BenchsetID   string
	TargetID     string
	Engine       string
	Query        string
	QueryHash    uint64
	DatasetBytes int64
	MatchCount   uint64
	Iterations   int64
	Summary      stats.Summary
	Throughput   float64
	Samples      []float64
	RecordedAt   time.Time
}

// Store keeps benchmark results in results.db.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex // serializes writes
}

// Open opens or creates the store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, bencherrors.NewResultsError("failed to open database", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, bencherrors.NewResultsError("failed to initialize schema", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, stmt := range AllSchemaSQL() {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	if err := s.migrate("runs", runsMigrations); err != nil {
		return err
	}
	return s.migrate("measurements", measurementsMigrations)
}

// migrate adds the columns of migrations that table lacks.
func (s *Store) migrate(table string, migrations map[string]string) error {
	rows, err := s.db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan %s columns: %w", table, err)
		}
		existing[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s columns: %w", table, err)
	}

	for column, stmt := range migrations {
		if existing[column] {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to add %s.%s: %w", table, column, err)
		}
	}
	return nil
}

// BeginRun registers a new run and returns its id. The run stays invisible
// to LatestRunID, Export and History until CompleteRun marks it complete.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	runID := uuid.New().String()

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, started_at, host, go_version, status) VALUES (?, ?, ?, ?, ?)",
		runID, time.Now().UnixNano(), host, runtime.Version(), RunRunning)
	if err != nil {
		return "", bencherrors.NewResultsError("failed to insert run", err)
	}
	return runID, nil
}

// CompleteRun marks a running run complete.
func (s *Store) CompleteRun(ctx context.Context, runID string) error {
	return s.finishRun(ctx, runID, RunComplete)
}

// FailRun marks a running run failed. Its measurements are kept for
// inspection but never exported.
func (s *Store) FailRun(ctx context.Context, runID string) error {
	return s.finishRun(ctx, runID, RunFailed)
}

func (s *Store) finishRun(ctx context.Context, runID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET status = ?, completed_at = ? WHERE run_id = ? AND status = ?",
		status, time.Now().UnixNano(), runID, RunRunning)
	if err != nil {
		return bencherrors.NewResultsError(fmt.Sprintf("failed to mark run %s %s", runID, status), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return bencherrors.New(bencherrors.ErrCategoryResults, bencherrors.CodeRunIncomplete,
			fmt.Sprintf("run %s is not running", runID))
	}
	return nil
}

// Record stores every measurement of report under runID in one transaction.
// Recording the same benchset twice in a run replaces the earlier rows.
func (s *Store) Record(ctx context.Context, runID string, report *bench.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return bencherrors.NewResultsError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO measurements (
			run_id, benchset_id, target_id, engine, query, query_hash,
			dataset_bytes, match_count, iterations,
			mean_ns, median_ns, stddev_ns, min_ns, max_ns, ci_low_ns, ci_high_ns,
			throughput_mbps, samples, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return bencherrors.NewResultsError("failed to prepare insert", err)
	}
	defer stmt.Close()

	now := time.Now().UnixNano()
	for _, m := range report.Measurements {
		_, err := stmt.ExecContext(ctx,
			runID, report.BenchsetID, m.TargetID, string(m.Engine), m.Query,
			int64(QueryHash(string(m.Engine), m.Query)),
			report.DatasetBytes, int64(m.Count), m.Iterations,
			m.Summary.Mean, m.Summary.Median, m.Summary.StdDev, m.Summary.Min, m.Summary.Max,
			m.Summary.Low, m.Summary.High, m.Throughput,
			EncodeSamples(m.Samples), now)
		if err != nil {
			return bencherrors.NewResultsError(
				fmt.Sprintf("failed to insert measurement %s/%s", report.BenchsetID, m.TargetID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return bencherrors.NewResultsError("failed to commit measurements", err)
	}
	return nil
}

// Measurements returns the measurements of a run ordered by benchset and
// target.
func (s *Store) Measurements(ctx context.Context, runID string) ([]*MeasurementRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, benchset_id, target_id, engine, query, query_hash,
			dataset_bytes, match_count, iterations,
			mean_ns, median_ns, stddev_ns, min_ns, max_ns, ci_low_ns, ci_high_ns,
			throughput_mbps, samples, recorded_at
		FROM measurements WHERE run_id = ?
		ORDER BY benchset_id, target_id`, runID)
	if err != nil {
		return nil, bencherrors.NewResultsError("failed to query measurements", err)
	}
	defer rows.Close()

	var records []*MeasurementRecord
	for rows.Next() {
		var (
			r          MeasurementRecord
			hash       int64
			matches    int64
			blob       []byte
			recordedAt int64
		)
		err := rows.Scan(&r.RunID, &r.BenchsetID, &r.TargetID, &r.Engine, &r.Query, &hash,
			&r.DatasetBytes, &matches, &r.Iterations,
			&r.Summary.Mean, &r.Summary.Median, &r.Summary.StdDev, &r.Summary.Min, &r.Summary.Max,
			&r.Summary.Low, &r.Summary.High, &r.Throughput,
			&blob, &recordedAt)
		if err != nil {
			return nil, bencherrors.NewResultsError("failed to scan measurement", err)
		}
		r.QueryHash = uint64(hash)
		r.MatchCount = uint64(matches)
		r.RecordedAt = time.Unix(0, recordedAt)
		if r.Samples, err = DecodeSamples(blob); err != nil {
			return nil, bencherrors.NewResultsError("failed to decode samples", err)
		}
		r.Summary.N = len(r.Samples)
		if r.Summary.N > 0 {
			r.Summary.Confidence = stats.Confidence
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, bencherrors.NewResultsError("failed to iterate measurements", err)
	}
	return records, nil
}

// Runs returns all runs in any state, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, started_at, host, go_version, status, completed_at FROM runs ORDER BY started_at DESC")
	if err != nil {
		return nil, bencherrors.NewResultsError("failed to query runs", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt int64
		var completedAt sql.NullInt64
		if err := rows.Scan(&r.RunID, &startedAt, &r.Host, &r.GoVersion, &r.Status, &completedAt); err != nil {
			return nil, bencherrors.NewResultsError("failed to scan run", err)
		}
		r.StartedAt = time.Unix(0, startedAt)
		if completedAt.Valid {
			r.CompletedAt = time.Unix(0, completedAt.Int64)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, bencherrors.NewResultsError("failed to iterate runs", err)
	}
	return runs, nil
}

// RunStatus returns the state of runID.
func (s *Store) RunStatus(ctx context.Context, runID string) (string, error) {
	var status string
	err := s.db.QueryRowContext(ctx, "SELECT status FROM runs WHERE run_id = ?", runID).Scan(&status)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", bencherrors.NewResultsError(fmt.Sprintf("run %s not found", runID), err)
		}
		return "", bencherrors.NewResultsError("failed to query run", err)
	}
	return status, nil
}

// LatestRunID returns the id of the most recent complete run.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		"SELECT run_id FROM runs WHERE status = ? ORDER BY started_at DESC LIMIT 1", RunComplete).Scan(&runID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", bencherrors.NewResultsError("no complete runs recorded", err)
		}
		return "", bencherrors.NewResultsError("failed to query latest run", err)
	}
	return runID, nil
}

// History returns every measurement of one engine and query in a benchset
// from complete runs, oldest first.
func (s *Store) History(ctx context.Context, benchsetID, engine, query string) ([]*MeasurementRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.run_id, m.target_id, m.mean_ns, m.throughput_mbps, m.match_count, m.recorded_at
		FROM measurements m JOIN runs r ON r.run_id = m.run_id
		WHERE m.query_hash = ? AND m.benchset_id = ? AND r.status = ?
		ORDER BY r.started_at`,
		int64(QueryHash(engine, query)), benchsetID, RunComplete)
	if err != nil {
		return nil, bencherrors.NewResultsError("failed to query history", err)
	}
	defer rows.Close()

	var records []*MeasurementRecord
	for rows.Next() {
		r := &MeasurementRecord{BenchsetID: benchsetID, Engine: engine, Query: query, QueryHash: QueryHash(engine, query)}
		var matches, recordedAt int64
		if err := rows.Scan(&r.RunID, &r.TargetID, &r.Summary.Mean, &r.Throughput, &matches, &recordedAt); err != nil {
			return nil, bencherrors.NewResultsError("failed to scan history", err)
		}
		r.MatchCount = uint64(matches)
		r.RecordedAt = time.Unix(0, recordedAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, bencherrors.NewResultsError("failed to iterate history", err)
	}
	return records, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
