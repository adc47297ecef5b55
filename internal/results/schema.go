// Package results persists benchmark reports in a SQLite database so runs
// can be compared over time and exported for charting.
package results

// Run states. Only complete runs are exported or used for history.
const (
	RunRunning  = "running"
	RunComplete = "complete"
	RunFailed   = "failed"
)

// CreateRunsTableSQL creates the runs table. One row per CLI invocation.
// BeginRun always sets status explicitly; the default applies to rows
// migrated from databases that predate the column.
const CreateRunsTableSQL = `
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    host TEXT NOT NULL,
    go_version TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'complete',
    completed_at INTEGER
)`

// runsMigrations adds columns missing from older runs tables.
var runsMigrations = map[string]string{
	"status":       `ALTER TABLE runs ADD COLUMN status TEXT NOT NULL DEFAULT 'complete'`,
	"completed_at": `ALTER TABLE runs ADD COLUMN completed_at INTEGER`,
}

// CreateMeasurementsTableSQL creates the measurements table. One row per
// target per benchset. Samples are snappy-compressed little-endian float64
// nanoseconds per iteration.
const CreateMeasurementsTableSQL = `
CREATE TABLE IF NOT EXISTS measurements (
    run_id TEXT NOT NULL,
    benchset_id TEXT NOT NULL,
    target_id TEXT NOT NULL,
    engine TEXT NOT NULL,
    query TEXT NOT NULL,
    query_hash INTEGER NOT NULL,
    dataset_bytes INTEGER NOT NULL,
    match_count INTEGER NOT NULL,
    iterations INTEGER NOT NULL,
    mean_ns REAL NOT NULL,
    median_ns REAL NOT NULL,
    stddev_ns REAL NOT NULL,
    min_ns REAL NOT NULL,
    max_ns REAL NOT NULL,
    ci_low_ns REAL NOT NULL DEFAULT 0,
    ci_high_ns REAL NOT NULL DEFAULT 0,
    throughput_mbps REAL NOT NULL,
    samples BLOB NOT NULL,
    recorded_at INTEGER NOT NULL,
    PRIMARY KEY (run_id, benchset_id, target_id),
    FOREIGN KEY (run_id) REFERENCES runs(run_id)
)`

// CreateMeasurementsIndexesSQL creates indexes for history lookups.
var CreateMeasurementsIndexesSQL = []string{
	// Same engine and query across runs
	`CREATE INDEX IF NOT EXISTS idx_measurements_query ON measurements(query_hash, benchset_id)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
}

// measurementsMigrations adds columns missing from older measurements tables.
var measurementsMigrations = map[string]string{
	"ci_low_ns":  `ALTER TABLE measurements ADD COLUMN ci_low_ns REAL NOT NULL DEFAULT 0`,
	"ci_high_ns": `ALTER TABLE measurements ADD COLUMN ci_high_ns REAL NOT NULL DEFAULT 0`,
}

// AllSchemaSQL returns all SQL statements needed to initialize the store.
func AllSchemaSQL() []string {
	statements := []string{
		CreateRunsTableSQL,
		CreateMeasurementsTableSQL,
	}
	statements = append(statements, CreateMeasurementsIndexesSQL...)
	return statements
}
