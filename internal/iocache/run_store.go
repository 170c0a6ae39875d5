package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/deadreck/internal/contract"
	"github.com/huangsam/deadreck/schema"
)

// Table names for run tracking.
const (
	runsTable           = "deadreck_runs"
	stageSummariesTable = "deadreck_stage_summaries"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{stageSummariesTable, getCreateStageSummariesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for deadreck_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid VARCHAR(36) NOT NULL,
				source VARCHAR(512) NOT NULL,
				strategy VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_samples INT NOT NULL DEFAULT 0,
				rms_error DOUBLE,
				max_error DOUBLE,
				final_error DOUBLE,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				source TEXT NOT NULL,
				strategy TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_samples INT NOT NULL DEFAULT 0,
				rms_error DOUBLE PRECISION,
				max_error DOUBLE PRECISION,
				final_error DOUBLE PRECISION,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				source TEXT NOT NULL,
				strategy TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_samples INTEGER NOT NULL DEFAULT 0,
				rms_error REAL,
				max_error REAL,
				final_error REAL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateStageSummariesQuery returns the CREATE TABLE query for deadreck_stage_summaries.
func getCreateStageSummariesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(stageSummariesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				stage VARCHAR(32) NOT NULL,
				samples INT NOT NULL,
				series_start DOUBLE NOT NULL,
				series_end DOUBLE NOT NULL,
				final_a DOUBLE NOT NULL,
				final_b DOUBLE NOT NULL,
				final_c DOUBLE NOT NULL,
				PRIMARY KEY (run_id, stage)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				stage TEXT NOT NULL,
				samples INT NOT NULL,
				series_start DOUBLE PRECISION NOT NULL,
				series_end DOUBLE PRECISION NOT NULL,
				final_a DOUBLE PRECISION NOT NULL,
				final_b DOUBLE PRECISION NOT NULL,
				final_c DOUBLE PRECISION NOT NULL,
				PRIMARY KEY (run_id, stage)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				stage TEXT NOT NULL,
				samples INTEGER NOT NULL,
				series_start REAL NOT NULL,
				series_end REAL NOT NULL,
				final_a REAL NOT NULL,
				final_b REAL NOT NULL,
				final_c REAL NOT NULL,
				PRIMARY KEY (run_id, stage)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, runUUID, source string, strategy schema.GravityStrategy, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	args := []any{runUUID, source, string(strategy), formatTime(startTime, rs.backend), string(configJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, source, strategy, start_time, config_params) VALUES ($1, $2, $3, $4, $5) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, source, strategy, start_time, config_params) VALUES (?, ?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordStage stores the summary of one stage. Recording a stage twice replaces it.
func (rs *RunStoreImpl) RecordStage(record schema.StageSummaryRecord) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(stageSummariesTable, rs.backend)
	columns := "run_id, stage, samples, series_start, series_end, final_a, final_b, final_c"

	var query string
	switch rs.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE samples = new.samples, series_start = new.series_start, series_end = new.series_end,
			final_a = new.final_a, final_b = new.final_b, final_c = new.final_c`, quotedTableName, columns)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (run_id, stage) DO UPDATE SET samples = EXCLUDED.samples, series_start = EXCLUDED.series_start,
			series_end = EXCLUDED.series_end, final_a = EXCLUDED.final_a, final_b = EXCLUDED.final_b, final_c = EXCLUDED.final_c`,
			quotedTableName, columns, placeholders(rs.backend, 8))
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quotedTableName, columns, placeholders(rs.backend, 8))
	}

	_, err := rs.db.Exec(query, record.RunID, record.Stage, record.Samples, record.SeriesStart, record.SeriesEnd,
		record.FinalA, record.FinalB, record.FinalC)
	if err != nil {
		return fmt.Errorf("failed to insert stage %s for run %d: %w", record.Stage, record.RunID, err)
	}
	return nil
}

// EndRun updates the run with completion data. A nil drift leaves the error columns empty.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalSamples int, drift *schema.DriftReport) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(rs.backend, 1))
	startTime, err := rs.scanTime(rs.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	var rmsError, maxError, finalError *float64
	if drift != nil {
		rmsError, maxError, finalError = &drift.RMSError, &drift.MaxError, &drift.FinalError
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_samples = %s,
		rms_error = %s, max_error = %s, final_error = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(rs.backend, 1), placeholder(rs.backend, 2), placeholder(rs.backend, 3),
		placeholder(rs.backend, 4), placeholder(rs.backend, 5), placeholder(rs.backend, 6),
		placeholder(rs.backend, 7))
	_, err = rs.db.Exec(updateQuery, formatTime(endTime, rs.backend), durationMs, totalSamples,
		rmsError, maxError, finalError, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// scanTime reads one time column, parsing the text form SQLite stores.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT run_id FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)
		if err := rs.db.QueryRow(lastRunQuery).Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		lastTime, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastTime

		oldestTime, err := rs.scanTime(rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quotedRuns)))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestTime

		samplesQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_samples), 0) FROM %s", quotedRuns)
		if err := rs.db.QueryRow(samplesQuery).Scan(&status.TotalSamples); err != nil {
			return status, fmt.Errorf("failed to get total samples: %w", err)
		}
	}

	for _, table := range []string{runsTable, stageSummariesTable} {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		var count int64
		if err := rs.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, run_uuid, source, strategy, start_time, end_time, run_duration_ms,
		total_samples, rms_error, max_error, final_error, config_params FROM %s ORDER BY run_id`,
		quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.RunUUID, &record.Source, &record.Strategy, &startTimeStr, &endTimeStr,
				&record.RunDurationMs, &record.TotalSamples, &record.RMSError, &record.MaxError, &record.FinalError,
				&record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.RunUUID, &record.Source, &record.Strategy, &record.StartTime, &record.EndTime,
				&record.RunDurationMs, &record.TotalSamples, &record.RMSError, &record.MaxError, &record.FinalError,
				&record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllStages retrieves all stage summaries from the store.
func (rs *RunStoreImpl) GetAllStages() ([]schema.StageSummaryRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, stage, samples, series_start, series_end, final_a, final_b, final_c
		FROM %s ORDER BY run_id, stage`, quoteTableName(stageSummariesTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stage summaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.StageSummaryRecord
	for rows.Next() {
		var record schema.StageSummaryRecord
		if err := rows.Scan(&record.RunID, &record.Stage, &record.Samples, &record.SeriesStart, &record.SeriesEnd,
			&record.FinalA, &record.FinalB, &record.FinalC); err != nil {
			return nil, fmt.Errorf("failed to scan stage summary: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stage summaries: %w", err)
	}
	return results, nil
}
