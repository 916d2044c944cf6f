package predlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database, one typed row per
// estimate. Coordinates of estimates without a result are NULL.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS predictions (
    seq       INTEGER PRIMARY KEY AUTOINCREMENT,
    id        TEXT NOT NULL UNIQUE,
    ts        INTEGER NOT NULL,
    source    TEXT NOT NULL,
    track_len INTEGER NOT NULL,
    predicted INTEGER NOT NULL,
    lat       REAL,
    lon       REAL,
    radius_m  REAL,
    prev_ts   INTEGER,
    prev_lat  REAL,
    prev_lon  REAL,
    last_ts   INTEGER,
    last_lat  REAL,
    last_lon  REAL
);
CREATE INDEX IF NOT EXISTS predictions_ts ON predictions (ts);
CREATE INDEX IF NOT EXISTS predictions_source_ts ON predictions (source, ts);
CREATE INDEX IF NOT EXISTS predictions_predicted ON predictions (predicted, ts);`

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the record. Appending an ID twice fails.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	args := []any{rec.ID, rec.Timestamp.UnixNano(), rec.Source, rec.TrackLen, rec.Predicted}
	if rec.Predicted {
		args = append(args,
			rec.Prediction.Lat, rec.Prediction.Lon, rec.Prediction.RadiusM,
			rec.Prev.Timestamp.UnixNano(), rec.Prev.Lat, rec.Prev.Lon,
			rec.Last.Timestamp.UnixNano(), rec.Last.Lat, rec.Last.Lon)
	} else {
		args = append(args, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO predictions
        (id, ts, source, track_len, predicted, lat, lon, radius_m,
         prev_ts, prev_lat, prev_lon, last_ts, last_lat, last_lon)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert prediction %s: %w", rec.ID, err)
	}
	return nil
}

// Query returns records matching q ordered by timestamp, then insertion.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var args []any
	query := `SELECT id, ts, source, track_len, predicted, lat, lon, radius_m,
        prev_ts, prev_lat, prev_lon, last_ts, last_lat, last_lon
        FROM predictions WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.Source != "" {
		query += ` AND source = ?`
		args = append(args, q.Source)
	}
	if q.PredictedOnly {
		query += ` AND predicted = 1`
	}
	query += ` ORDER BY ts, seq`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func scanRow(rows *sql.Rows) (Record, error) {
	var (
		r                Record
		ts               int64
		lat, lon, radius sql.NullFloat64
		prevTS, lastTS   sql.NullInt64
		prevLat, prevLon sql.NullFloat64
		lastLat, lastLon sql.NullFloat64
	)
	if err := rows.Scan(&r.ID, &ts, &r.Source, &r.TrackLen, &r.Predicted,
		&lat, &lon, &radius, &prevTS, &prevLat, &prevLon, &lastTS, &lastLat, &lastLon); err != nil {
		return Record{}, fmt.Errorf("scan prediction: %w", err)
	}
	r.Timestamp = fromUnixNano(ts)
	if r.Predicted {
		r.Prediction.Lat, r.Prediction.Lon, r.Prediction.RadiusM = lat.Float64, lon.Float64, radius.Float64
		r.Prev.Timestamp, r.Prev.Lat, r.Prev.Lon = fromUnixNano(prevTS.Int64), prevLat.Float64, prevLon.Float64
		r.Last.Timestamp, r.Last.Lat, r.Last.Lon = fromUnixNano(lastTS.Int64), lastLat.Float64, lastLon.Float64
	}
	return r, nil
}

func fromUnixNano(ns int64) time.Time { return time.Unix(0, ns).UTC() }

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
