package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"healthpredict/ml"
)

// PredictionRecord is one completed prediction.
type PredictionRecord struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	Features  ml.FeatureVector   `json:"-"`
	Inputs    map[string]float64 `json:"features"`
	Sleep     ml.Label           `json:"sleep_quality"`
	Stress    ml.Label           `json:"stress_level"`
	CreatedAt time.Time          `json:"created_at"`
}

// Store keeps the prediction history in SQLite. Only successful
// predictions are written.
type Store struct {
	database *sql.DB
}

// Open initializes the SQLite database at path.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id TEXT PRIMARY KEY,
        source TEXT NOT NULL,
        age REAL NOT NULL,
        caffeine_mg REAL NOT NULL,
        sleep_hours REAL NOT NULL,
        bmi REAL NOT NULL,
        heart_rate REAL NOT NULL,
        physical_activity_hours REAL NOT NULL,
        sleep_quality TEXT NOT NULL,
        stress_level TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{database: database}, nil
}

func (s *Store) Close() error {
	return s.database.Close()
}

// SavePrediction stores one prediction and returns the stored record.
func (s *Store) SavePrediction(ctx context.Context, source string, vector ml.FeatureVector, prediction ml.Prediction) (PredictionRecord, error) {
	if s == nil || s.database == nil {
		return PredictionRecord{}, errors.New("database not initialized")
	}
	record := PredictionRecord{
		ID:        uuid.NewString(),
		Source:    source,
		Features:  vector,
		Inputs:    vector.Map(),
		Sleep:     prediction.Sleep,
		Stress:    prediction.Stress,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.database.ExecContext(ctx, `
        INSERT INTO predictions (
            id, source, age, caffeine_mg, sleep_hours, bmi, heart_rate,
            physical_activity_hours, sleep_quality, stress_level, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Source,
		vector[0], vector[1], vector[2], vector[3], vector[4], vector[5],
		string(record.Sleep), string(record.Stress), record.CreatedAt)
	if err != nil {
		return PredictionRecord{}, err
	}
	return record, nil
}

// QueryPredictions returns the newest predictions first.
func (s *Store) QueryPredictions(ctx context.Context, limit int) ([]PredictionRecord, error) {
	if s == nil || s.database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := s.database.QueryContext(ctx, `
        SELECT id, source, age, caffeine_mg, sleep_hours, bmi, heart_rate,
               physical_activity_hours, sleep_quality, stress_level, created_at
        FROM predictions
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var r PredictionRecord
		var sleep, stress string
		err := rows.Scan(&r.ID, &r.Source,
			&r.Features[0], &r.Features[1], &r.Features[2], &r.Features[3], &r.Features[4], &r.Features[5],
			&sleep, &stress, &r.CreatedAt)
		if err != nil {
			return nil, err
		}
		r.Sleep = ml.Label(sleep)
		r.Stress = ml.Label(stress)
		r.Inputs = r.Features.Map()
		records = append(records, r)
	}
	return records, rows.Err()
}
