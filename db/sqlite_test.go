package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthpredict/ml"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndQueryPredictions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.SavePrediction(ctx, "form", ml.FeatureVector{30, 100, 7.5, 22, 70, 3}, ml.Prediction{Sleep: "Good", Stress: "Low"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := store.SavePrediction(ctx, "api", ml.FeatureVector{50, 400, 5, 31, 90, 0}, ml.Prediction{Sleep: "Poor", Stress: "High"})
	require.NoError(t, err)

	records, err := store.QueryPredictions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, "api", records[0].Source)
	assert.Equal(t, ml.FeatureVector{50, 400, 5, 31, 90, 0}, records[0].Features)
	assert.Equal(t, 31.0, records[0].Inputs["BMI"])
	assert.Equal(t, ml.Label("High"), records[0].Stress)
	assert.Equal(t, first.ID, records[1].ID)

	limited, err := store.QueryPredictions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestQueryEmptyHistory(t *testing.T) {
	store := openTestStore(t)
	records, err := store.QueryPredictions(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNilStore(t *testing.T) {
	var store *Store
	_, err := store.SavePrediction(context.Background(), "cli", ml.FeatureVector{}, ml.Prediction{})
	assert.Error(t, err)
	_, err = store.QueryPredictions(context.Background(), 1)
	assert.Error(t, err)
}
