package ml

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

type Prediction struct {
	Sleep  Label `json:"sleep_quality"`
	Stress Label `json:"stress_level"`
}

// PredictAll runs vector through both artifacts as a single-row batch. If
// either artifact is missing neither is called.
func PredictAll(ctx context.Context, vector FeatureVector, sleep, stress Artifact) (Prediction, error) {
	if sleep == nil || stress == nil {
		return Prediction{}, ErrArtifactsUnavailable
	}
	rows := []FeatureVector{vector}

	sleepLabel, err := firstLabel(ctx, sleep, rows)
	if err != nil {
		return Prediction{}, fmt.Errorf("sleep quality: %w", err)
	}
	stressLabel, err := firstLabel(ctx, stress, rows)
	if err != nil {
		return Prediction{}, fmt.Errorf("stress level: %w", err)
	}
	return Prediction{Sleep: sleepLabel, Stress: stressLabel}, nil
}

func firstLabel(ctx context.Context, artifact Artifact, rows []FeatureVector) (Label, error) {
	labels, err := artifact.Predict(ctx, rows)
	if err != nil {
		return "", err
	}
	if len(labels) == 0 {
		return "", ErrEmptyPrediction
	}
	return labels[0], nil
}

// Dispatcher binds the artifacts loaded at startup to PredictAll. It is
// safe for concurrent use; the artifacts are never mutated after load.
type Dispatcher struct {
	artifacts *Artifacts
	cache     *lru.Cache[FeatureVector, Prediction]
}

// NewDispatcher wraps artifacts, which may be nil in degraded mode. A
// positive cacheSize memoizes successful predictions per vector.
func NewDispatcher(artifacts *Artifacts, cacheSize int) (*Dispatcher, error) {
	d := &Dispatcher{artifacts: artifacts}
	if cacheSize > 0 {
		cache, err := lru.New[FeatureVector, Prediction](cacheSize)
		if err != nil {
			return nil, err
		}
		d.cache = cache
	}
	return d, nil
}

func (d *Dispatcher) Available() bool {
	return d != nil && d.artifacts.Available()
}

func (d *Dispatcher) PredictAll(ctx context.Context, vector FeatureVector) (Prediction, error) {
	if !d.Available() {
		return Prediction{}, ErrArtifactsUnavailable
	}
	if d.cache != nil {
		if prediction, ok := d.cache.Get(vector); ok {
			return prediction, nil
		}
	}
	prediction, err := PredictAll(ctx, vector, d.artifacts.Sleep, d.artifacts.Stress)
	if err != nil {
		return Prediction{}, err
	}
	if d.cache != nil {
		d.cache.Add(vector, prediction)
	}
	return prediction, nil
}

// Predict normalizes raw and dispatches it.
func (d *Dispatcher) Predict(ctx context.Context, raw RawInput) (FeatureVector, Prediction, error) {
	vector := Normalize(raw)
	prediction, err := d.PredictAll(ctx, vector)
	return vector, prediction, err
}

func (d *Dispatcher) CacheLen() int {
	if d == nil || d.cache == nil {
		return 0
	}
	return d.cache.Len()
}

// Close releases the artifacts' resources.
func (d *Dispatcher) Close() error {
	if d == nil {
		return nil
	}
	return d.artifacts.Close()
}
