package ml

import "errors"

var (
	// ErrArtifactLoad marks a failed startup load. Either artifact failing
	// leaves both absent.
	ErrArtifactLoad = errors.New("could not load prediction artifacts")
	// ErrArtifactsUnavailable is returned by PredictAll in degraded mode.
	ErrArtifactsUnavailable = errors.New("no trained models available")

	ErrUnsupportedKind = errors.New("unsupported artifact kind")
	ErrEmptyPrediction = errors.New("artifact returned no predictions")
)
