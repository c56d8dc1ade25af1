package ml

import (
	"context"
	"io"
)

// Label is the printable output of an artifact. It is not necessarily
// numeric.
type Label string

func (l Label) String() string {
	return string(l)
}

// Artifact is a trained model. It labels a batch of rows and returns one
// label per row, in order.
type Artifact interface {
	Predict(ctx context.Context, rows []FeatureVector) ([]Label, error)
}

// ArtifactFunc adapts a plain function to Artifact.
type ArtifactFunc func(ctx context.Context, rows []FeatureVector) ([]Label, error)

func (f ArtifactFunc) Predict(ctx context.Context, rows []FeatureVector) ([]Label, error) {
	return f(ctx, rows)
}

// ArtifactSpec locates one artifact on disk.
type ArtifactSpec struct {
	Kind string
	Path string
}

func closeArtifact(artifact Artifact) error {
	if closer, ok := artifact.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
