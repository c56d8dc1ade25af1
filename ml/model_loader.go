package ml

import (
	"errors"
	"fmt"
)

const (
	KindDecisionTree = "decision_tree"
	KindONNX         = "onnx"
)

func LoadArtifact(kind, path string) (Artifact, error) {
	switch kind {
	case KindDecisionTree, "":
		model := &DecisionTree{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		return model, nil
	case KindONNX:
		return loadONNX(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}
}

// Artifacts holds the sleep quality and stress level models. A nil
// *Artifacts is the degraded state.
type Artifacts struct {
	Sleep  Artifact
	Stress Artifact
}

// LoadArtifacts loads both models. Any failure is total: the returned set is
// nil even if one of the two loaded fine.
func LoadArtifacts(sleep, stress ArtifactSpec) (*Artifacts, error) {
	sleepModel, err := LoadArtifact(sleep.Kind, sleep.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: sleep quality model %s: %w", ErrArtifactLoad, sleep.Path, err)
	}
	stressModel, err := LoadArtifact(stress.Kind, stress.Path)
	if err != nil {
		_ = closeArtifact(sleepModel)
		return nil, fmt.Errorf("%w: stress level model %s: %w", ErrArtifactLoad, stress.Path, err)
	}
	return &Artifacts{Sleep: sleepModel, Stress: stressModel}, nil
}

func (a *Artifacts) Available() bool {
	return a != nil && a.Sleep != nil && a.Stress != nil
}

func (a *Artifacts) Close() error {
	if a == nil {
		return nil
	}
	return errors.Join(closeArtifact(a.Sleep), closeArtifact(a.Stress))
}
