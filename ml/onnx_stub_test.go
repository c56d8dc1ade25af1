//go:build !onnx

package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadONNXWithoutRuntime(t *testing.T) {
	_, err := LoadArtifact(KindONNX, "model.onnx")
	assert.ErrorContains(t, err, "-tags onnx")
}
