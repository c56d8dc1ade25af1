//go:build !onnx

package ml

import "errors"

// Stub used when the binary is built without ONNX Runtime.
// Build with -tags onnx to enable the real implementation.
func loadONNX(_ string) (Artifact, error) {
	return nil, errors.New("onnx artifacts require a build with -tags onnx")
}
