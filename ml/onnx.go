//go:build onnx

package ml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages process-wide ONNX Runtime initialization.
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxArtifact runs a classifier exported with one float input of shape
// [N, 6] and an int64 label output of shape [N].
type onnxArtifact struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
}

// loadONNX expects libonnxruntime.so next to the model unless
// ONNXRUNTIME_LIB points elsewhere.
func loadONNX(path string) (Artifact, error) {
	libPath := os.Getenv("ONNXRUNTIME_LIB")
	if libPath == "" {
		libPath = filepath.Join(filepath.Dir(path), "libonnxruntime.so")
	}
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input, got %d", len(inputs))
	}
	dims := inputs[0].Dimensions
	if len(dims) != 2 || dims[1] != FeatureCount {
		return nil, fmt.Errorf("onnx: expected input shape [N, %d], got %v", FeatureCount, dims)
	}

	outputName := ""
	for _, output := range outputs {
		if output.DataType == ort.TensorElementDataTypeInt64 {
			outputName = output.Name
			break
		}
	}
	if outputName == "" {
		return nil, fmt.Errorf("onnx: model has no int64 label output")
	}

	session, err := ort.NewDynamicAdvancedSession(path, []string{inputs[0].Name}, []string{outputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}
	return &onnxArtifact{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputName,
	}, nil
}

func (a *onnxArtifact) Predict(ctx context.Context, rows []FeatureVector) ([]Label, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batch := int64(len(rows))
	flat := make([]float32, 0, len(rows)*FeatureCount)
	for _, row := range rows {
		for _, value := range row {
			flat = append(flat, float32(value))
		}
	}

	input, err := ort.NewTensor(ort.NewShape(batch, FeatureCount), flat)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[int64](ort.NewShape(batch))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := a.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	data := output.GetData()
	labels := make([]Label, len(data))
	for i, class := range data {
		labels[i] = Label(strconv.FormatInt(class, 10))
	}
	return labels, nil
}

func (a *onnxArtifact) Describe() string {
	return fmt.Sprintf("onnx classifier, input %s, output %s", a.inputName, a.outputName)
}

func (a *onnxArtifact) Close() error {
	return a.session.Destroy()
}
