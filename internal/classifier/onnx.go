package classifier

import (
	"errors"
	"fmt"
	"io/fs"

	ort "github.com/yalue/onnxruntime_go"
)

type onnxModel struct {
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	output   *ort.Tensor[float32]
	features int
	classes  int
	file     string
}

func openONNX(fsys fs.FS, opts Options) (*onnxModel, error) {
	data, err := fs.ReadFile(fsys, opts.File)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	if !ort.IsInitialized() {
		if opts.ONNXRuntimeLibrary != "" {
			ort.SetSharedLibraryPath(opts.ONNXRuntimeLibrary)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	classes, err := onnxClasses(data, opts.ONNXOutputName)
	if err != nil {
		return nil, fmt.Errorf("onnx model %s: %w", opts.File, err)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(opts.Features)))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(classes)))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	sessionOpts, err := ort.NewSessionOptions()
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("session options: %w", err)
	}
	defer sessionOpts.Destroy()
	if err := sessionOpts.SetIntraOpNumThreads(opts.Threads); err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("set intra-op threads: %w", err)
	}

	session, err := ort.NewAdvancedSessionWithONNXData(data,
		[]string{opts.ONNXInputName}, []string{opts.ONNXOutputName},
		[]ort.Value{input}, []ort.Value{output}, sessionOpts)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create onnx session for %s: %w", opts.File, err)
	}
	return &onnxModel{
		session:  session,
		input:    input,
		output:   output,
		features: opts.Features,
		classes:  classes,
		file:     opts.File,
	}, nil
}

// onnxClasses reads the class count from the last dimension of the named output.
func onnxClasses(data []byte, outputName string) (int, error) {
	_, outputs, err := ort.GetInputOutputInfoWithONNXData(data)
	if err != nil {
		return 0, fmt.Errorf("inspect outputs: %w", err)
	}
	for _, info := range outputs {
		if info.Name != outputName {
			continue
		}
		dims := info.Dimensions
		if len(dims) == 0 || dims[len(dims)-1] <= 0 {
			return 0, fmt.Errorf("output %q has no static class dimension (%v)", outputName, dims)
		}
		return int(dims[len(dims)-1]), nil
	}
	return 0, fmt.Errorf("output %q not found", outputName)
}

func (m *onnxModel) Predict(features []float64) ([]float64, error) {
	if err := checkWidth(m.Name(), len(features), m.features); err != nil {
		return nil, err
	}
	in := m.input.GetData()
	for i, v := range features {
		in[i] = float32(v)
	}
	if err := m.session.Run(); err != nil {
		return nil, fmt.Errorf("%s: run: %w", m.Name(), err)
	}
	raw := m.output.GetData()
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}

func (m *onnxModel) Classes() int { return m.classes }

func (m *onnxModel) Name() string { return "onnx:" + m.file }

func (m *onnxModel) Close() error {
	var errs []error
	if m.session != nil {
		errs = append(errs, m.session.Destroy())
		m.session = nil
	}
	if m.input != nil {
		errs = append(errs, m.input.Destroy())
		m.input = nil
	}
	if m.output != nil {
		errs = append(errs, m.output.Destroy())
		m.output = nil
	}
	return errors.Join(errs...)
}
