package model

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ErrModelLoad = errors.New("model load failed")
	ErrInference = errors.New("inference failed")
)

type Options struct {
	// LibraryPath points at the onnxruntime shared library. Empty keeps the
	// runtime's default lookup.
	LibraryPath      string
	IntraOpThreads   int
	DefaultImageSize int
}

// Handle owns a loaded ONNX session with a single input and a single output.
// It is immutable after Load and safe for concurrent Infer calls.
type Handle struct {
	session     *ort.DynamicAdvancedSession
	inputName   string
	outputName  string
	inputShape  ort.Shape
	outputShape ort.Shape
	imageSize   ImageSize
}

var envMu sync.Mutex

func initEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	return nil
}

// Load opens the model at path on the CPU execution provider.
func Load(path string, opts Options) (*Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: model not found: %s: %w", ErrModelLoad, path, err)
	}
	if opts.DefaultImageSize <= 0 {
		opts.DefaultImageSize = DefaultImageSize
	}

	if err := initEnvironment(opts.LibraryPath); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read model graph: %w", ErrModelLoad, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: model declares %d inputs and %d outputs", ErrModelLoad, len(inputs), len(outputs))
	}
	input, output := inputs[0], outputs[0]
	if input.DataType != ort.TensorElementDataTypeFloat || output.DataType != ort.TensorElementDataTypeFloat {
		return nil, fmt.Errorf("%w: expected float32 input and output, got %v and %v", ErrModelLoad, input.DataType, output.DataType)
	}

	sessionOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create session options: %w", ErrModelLoad, err)
	}
	defer sessionOpts.Destroy()
	if opts.IntraOpThreads > 0 {
		if err := sessionOpts.SetIntraOpNumThreads(opts.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("%w: failed to set intra-op threads: %w", ErrModelLoad, err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{input.Name}, []string{output.Name}, sessionOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ONNX session: %w", ErrModelLoad, err)
	}

	return &Handle{
		session:     session,
		inputName:   input.Name,
		outputName:  output.Name,
		inputShape:  input.Dimensions,
		outputShape: concreteShape(output.Dimensions),
		imageSize:   DetectImageSize(input.Dimensions, opts.DefaultImageSize),
	}, nil
}

// concreteShape pins dynamic dims to 1, which is the batch size used here.
func concreteShape(dims ort.Shape) ort.Shape {
	if len(dims) == 0 {
		return ort.NewShape(1)
	}
	shape := make(ort.Shape, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		shape[i] = d
	}
	return shape
}

func (h *Handle) ImageSize() ImageSize { return h.imageSize }
func (h *Handle) InputName() string    { return h.inputName }
func (h *Handle) OutputName() string   { return h.outputName }
func (h *Handle) InputShape() []int64  { return h.inputShape }

// Infer runs one forward pass and returns the first batch element of the
// output as a flat vector. The input tensor is only read.
func (h *Handle) Infer(t Tensor) ([]float32, error) {
	want := []int64{1, int64(h.imageSize.Height), int64(h.imageSize.Width), 3}
	if !slices.Equal(t.Shape, want) {
		return nil, fmt.Errorf("%w: input shape %v, want %v", ErrInference, t.Shape, want)
	}

	input, err := ort.NewTensor(ort.NewShape(t.Shape...), t.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create input tensor: %w", ErrInference, err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](h.outputShape)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create output tensor: %w", ErrInference, err)
	}
	defer output.Destroy()

	if err := h.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}

	data := output.GetData()
	perBatch := len(data)
	if batch := int(h.outputShape[0]); len(h.outputShape) > 1 && batch > 0 {
		perBatch = len(data) / batch
	}
	out := make([]float32, perBatch)
	copy(out, data[:perBatch])
	return out, nil
}

func (h *Handle) Close() {
	if h.session != nil {
		h.session.Destroy()
	}
}

// Shutdown releases the process-wide ONNX environment.
func Shutdown() {
	envMu.Lock()
	defer envMu.Unlock()
	if ort.IsInitialized() {
		ort.DestroyEnvironment()
	}
}
