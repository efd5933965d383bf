package ml

import (
	"math"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"finsentiment/pkg/errors"
)

// NumClasses is the width of the classifier's probability output,
// ordered bearish, neutral, bullish.
const NumClasses = 3

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment initializes the ONNX runtime once per process. The shared
// library path only takes effect on the first call.
func initEnvironment(runtimeLib string) error {
	envOnce.Do(func() {
		if runtimeLib != "" {
			onnxruntime.SetSharedLibraryPath(runtimeLib)
		}
		if err := onnxruntime.InitializeEnvironment(); err != nil {
			envErr = errors.Wrap(err, "failed to initialize ONNX runtime")
		}
	})
	return envErr
}

// SequenceModel wraps an ONNX session that maps a fixed-length sequence of
// token ids, shape [1, seqLen] int64, to class probabilities, shape [1, 3]
// float32.
type SequenceModel struct {
	mu         sync.RWMutex
	session    *onnxruntime.DynamicAdvancedSession
	inputName  string
	outputName string
	seqLen     int
}

// LoadSequenceModel loads a sequence classifier from file
func LoadSequenceModel(modelPath, runtimeLib, inputName, outputName string, seqLen int) (*SequenceModel, error) {
	if modelPath == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "model path is empty")
	}
	if seqLen <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "sequence length must be positive, got %d", seqLen)
	}

	if err := initEnvironment(runtimeLib); err != nil {
		return nil, err
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	// Dynamic session: tensors are created per call so concurrent Predict
	// calls never share buffers
	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName}, options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ONNX model")
	}

	return &SequenceModel{
		session:    session,
		inputName:  inputName,
		outputName: outputName,
		seqLen:     seqLen,
	}, nil
}

// SeqLen returns the input length the model was loaded for
func (m *SequenceModel) SeqLen() int {
	return m.seqLen
}

// Predict runs inference on one encoded sequence and returns the raw class
// probabilities in bearish, neutral, bullish order.
func (m *SequenceModel) Predict(ids []int64) ([]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return nil, errors.ErrModelUnavailable
	}
	if len(ids) != m.seqLen {
		return nil, errors.Wrapf(errors.ErrShapeMismatch, "input length %d, model expects %d", len(ids), m.seqLen)
	}

	inputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, int64(m.seqLen)), ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	outputTensor, err := onnxruntime.NewEmptyTensor[float32](onnxruntime.NewShape(1, NumClasses))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create output tensor")
	}
	defer outputTensor.Destroy()

	if err := m.session.Run([]onnxruntime.Value{inputTensor}, []onnxruntime.Value{outputTensor}); err != nil {
		return nil, errors.Wrapf(errors.ErrInference, "run failed: %v", err)
	}

	probs := make([]float32, NumClasses)
	copy(probs, outputTensor.GetData())

	if err := ValidateProbabilities(probs); err != nil {
		return nil, err
	}

	return probs, nil
}

// ValidateProbabilities checks a model output vector: exactly three finite,
// non-negative values.
func ValidateProbabilities(probs []float32) error {
	if len(probs) != NumClasses {
		return errors.Wrapf(errors.ErrShapeMismatch, "got %d outputs, want %d", len(probs), NumClasses)
	}
	for i, p := range probs {
		f := float64(p)
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return errors.Wrapf(errors.ErrInference, "output %d is not a probability: %v", i, p)
		}
	}
	return nil
}

// Close releases the ONNX session
func (m *SequenceModel) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
