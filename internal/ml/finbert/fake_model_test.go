package finbert

import (
	"sync/atomic"

	"finsentiment/pkg/errors"
)

// fakeModel returns fixed probabilities and records the last input
type fakeModel struct {
	probs   []float32
	err     error
	panics  bool
	calls   atomic.Int64
	lastLen atomic.Int64
}

func (m *fakeModel) Predict(ids []int64) ([]float32, error) {
	m.calls.Add(1)
	m.lastLen.Store(int64(len(ids)))
	if m.panics {
		panic("tensor backend exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.probs, nil
}

var errBackend = errors.New("backend unavailable")
