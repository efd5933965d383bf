package indicators

import (
	"math"

	"finsentiment/pkg/errors"
)

// PrepareSeries validates a score series before it is handed to ta-lib.
// ta-lib expects chronological order (first sentence first) and finite values.
func PrepareSeries(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "no values provided")
	}
	series := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "value %d is not finite", i)
		}
		series[i] = v
	}
	return series, nil
}

// GetLastValue returns the most recent value from ta-lib output
// ta-lib returns full array, we typically only need the latest value
func GetLastValue(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.Wrapf(errors.ErrInternal, "no values returned from indicator")
	}
	return values[len(values)-1], nil
}
