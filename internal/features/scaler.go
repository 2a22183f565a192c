package features

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/nvandessel/neuropulse/internal/models"
)

// Transformer maps a feature matrix to a new one of the same shape.
// Implementations must not modify their input.
type Transformer interface {
	Transform(m *Matrix) (*Matrix, error)
}

// StandardScaler centers each column on its mean and divides by its
// population standard deviation. Columns with zero spread are only
// centered. A fitted scaler is immutable.
type StandardScaler struct {
	columns []string
	means   []float64
	stds    []float64
}

var _ Transformer = StandardScaler{}

// FitStandardScaler learns per-column statistics from m.
func FitStandardScaler(m *Matrix) (StandardScaler, error) {
	if m.Rows() == 0 {
		return StandardScaler{}, fmt.Errorf("fit scaler on empty matrix: %w", models.ErrInvalidArgument)
	}
	s := StandardScaler{
		columns: m.Columns(),
		means:   make([]float64, m.Cols()),
		stds:    make([]float64, m.Cols()),
	}
	for j := 0; j < m.Cols(); j++ {
		mean, variance := stat.PopMeanVariance(m.Col(j), nil)
		s.means[j] = mean
		s.stds[j] = math.Sqrt(variance)
	}
	return s, nil
}

// Means returns the fitted column means.
func (s StandardScaler) Means() []float64 { return slices.Clone(s.means) }

// Stds returns the fitted column standard deviations.
func (s StandardScaler) Stds() []float64 { return slices.Clone(s.stds) }

// Transform returns a scaled copy of m. The columns must match the ones
// the scaler was fitted on.
func (s StandardScaler) Transform(m *Matrix) (*Matrix, error) {
	if s.means == nil {
		return nil, fmt.Errorf("scaler is not fitted: %w", models.ErrInvalidArgument)
	}
	if !slices.Equal(m.columns, s.columns) {
		return nil, fmt.Errorf("column mismatch: fitted on %d columns, got %d: %w",
			len(s.columns), m.Cols(), models.ErrInvalidArgument)
	}

	out := m.Clone()
	for i := 0; i < out.rows; i++ {
		for j := range s.means {
			v := out.At(i, j) - s.means[j]
			if s.stds[j] > 0 {
				v /= s.stds[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}
