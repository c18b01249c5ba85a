package regularization

import (
	"errors"
	"fmt"
)

// ErrRegularizationConfig is the umbrella sentinel for invalid
// regularization input. Specific causes wrap it.
var ErrRegularizationConfig = errors.New("regularization: invalid configuration")

var (
	// ErrNonPositiveCoefficient indicates a coefficient ≤ 0, which would
	// make the penalty operator indefinite. Parameter priors normally
	// exclude this upstream.
	ErrNonPositiveCoefficient = fmt.Errorf("%w: coefficient must be positive", ErrRegularizationConfig)
	// ErrMalformedAdjacency indicates a neighbour index outside the mesh.
	ErrMalformedAdjacency = fmt.Errorf("%w: neighbour index out of range", ErrRegularizationConfig)
	// ErrBadSubset indicates a ConstantSplit membership slice whose
	// length does not match the mesh.
	ErrBadSubset = fmt.Errorf("%w: split subset length does not match mesh", ErrRegularizationConfig)
	// ErrBadSignals indicates adapt signals missing or mis-sized for the
	// AdaptiveBrightness scheme.
	ErrBadSignals = fmt.Errorf("%w: adapt signals length does not match mesh", ErrRegularizationConfig)
)

// Kind selects the regularization scheme.
type Kind int

const (
	// Constant applies one global coefficient to every neighbour pair.
	Constant Kind = iota
	// ConstantSplit applies InnerCoefficient to pixels inside the Inner
	// subset and OuterCoefficient to the rest.
	ConstantSplit
	// AdaptiveBrightness interpolates per-pixel coefficients between
	// InnerCoefficient (signal-dominated pixels) and OuterCoefficient
	// (empty pixels) according to adapt-image signals.
	AdaptiveBrightness
)

// String returns the scheme name.
func (k Kind) String() string {
	switch k {
	case Constant:
		return "Constant"
	case ConstantSplit:
		return "ConstantSplit"
	case AdaptiveBrightness:
		return "AdaptiveBrightness"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Config carries the scheme selection and its coefficients. Each kind
// reads only its own fields.
type Config struct {
	Kind Kind
	// Coefficient is the global Constant coefficient.
	Coefficient float64
	// InnerCoefficient / OuterCoefficient serve ConstantSplit and
	// AdaptiveBrightness.
	InnerCoefficient float64
	OuterCoefficient float64
	// Inner marks the ConstantSplit subset, one flag per mesh pixel.
	Inner []bool
	// SignalScale sharpens (>1) or flattens (<1) the adapt signals of
	// AdaptiveBrightness.
	SignalScale float64
}

// DefaultConfig returns a Constant scheme of coefficient 1.
func DefaultConfig() Config {
	return Config{Kind: Constant, Coefficient: 1.0, SignalScale: 1.0}
}
