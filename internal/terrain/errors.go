package terrain

import "errors"

var (
	// ErrEmptyGrid indicates a grid or dataset without any cells.
	ErrEmptyGrid = errors.New("terrain: grid must have at least one row and one column")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("terrain: all rows must have the same length")
	// ErrDimensionMismatch indicates rows that do not match the extent's size.
	ErrDimensionMismatch = errors.New("terrain: rows do not match extent dimensions")
	// ErrInvalidSpacing indicates a non-positive grid spacing.
	ErrInvalidSpacing = errors.New("terrain: spacing must be positive")
	// ErrMisaligned indicates a coordinate that is not a multiple of the spacing.
	ErrMisaligned = errors.New("terrain: coordinate is not grid aligned")
	// ErrOutsideExtent indicates a record that falls outside the grid extent.
	ErrOutsideExtent = errors.New("terrain: coordinate outside grid extent")
	// ErrTopKExceeds indicates a top-k request larger than the population.
	ErrTopKExceeds = errors.New("terrain: k exceeds population size")
)
