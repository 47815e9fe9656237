package concat

import (
	"errors"
	"fmt"
)

// ErrInvalidArgumentKind reports an argument that is neither a string, a
// sequence nor a mapping and cannot be coerced into one.
var ErrInvalidArgumentKind = errors.New("concat: invalid argument kind")

// InvalidArgumentError describes the offending argument. Index is the
// positional index, or -1 when the value was classified outside of a call.
type InvalidArgumentError struct {
	Index int
	Type  string
}

func (e *InvalidArgumentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("concat: unsupported argument type %s", e.Type)
	}
	return fmt.Sprintf("concat: argument %d: unsupported type %s", e.Index, e.Type)
}

// Unwrap allows errors.Is(err, ErrInvalidArgumentKind).
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgumentKind
}

// BlockRenderError wraps a failure returned by the block renderer.
type BlockRenderError struct {
	Err error
}

func (e *BlockRenderError) Error() string {
	return fmt.Sprintf("concat: render block: %v", e.Err)
}

func (e *BlockRenderError) Unwrap() error {
	return e.Err
}

func argumentError(err error, index int) error {
	var invalid *InvalidArgumentError
	if errors.As(err, &invalid) {
		return &InvalidArgumentError{Index: index, Type: invalid.Type}
	}
	return fmt.Errorf("concat: argument %d: %w", index, err)
}
