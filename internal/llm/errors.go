package llm

import (
	"errors"
	"fmt"
)

// GenerationError indicates the text-generation service was unusable
// for a call: unreachable, over quota, or returning unparseable output.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failure (%s): %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err (or any error in its chain) is
// a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
