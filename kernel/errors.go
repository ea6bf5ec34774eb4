package kernel

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrContractViolation is the sentinel wrapped by every error returned
// for a malformed call into ComputeTopChildScores (spec.md §7 fault
// kind 1). Callers in a long-running search loop are expected to log
// and skip the offending node rather than crash the engine, which is
// why these are returned errors rather than panics.
var ErrContractViolation = errors.New("kernel: contract violation")

func errInvalid(msg string) error {
	return errors.New(msg)
}

func contractViolation(format string, args ...interface{}) error {
	return errors.Wrap(ErrContractViolation, fmt.Sprintf(format, args...))
}
