package ridership

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedTimestamp marks a row whose timestamp could not be parsed.
	// The cleaner drops such rows and keeps going.
	ErrMalformedTimestamp = errors.New("malformed timestamp")

	// ErrNegativeRidership marks a row that violates ridership >= 0.
	ErrNegativeRidership = errors.New("negative ridership")

	// ErrDomainArity is returned by Complete when a row key and the domain list
	// disagree on the number of grouping columns.
	ErrDomainArity = errors.New("group key arity does not match domains")
)

// MissingColumnError reports that a derived output needs source columns the
// dataset does not carry. It aborts only that output.
type MissingColumnError struct {
	Output  string
	Missing []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing required column(s): %s", e.Output, strings.Join(e.Missing, ", "))
}
