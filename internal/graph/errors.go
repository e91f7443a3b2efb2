package graph

import (
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/wordgraph/internal/metrics"
)

var (
	// ErrInvalidArgument is returned before any mutation when an id is empty,
	// a strength is negative, or a limit/capacity is not positive.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when an id is absent from the store or tombstoned.
	ErrNotFound = errors.New("node not found")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}

// observe records the outcome of a store operation and passes err through.
func observe(op string, err error) error {
	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidArgument):
		result = metrics.ResultInvalid
	case errors.Is(err, ErrNotFound):
		result = metrics.ResultNotFound
	default:
		result = "error"
	}
	metrics.StoreOps.WithLabelValues(op, result).Inc()
	return err
}
