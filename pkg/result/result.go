package result

import "fmt"

// Reason classifies a calculation failure. Reasons are stable identifiers that
// survive serialization into journals and API responses.
type Reason string

const (
	// MissingMarketData indicates a requested key has no configured source.
	MissingMarketData Reason = "MISSING_MARKET_DATA"
	// UnsupportedMeasure indicates no function group provides the measure for
	// the target's type.
	UnsupportedMeasure Reason = "UNSUPPORTED_MEASURE"
	// BuildFailure indicates a market data function failed while constructing
	// a derived value, or a dependency of the key failed.
	BuildFailure Reason = "BUILD_FAILURE"
	// ScenarioMismatch indicates a sequence length inconsistent with the
	// declared scenario count.
	ScenarioMismatch Reason = "SCENARIO_MISMATCH"
	// ConversionUnavailable indicates no FX rate data exists for a currency
	// pair needed to convert a result.
	ConversionUnavailable Reason = "CONVERSION_UNAVAILABLE"
	// ResolutionCycle indicates the requirements resolver detected a cycle
	// between derived keys.
	ResolutionCycle Reason = "RESOLUTION_CYCLE"
)

// Failure is a typed calculation failure. It implements error so it can flow
// through ordinary error returns before being captured in a Result cell.
type Failure struct {
	Reason  Reason
	Message string
}

func (f *Failure) Error() string {
	if f == nil {
		return "<nil failure>"
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Message)
}

// Failf constructs a Failure with a formatted message.
func Failf(reason Reason, format string, args ...any) *Failure {
	return &Failure{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AsFailure extracts a *Failure from err, wrapping unclassified errors as
// BuildFailure so every captured cell carries a reason.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	if f, ok := err.(*Failure); ok {
		return f
	}
	return &Failure{Reason: BuildFailure, Message: err.Error()}
}

// Result holds either a value or a Failure. The zero value is a failure with
// no reason; construct via Ok or Fail.
type Result[T any] struct {
	value   T
	failure *Failure
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a failure.
func Fail[T any](f *Failure) Result[T] {
	if f == nil {
		f = &Failure{Reason: BuildFailure, Message: "unspecified failure"}
	}
	return Result[T]{failure: f}
}

// FailErr wraps an arbitrary error, classifying it via AsFailure.
func FailErr[T any](err error) Result[T] {
	return Result[T]{failure: AsFailure(err)}
}

// IsSuccess reports whether the result holds a value.
func (r Result[T]) IsSuccess() bool { return r.failure == nil }

// Value returns the held value. Calling Value on a failed result returns the
// zero value; check IsSuccess or use Get when the distinction matters.
func (r Result[T]) Value() T { return r.value }

// Failure returns the held failure, nil on success.
func (r Result[T]) Failure() *Failure { return r.failure }

// Get returns the value or the failure as an error.
func (r Result[T]) Get() (T, error) {
	if r.failure != nil {
		var zero T
		return zero, r.failure
	}
	return r.value, nil
}
