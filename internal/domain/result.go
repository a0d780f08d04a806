package domain

// Outcome tags whether a query reached the store.
type Outcome string

// Query outcomes.
const (
	OutcomeOK          Outcome = "ok"
	OutcomeUnavailable Outcome = "unavailable"
)

// Result carries query data together with its outcome. Data is the zero value
// when Outcome is OutcomeUnavailable.
type Result[T any] struct {
	Outcome Outcome
	Data    T
}

// OK wraps data in a successful result.
func OK[T any](data T) Result[T] {
	return Result[T]{Outcome: OutcomeOK, Data: data}
}

// Unavailable returns a result signaling that the store could not be reached.
func Unavailable[T any]() Result[T] {
	return Result[T]{Outcome: OutcomeUnavailable}
}

// Available reports whether the query completed.
func (r Result[T]) Available() bool {
	return r.Outcome == OutcomeOK
}
