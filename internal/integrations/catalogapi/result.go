// internal/integrations/catalogapi/result.go
package catalogapi

import (
	"fmt"
	"net/http"
)

// Result – wynik wywołania API: Success(payload) albo Failure(status).
// Błędy transportu (brak odpowiedzi) idą osobno jako error.
type Result[T any] struct {
	payload T
	status  int
	ok      bool
}

func Success[T any](payload T) Result[T] {
	return Result[T]{payload: payload, status: http.StatusOK, ok: true}
}

func Failure[T any](status int) Result[T] {
	return Result[T]{status: status}
}

func (r Result[T]) OK() bool    { return r.ok }
func (r Result[T]) Status() int { return r.status }

// Payload zwraca dane tylko dla Success.
func (r Result[T]) Payload() (T, bool) {
	return r.payload, r.ok
}

// Err – Failure jako *StatusError, Success jako nil
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	return &StatusError{Status: r.status}
}

// StatusError – odpowiedź API inna niż 200
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog api: http %d", e.Status)
}
