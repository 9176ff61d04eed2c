package pipeline

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Brownie44l1/catdog-api/internal/model"
	"github.com/Brownie44l1/catdog-api/internal/preprocess"
)

type Kind string

const (
	KindRouteNotFound     Kind = "route_not_found"
	KindInvalidRequest    Kind = "invalid_request"
	KindModelLoad         Kind = "model_load"
	KindUnsupportedFormat Kind = "unsupported_image_format"
	KindInference         Kind = "inference"
	KindInternal          Kind = "internal"
)

var (
	ErrRouteNotFound  = errors.New("route not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Error is a failed pipeline run. Only KindRouteNotFound maps to 404; every
// other kind is reported to the caller as a 500 with Err's message.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("status %d: %s: %v", e.StatusCode, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify wraps err into an *Error according to the sentinel it carries.
func classify(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	kind := KindInternal
	switch {
	case errors.Is(err, ErrRouteNotFound):
		return &Error{Kind: KindRouteNotFound, StatusCode: http.StatusNotFound, Err: err}
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, preprocess.ErrDecode):
		kind = KindInvalidRequest
	case errors.Is(err, model.ErrModelLoad):
		kind = KindModelLoad
	case errors.Is(err, preprocess.ErrUnsupportedImageFormat):
		kind = KindUnsupportedFormat
	case errors.Is(err, model.ErrInference):
		kind = KindInference
	}
	return &Error{Kind: kind, StatusCode: http.StatusInternalServerError, Err: err}
}
