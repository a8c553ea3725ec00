package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/openitup/storycode/internal/completion"
	"github.com/openitup/storycode/internal/engine"
	"github.com/openitup/storycode/internal/facts"
)

// Pipeline is the part of *engine.Engine the handlers call.
type Pipeline interface {
	Run(ctx context.Context, req engine.Request) (*engine.Result, error)
	Analyze(language, code string) (*facts.Structure, error)
	Languages() []string
}

// statusFor maps pipeline errors onto HTTP statuses and stable error codes.
func statusFor(err error) (int, string) {
	var pf *facts.ParseFailure
	var se *completion.ServiceError
	switch {
	case errors.As(err, &pf):
		return http.StatusUnprocessableEntity, "parse_failure"
	case errors.As(err, &se) && se.Timeout():
		return http.StatusGatewayTimeout, "completion_timeout"
	case errors.As(err, &se):
		return http.StatusBadGateway, "completion_failed"
	case errors.Is(err, engine.ErrUnknownFeature):
		return http.StatusNotFound, "unknown_feature"
	case errors.Is(err, engine.ErrUnsupportedLanguage):
		return http.StatusBadRequest, "unsupported_language"
	case errors.Is(err, engine.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge, "input_too_large"
	case errors.Is(err, context.Canceled):
		return 499, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
