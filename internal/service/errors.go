package service

import (
	"errors"
	"strings"

	"gitgrok.app/api/common/apperr"
	"gitgrok.app/api/internal/analysis"
	"gitgrok.app/api/internal/chat"
	"gitgrok.app/api/internal/github"
	"gitgrok.app/api/internal/repourl"
	"gitgrok.app/api/internal/sandbox"
	"gitgrok.app/api/internal/store"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrMissingField       = errors.New("missing required field")
)

// classify wraps err in an *apperr.Error whose kind follows the sentinel it carries.
// Order matters: tool failures caused by GitHub are reported as GitHub failures.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *apperr.Error
	if errors.As(err, &existing) {
		return err
	}

	switch {
	case errors.Is(err, ErrMissingField):
		return apperr.Wrap(apperr.KindValidation, op, err, detail(err, ErrMissingField))
	case errors.Is(err, ErrUserExists):
		return apperr.Wrap(apperr.KindValidation, op, err, "User already exists")
	case errors.Is(err, ErrInvalidCredentials):
		return apperr.Wrap(apperr.KindAuth, op, err, "Invalid email or password")
	case errors.Is(err, ErrTokenExpired):
		return apperr.Wrap(apperr.KindAuth, op, err, "Token expired")
	case errors.Is(err, ErrInvalidToken):
		return apperr.Wrap(apperr.KindAuth, op, err, "Invalid token")
	case errors.Is(err, repourl.ErrInvalidURL), errors.Is(err, analysis.ErrInvalidURL):
		return apperr.Wrap(apperr.KindValidation, op, err, "Invalid GitHub repository URL")
	case errors.Is(err, chat.ErrValidation):
		return apperr.Wrap(apperr.KindValidation, op, err, detail(err, chat.ErrValidation))
	case errors.Is(err, github.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(apperr.KindNotFound, op, err, "Resource not found")
	case errors.Is(err, github.ErrUpstream):
		return apperr.Wrap(apperr.KindUpstream, op, err, "GitHub request failed")
	case errors.Is(err, chat.ErrToolExecution):
		return apperr.Wrap(apperr.KindToolExecution, op, err, detail(err, chat.ErrToolExecution))
	case errors.Is(err, chat.ErrLLM):
		return apperr.Wrap(apperr.KindUpstream, op, err, "Language model request failed")
	case errors.Is(err, sandbox.ErrClone):
		return apperr.Wrap(apperr.KindUpstream, op, err, "Failed to clone repository")
	case errors.Is(err, analysis.ErrAnalysisFailed):
		return apperr.Wrap(apperr.KindUpstream, op, err, "Repository analysis failed")
	default:
		return apperr.Wrap(apperr.KindInternal, op, err, "Something went wrong")
	}
}

// detail strips the sentinel prefix from "sentinel: detail" style messages.
func detail(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}
