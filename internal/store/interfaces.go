package store

import (
	"context"
	"errors"

	"gitgrok.app/api/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert
var ErrDuplicate = errors.New("already exists")

// UserStore defines the contract for user data access
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// ChatStore persists chat turns. Turns are append-only.
type ChatStore interface {
	Append(ctx context.Context, turn *model.ChatTurn) error
	// Recent returns up to limit turns for the user and repository, newest first.
	Recent(ctx context.Context, userID int64, owner, repo string, limit int) ([]model.ChatTurn, error)
}

// ReportStore persists generated analysis reports
type ReportStore interface {
	Create(ctx context.Context, report *model.AnalysisReport) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.AnalysisReport, error)
}
