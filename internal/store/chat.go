package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gitgrok.app/api/core/db"
	"gitgrok.app/api/internal/model"
)

const chatColumns = `id, user_id, bot_id, recipient_user_id, message, sender_type,
	owner, repo, issue_id, pull_request_id, selected_tool, created_at, updated_at`

type chatStore struct {
	q db.Querier
}

func newChatStore(q db.Querier) ChatStore {
	return &chatStore{q: q}
}

func (s *chatStore) Append(ctx context.Context, turn *model.ChatTurn) error {
	if !turn.Valid() {
		return fmt.Errorf("invalid chat turn: need exactly one recipient, a known sender and at most %d characters", model.MaxChatMessageLen)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO chat_messages (
			id, user_id, bot_id, recipient_user_id, message, sender_type,
			owner, repo, issue_id, pull_request_id, selected_tool
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))
		RETURNING `+chatColumns,
		turn.ID, turn.UserID, turn.BotID, turn.RecipientUserID, turn.Message, string(turn.SenderType),
		turn.Context.Owner, turn.Context.Repo, turn.Context.IssueID, turn.Context.PullRequestID, turn.Context.SelectedTool,
	)
	stored, err := scanChatTurn(row)
	if err != nil {
		return fmt.Errorf("inserting chat turn: %w", err)
	}
	*turn = *stored
	return nil
}

func (s *chatStore) Recent(ctx context.Context, userID int64, owner, repo string, limit int) ([]model.ChatTurn, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+chatColumns+`
		FROM chat_messages
		WHERE user_id = $1 AND owner = $2 AND repo = $3
		ORDER BY created_at DESC, id DESC
		LIMIT $4`,
		userID, owner, repo, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying chat history: %w", err)
	}
	defer rows.Close()

	var turns []model.ChatTurn
	for rows.Next() {
		turn, err := scanChatTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, *turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading chat history: %w", err)
	}
	return turns, nil
}

func scanChatTurn(row pgx.Row) (*model.ChatTurn, error) {
	var (
		t            model.ChatTurn
		sender       string
		owner, repo  *string
		selectedTool *string
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.BotID, &t.RecipientUserID, &t.Message, &sender,
		&owner, &repo, &t.Context.IssueID, &t.Context.PullRequestID, &selectedTool,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	t.SenderType = model.SenderType(sender)
	t.Context.Owner = deref(owner)
	t.Context.Repo = deref(repo)
	t.Context.SelectedTool = deref(selectedTool)
	return &t, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
