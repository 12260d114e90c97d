package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitgrok.app/api/internal/model"
)

type ChatRequest struct {
	Question         string         `json:"question"`
	RepoURL          string         `json:"repoUrl"`
	AdditionalParams map[string]any `json:"additionalParams,omitempty"`
}

// Params flattens additionalParams to strings. Lists become comma separated.
func (r ChatRequest) Params() map[string]string {
	if len(r.AdditionalParams) == 0 {
		return nil
	}
	params := make(map[string]string, len(r.AdditionalParams))
	for key, value := range r.AdditionalParams {
		if s, ok := flatten(value); ok {
			params[key] = s
		}
	}
	return params
}

func flatten(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := flatten(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), true
	default:
		return fmt.Sprint(v), true
	}
}

type ChatHistoryRequest struct {
	RepoURL string `json:"repoUrl" form:"repoUrl"`
	Limit   int    `json:"limit" form:"limit"`
}

type ChatContextResponse struct {
	Owner         string `json:"owner"`
	Repo          string `json:"repo"`
	IssueID       *int64 `json:"issueId,omitempty"`
	PullRequestID *int64 `json:"pullRequestId,omitempty"`
	SelectedTool  string `json:"selectedTool,omitempty"`
}

type ChatTurnResponse struct {
	ID              int64               `json:"id,string"`
	UserID          int64               `json:"userId,string"`
	BotID           *string             `json:"botId,omitempty"`
	RecipientUserID *int64              `json:"recipientUserId,omitempty,string"`
	Message         string              `json:"message"`
	SenderType      model.SenderType    `json:"senderType"`
	Context         ChatContextResponse `json:"context"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func ToChatTurnResponses(turns []model.ChatTurn) []ChatTurnResponse {
	out := make([]ChatTurnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, ChatTurnResponse{
			ID:              t.ID,
			UserID:          t.UserID,
			BotID:           t.BotID,
			RecipientUserID: t.RecipientUserID,
			Message:         t.Message,
			SenderType:      t.SenderType,
			Context: ChatContextResponse{
				Owner:         t.Context.Owner,
				Repo:          t.Context.Repo,
				IssueID:       t.Context.IssueID,
				PullRequestID: t.Context.PullRequestID,
				SelectedTool:  t.Context.SelectedTool,
			},
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	}
	return out
}

type ChatResponse struct {
	Answer   string             `json:"answer"`
	ToolUsed string             `json:"toolUsed"`
	History  []ChatTurnResponse `json:"history"`
}
