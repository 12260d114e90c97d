package model

import "time"

type SenderType string

const (
	SenderUser SenderType = "user"
	SenderBot  SenderType = "bot"
)

// MaxChatMessageLen bounds a stored chat message, in characters.
const MaxChatMessageLen = 5000

// ChatContext ties a turn to the repository (and optionally the issue or PR) it was about.
type ChatContext struct {
	Owner         string `json:"owner"`
	Repo          string `json:"repo"`
	IssueID       *int64 `json:"issueId,omitempty"`
	PullRequestID *int64 `json:"pullRequestId,omitempty"`
	SelectedTool  string `json:"selectedTool,omitempty"`
}

// ChatTurn is one persisted message of a conversation. Exactly one of
// BotID and RecipientUserID is set.
type ChatTurn struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"userId"`
	BotID           *string     `json:"botId,omitempty"`
	RecipientUserID *int64      `json:"recipientUserId,omitempty"`
	Message         string      `json:"message"`
	SenderType      SenderType  `json:"senderType"`
	Context         ChatContext `json:"context"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (t ChatTurn) Valid() bool {
	if (t.BotID == nil) == (t.RecipientUserID == nil) {
		return false
	}
	if t.SenderType != SenderUser && t.SenderType != SenderBot {
		return false
	}
	return len([]rune(t.Message)) <= MaxChatMessageLen
}

// ClampMessage cuts s to MaxChatMessageLen characters.
func ClampMessage(s string) string {
	r := []rune(s)
	if len(r) <= MaxChatMessageLen {
		return s
	}
	return string(r[:MaxChatMessageLen])
}
