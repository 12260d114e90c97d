package chat

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gitgrok.app/api/internal/model"
	"gitgrok.app/api/internal/repourl"
)

const selectionSystemPrompt = `You route questions about a GitHub repository to exactly one data source.
Reply with the tool name only: no punctuation, no explanation.`

const answerSystemPrompt = `You are a helpful assistant answering questions about a GitHub repository.
Ground every statement in the provided repository data and conversation history. If the data does not
answer the question, say so plainly. Respond with a single JSON object of the form {"response": "<answer>"}.`

func buildSelectionPrompt(ref repourl.Ref, question string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n\n", ref.FullName())
	b.WriteString("Available tools:\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.name, t.description)
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\nWhich tool should be used?", question)
	return b.String()
}

func buildAnswerPrompt(ref repourl.Ref, question string, tool ToolName, data any, history []model.ChatTurn) (string, error) {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serializing tool data: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n\n", ref.FullName())
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "%s (from %s):\n%s\n\n", tool.Label(), tool, payload)

	if len(history) > 0 {
		b.WriteString("Recent conversation (most recent first):\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "- %s: %s\n", turn.SenderType, turn.Message)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Answer the question. Return only {"response": "..."}.`)
	return b.String(), nil
}

// normalizeSelection lowercases and trims the model's tool choice, dropping
// quotes and a trailing period some models add.
func normalizeSelection(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".")
	s = strings.Trim(s, "`'\"")
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// parseAnswer extracts the "response" field from the model output. Lists are
// joined with newlines; anything unparseable is returned as-is.
func parseAnswer(raw string) string {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return strings.TrimSpace(raw)
	}
	field, ok := obj["response"]
	if !ok {
		return strings.TrimSpace(raw)
	}

	var s string
	if err := json.Unmarshal(field, &s); err == nil {
		return s
	}

	var list []any
	if err := json.Unmarshal(field, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if str, ok := item.(string); ok {
				parts = append(parts, str)
				continue
			}
			encoded, _ := json.Marshal(item)
			parts = append(parts, string(encoded))
		}
		return strings.Join(parts, "\n")
	}

	return strings.TrimSpace(raw)
}
