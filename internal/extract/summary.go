package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

var summaryPattern = regexp.MustCompile(`(?s)Описание:\s*(.*?)\n\s*Плюсы:\s*(.*?)\n\s*Минусы:\s*(.*)`)

// Summary is a short description of a car with its pros and cons
type Summary struct {
	Description string
	Pros        string
	Cons        string
}

// ParseSummary reads the "Описание / Плюсы / Минусы" layout.
func ParseSummary(text string) (Summary, bool) {
	m := summaryPattern.FindStringSubmatch(text)
	if m == nil {
		return Summary{}, false
	}
	return Summary{
		Description: strings.TrimSpace(m[1]),
		Pros:        strings.TrimSpace(m[2]),
		Cons:        strings.TrimSpace(m[3]),
	}, true
}

// Summarize asks the model for a summary of a description.
func (e *Extractor) Summarize(ctx context.Context, description string) (Summary, error) {
	if e.completer == nil {
		return Summary{}, fmt.Errorf("summary: completion client is not configured")
	}
	reply, err := e.completer.Complete(ctx, []model.ChatMessage{
		{Role: model.RoleUser, Content: summaryPrompt(description)},
	})
	if err != nil {
		return Summary{}, fmt.Errorf("summary: %w", err)
	}
	s, ok := ParseSummary(reply)
	if !ok {
		return Summary{}, fmt.Errorf("summary: unexpected reply format")
	}
	return s, nil
}
