package dialogue

import "github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"

// Turn is one user message and the reply it received
type Turn struct {
	User      string
	Assistant string
}

// History is a bounded conversation log. The system prompt is pinned and
// never evicted; turns live in a fixed-size ring and the oldest turn is
// overwritten once the ring is full.
type History struct {
	system string
	ring   []Turn
	start  int
	size   int
}

// NewHistory creates a history holding at most maxTurns turns (minimum 1).
func NewHistory(system string, maxTurns int) *History {
	if maxTurns < 1 {
		maxTurns = 1
	}
	return &History{system: system, ring: make([]Turn, maxTurns)}
}

// Append records a turn, evicting the oldest one when full.
func (h *History) Append(t Turn) {
	if h.size < len(h.ring) {
		h.ring[(h.start+h.size)%len(h.ring)] = t
		h.size++
		return
	}
	h.ring[h.start] = t
	h.start = (h.start + 1) % len(h.ring)
}

// Turns returns the retained turns, oldest first.
func (h *History) Turns() []Turn {
	out := make([]Turn, 0, h.size)
	for i := 0; i < h.size; i++ {
		out = append(out, h.ring[(h.start+i)%len(h.ring)])
	}
	return out
}

// Messages renders the system prompt, the retained turns and any pending
// user messages in the order the completion service expects.
func (h *History) Messages(pending ...string) []model.ChatMessage {
	msgs := make([]model.ChatMessage, 0, 1+2*h.size+len(pending))
	msgs = append(msgs, model.ChatMessage{Role: model.RoleSystem, Content: h.system})
	for _, t := range h.Turns() {
		msgs = append(msgs,
			model.ChatMessage{Role: model.RoleUser, Content: t.User},
			model.ChatMessage{Role: model.RoleAssistant, Content: t.Assistant},
		)
	}
	for _, p := range pending {
		msgs = append(msgs, model.ChatMessage{Role: model.RoleUser, Content: p})
	}
	return msgs
}

// Len is the number of retained turns.
func (h *History) Len() int { return h.size }

// Cap is the maximum number of retained turns.
func (h *History) Cap() int { return len(h.ring) }

// System returns the pinned system prompt.
func (h *History) System() string { return h.system }

// Reset drops every turn and keeps the system prompt.
func (h *History) Reset() {
	clear(h.ring)
	h.start, h.size = 0, 0
}
