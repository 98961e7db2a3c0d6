package dialogue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZavgorodnevAAlDvfu/AutoAssistant/internal/model"
)

func TestHistoryEvictsOldestTurn(t *testing.T) {
	h := NewHistory("system prompt", 3)
	for i := 1; i <= 5; i++ {
		h.Append(Turn{User: fmt.Sprintf("u%d", i), Assistant: fmt.Sprintf("a%d", i)})
	}

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []Turn{{"u3", "a3"}, {"u4", "a4"}, {"u5", "a5"}}, h.Turns())
}

func TestHistoryKeepsSystemPromptVerbatim(t *testing.T) {
	const system = "  Ты - ассистент.\nОтвечай JSON.  "
	h := NewHistory(system, 2)
	for i := 0; i < 10; i++ {
		h.Append(Turn{User: "q", Assistant: "a"})

		msgs := h.Messages()
		require.NotEmpty(t, msgs)
		assert.Equal(t, model.ChatMessage{Role: model.RoleSystem, Content: system}, msgs[0])
		assert.LessOrEqual(t, len(msgs), 1+2*2)
	}
}

func TestHistoryMessagesWithPending(t *testing.T) {
	h := NewHistory("sys", 2)
	h.Append(Turn{User: "u1", Assistant: "a1"})

	assert.Equal(t, []model.ChatMessage{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "u1"},
		{Role: model.RoleAssistant, Content: "a1"},
		{Role: model.RoleUser, Content: "u2"},
	}, h.Messages("u2"))
}

func TestHistoryReset(t *testing.T) {
	h := NewHistory("sys", 1)
	h.Append(Turn{User: "u", Assistant: "a"})
	h.Reset()

	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Turns())
	assert.Len(t, h.Messages(), 1)

	h.Append(Turn{User: "u2", Assistant: "a2"})
	assert.Equal(t, []Turn{{"u2", "a2"}}, h.Turns())
}

func TestHistoryMinimumCapacity(t *testing.T) {
	h := NewHistory("sys", 0)
	assert.Equal(t, 1, h.Cap())
}
