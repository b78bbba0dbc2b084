package conversation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
)

func textHistory(n int) chat.Conversation {
	history := make(chat.Conversation, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			history = append(history, chat.NewUserTextMessage(fmt.Sprintf("prompt %d", i)))
		} else {
			history = append(history, chat.NewAssistantMessage(chat.NewTextBlock(fmt.Sprintf("reply %d", i))))
		}
	}
	return history
}

func TestApplyWindowWithinLimitIsNoop(t *testing.T) {
	history := textHistory(10)
	m := NewSlidingWindowManager(40)

	require.NoError(t, m.ApplyWindow(&history))
	assert.Len(t, history, 10)
}

func TestApplyWindowTrimsOldestMessages(t *testing.T) {
	history := textHistory(12)
	m := NewSlidingWindowManager(8)

	require.NoError(t, m.ApplyWindow(&history))

	assert.Len(t, history, 8)
	assert.Equal(t, "prompt 4", history[0].Text())
}

func TestApplyWindowNeverStartsOnToolResult(t *testing.T) {
	history := chat.Conversation{
		chat.NewUserTextMessage("a"),
		chat.NewAssistantMessage(chat.NewTextBlock("b")),
		chat.NewUserTextMessage("c"),
		chat.NewAssistantMessage(chat.NewToolUseBlock("toolu_01", "t", map[string]any{"x": 1})),
		chat.NewToolResultMessage(chat.TextResult("toolu_01", "r")),
		chat.NewAssistantMessage(chat.NewTextBlock("d")),
		chat.NewUserTextMessage("e"),
	}
	m := NewSlidingWindowManager(4)

	require.NoError(t, m.ApplyWindow(&history))

	first := history[0]
	assert.False(t, first.HasToolResult())
	if first.HasToolUse() {
		require.Greater(t, len(history), 1)
		for _, use := range first.ToolUses() {
			assert.True(t, history[1].HasToolResultFor(use.ID))
		}
	}
	assert.LessOrEqual(t, len(history), 5)
}

func TestApplyWindowKeepsToolUseWithItsResults(t *testing.T) {
	history := chat.Conversation{
		chat.NewUserTextMessage("a"),
		chat.NewAssistantMessage(chat.NewTextBlock("b")),
		chat.NewAssistantMessage(chat.NewToolUseBlock("toolu_01", "t", map[string]any{"x": 1})),
		chat.NewToolResultMessage(chat.TextResult("toolu_01", "r")),
		chat.NewAssistantMessage(chat.NewTextBlock("c")),
	}
	m := NewSlidingWindowManager(3)

	require.NoError(t, m.ApplyWindow(&history))

	require.NotEmpty(t, history)
	assert.True(t, history[0].HasToolUse())
	assert.True(t, history[1].HasToolResultFor("toolu_01"))
}

func TestApplyWindowUnrecoverable(t *testing.T) {
	history := chat.Conversation{
		chat.NewUserTextMessage("a"),
		chat.NewAssistantMessage(chat.NewTextBlock("b")),
		chat.NewToolResultMessage(chat.TextResult("toolu_01", "r")),
		chat.NewAssistantMessage(chat.NewToolUseBlock("toolu_02", "t", map[string]any{"x": 1})),
	}
	m := NewSlidingWindowManager(1)

	err := m.ApplyWindow(&history)
	assert.ErrorIs(t, err, ErrCannotTrim)
}

func TestMarkOversizedToolResults(t *testing.T) {
	history := chat.Conversation{
		chat.NewAssistantMessage(chat.NewToolUseBlock("toolu_01", "t", map[string]any{"x": 1})),
		chat.NewToolResultMessage(chat.TextResult("toolu_01", "an enormous payload")),
		chat.NewAssistantMessage(chat.NewToolUseBlock("toolu_02", "t", map[string]any{"x": 2})),
		chat.NewToolResultMessage(
			chat.TextResult("toolu_02", "another enormous payload"),
		),
	}

	marked := MarkOversizedToolResults(&history)

	require.True(t, marked)
	// only the most recent tool result message is rewritten
	first := history[1].ToolResults()
	require.Len(t, first, 1)
	assert.Equal(t, "an enormous payload", first[0].Content[0].Text)

	last := history[3].ToolResults()
	require.Len(t, last, 1)
	assert.Equal(t, chat.ToolResultError, last[0].Status)
	assert.Equal(t, oversizedToolResultText, last[0].Content[0].Text)
}

func TestMarkOversizedToolResultsWithoutResults(t *testing.T) {
	history := chat.Conversation{
		chat.NewUserTextMessage("hi"),
		chat.NewAssistantMessage(chat.NewTextBlock("hello")),
	}

	assert.False(t, MarkOversizedToolResults(&history))
}
