package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageText(t *testing.T) {
	msg := NewAssistantMessage(
		NewTextBlock("hello"),
		NewToolUseBlock("toolu_01", "search", map[string]any{"q": "go"}),
		NewTextBlock(" world"),
	)
	assert.Equal(t, "hello world", msg.Text())
}

func TestMessageToolAccessors(t *testing.T) {
	msg := NewAssistantMessage(
		NewTextBlock("let me look"),
		NewToolUseBlock("toolu_01", "search", map[string]any{"q": "go"}),
	)

	assert.True(t, msg.HasToolUse())
	uses := msg.ToolUses()
	require.Len(t, uses, 1)
	assert.Equal(t, "search", uses[0].Name)

	results := NewToolResultMessage(
		TextResult("toolu_01", "found"),
		ErrorResult("toolu_02", "nope"),
	)
	assert.Equal(t, RoleUser, results.Role)
	assert.True(t, results.HasToolResult())
	assert.True(t, results.HasToolResultFor("toolu_01"))
	assert.False(t, results.HasToolResultFor("toolu_99"))
	require.Len(t, results.ToolResults(), 2)
	assert.Equal(t, ToolResultError, results.ToolResults()[1].Status)
}

func TestMessageCloneIsDeep(t *testing.T) {
	original := NewAssistantMessage(
		NewToolUseBlock("toolu_01", "search", map[string]any{"q": "go"}),
	)
	clone := original.Clone()

	clone.Content[0].ToolUse.Input["q"] = "rust"
	assert.Equal(t, "go", original.Content[0].ToolUse.Input["q"])
}

func TestConversationLastByRole(t *testing.T) {
	c := Conversation{
		NewUserTextMessage("one"),
		NewAssistantMessage(NewTextBlock("two")),
		NewUserTextMessage("three"),
	}

	assert.Equal(t, 2, c.LastByRole(RoleUser))
	assert.Equal(t, 1, c.LastByRole(RoleAssistant))
	assert.Equal(t, -1, Conversation{}.LastByRole(RoleUser))

	last := c.Last()
	require.NotNil(t, last)
	assert.Equal(t, "three", last.Text())
}

func TestDumpYAML(t *testing.T) {
	c := Conversation{
		NewUserTextMessage("hi"),
		NewAssistantMessage(NewTextBlock("hello")),
	}

	out, err := DumpYAML(c)
	require.NoError(t, err)
	assert.Contains(t, out, "role: user")
	assert.Contains(t, out, "hello")
}
