package chat

// Role identifies the author of a message. The engine only ever produces
// user and assistant messages; system prompts travel outside the history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason is the canonical reason a model response ended.
type StopReason string

const (
	StopReasonEndTurn             StopReason = "end_turn"
	StopReasonToolUse             StopReason = "tool_use"
	StopReasonMaxTokens           StopReason = "max_tokens"
	StopReasonStopSequence        StopReason = "stop_sequence"
	StopReasonContentFiltered     StopReason = "content_filtered"
	StopReasonGuardrailIntervened StopReason = "guardrail_intervened"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role    Role           `json:"role" yaml:"role"`
	Content []ContentBlock `json:"content" yaml:"content"`
}

// Conversation is the ordered message history owned by the caller. The
// turn loop appends to it and the conversation editor trims and repairs it
// in place; no other component retains a reference.
type Conversation []Message

// NewUserMessage builds a user message from the given content blocks.
func NewUserMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleUser, Content: blocks}
}

// NewAssistantMessage builds an assistant message from the given content blocks.
func NewAssistantMessage(blocks ...ContentBlock) Message {
	return Message{Role: RoleAssistant, Content: blocks}
}

// NewUserTextMessage builds a user message holding a single text block.
func NewUserTextMessage(text string) Message {
	return NewUserMessage(NewTextBlock(text))
}

// NewToolResultMessage builds the user message that carries tool results
// back to the model after local execution.
func NewToolResultMessage(results ...ToolResultBlock) Message {
	blocks := make([]ContentBlock, 0, len(results))
	for i := range results {
		r := results[i]
		blocks = append(blocks, ContentBlock{ToolResult: &r})
	}
	return Message{Role: RoleUser, Content: blocks}
}

// Text returns the concatenation of all text blocks in the message.
func (m Message) Text() string {
	out := ""
	for _, b := range m.Content {
		if b.Text != nil {
			out += b.Text.Text
		}
	}
	return out
}

// ToolUses returns the tool use blocks of the message in content order.
func (m Message) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, b := range m.Content {
		if b.ToolUse != nil {
			uses = append(uses, *b.ToolUse)
		}
	}
	return uses
}

// ToolResults returns the tool result blocks of the message in content order.
func (m Message) ToolResults() []ToolResultBlock {
	var results []ToolResultBlock
	for _, b := range m.Content {
		if b.ToolResult != nil {
			results = append(results, *b.ToolResult)
		}
	}
	return results
}

// HasToolUse reports whether the message contains at least one tool use block.
func (m Message) HasToolUse() bool {
	for _, b := range m.Content {
		if b.ToolUse != nil {
			return true
		}
	}
	return false
}

// HasToolResult reports whether the message contains at least one tool result block.
func (m Message) HasToolResult() bool {
	for _, b := range m.Content {
		if b.ToolResult != nil {
			return true
		}
	}
	return false
}

// HasToolResultFor reports whether the message carries a tool result
// matching the given tool use id.
func (m Message) HasToolResultFor(toolUseID string) bool {
	for _, b := range m.Content {
		if b.ToolResult != nil && b.ToolResult.ToolUseID == toolUseID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the message suitable for mutation without
// affecting the original.
func (m Message) Clone() Message {
	out := Message{Role: m.Role}
	if len(m.Content) == 0 {
		return out
	}
	out.Content = make([]ContentBlock, len(m.Content))
	for i := range m.Content {
		out.Content[i] = m.Content[i].Clone()
	}
	return out
}

// Last returns a pointer to the last message of the conversation, or nil.
func (c Conversation) Last() *Message {
	if len(c) == 0 {
		return nil
	}
	return &c[len(c)-1]
}

// LastByRole returns the index of the last message with the given role, or -1.
func (c Conversation) LastByRole(role Role) int {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == role {
			return i
		}
	}
	return -1
}
