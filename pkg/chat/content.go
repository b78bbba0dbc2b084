package chat

import "fmt"

// ContentBlock is the tagged union of everything that can appear inside a
// message. Exactly one member is non-nil.
type ContentBlock struct {
	Text       *TextBlock       `json:"text,omitempty" yaml:"text,omitempty"`
	ToolUse    *ToolUseBlock    `json:"tool_use,omitempty" yaml:"tool_use,omitempty"`
	ToolResult *ToolResultBlock `json:"tool_result,omitempty" yaml:"tool_result,omitempty"`
	Reasoning  *ReasoningBlock  `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	CachePoint *CachePointBlock `json:"cache_point,omitempty" yaml:"cache_point,omitempty"`
	Media      *MediaBlock      `json:"media,omitempty" yaml:"media,omitempty"`
}

type TextBlock struct {
	Text string `json:"text" yaml:"text"`
}

// ToolUseBlock is a model-emitted request to invoke a tool. Input is the
// already-decoded JSON argument object.
type ToolUseBlock struct {
	ID    string         `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Input map[string]any `json:"input" yaml:"input"`
}

// ToolResultStatus marks a tool result as a success or a failure.
type ToolResultStatus string

const (
	ToolResultSuccess ToolResultStatus = "success"
	ToolResultError   ToolResultStatus = "error"
)

// ToolResultBlock carries the outcome of one tool invocation back to the
// model. ToolUseID must match the id of the originating tool use block.
type ToolResultBlock struct {
	ToolUseID string           `json:"tool_use_id" yaml:"tool_use_id"`
	Status    ToolResultStatus `json:"status" yaml:"status"`
	Content   []ToolResultPart `json:"content" yaml:"content"`
}

// ToolResultPart is one piece of a tool result: either plain text or an
// arbitrary JSON document.
type ToolResultPart struct {
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	JSON any    `json:"json,omitempty" yaml:"json,omitempty"`
}

// ReasoningBlock holds extended-thinking output together with the provider
// signature needed to echo it back verbatim.
type ReasoningBlock struct {
	Text      string `json:"text" yaml:"text"`
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty"`
}

// CachePointBlock marks a prompt-cache boundary. It carries no payload.
type CachePointBlock struct{}

// MediaBlock holds binary content such as images or documents.
type MediaBlock struct {
	Format string `json:"format" yaml:"format"`
	Data   []byte `json:"data,omitempty" yaml:"data,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

// NewTextBlock wraps a string in a text content block.
func NewTextBlock(text string) ContentBlock {
	return ContentBlock{Text: &TextBlock{Text: text}}
}

// NewToolUseBlock builds a tool use content block.
func NewToolUseBlock(id, name string, input map[string]any) ContentBlock {
	return ContentBlock{ToolUse: &ToolUseBlock{ID: id, Name: name, Input: input}}
}

// NewToolResultBlock builds a tool result content block.
func NewToolResultBlock(toolUseID string, status ToolResultStatus, parts ...ToolResultPart) ContentBlock {
	return ContentBlock{ToolResult: &ToolResultBlock{ToolUseID: toolUseID, Status: status, Content: parts}}
}

// NewReasoningBlock builds a reasoning content block.
func NewReasoningBlock(text, signature string) ContentBlock {
	return ContentBlock{Reasoning: &ReasoningBlock{Text: text, Signature: signature}}
}

// TextResult returns a successful single-text tool result block.
func TextResult(toolUseID, text string) ToolResultBlock {
	return ToolResultBlock{
		ToolUseID: toolUseID,
		Status:    ToolResultSuccess,
		Content:   []ToolResultPart{{Text: text}},
	}
}

// JSONResult returns a successful single-document tool result block.
func JSONResult(toolUseID string, doc any) ToolResultBlock {
	return ToolResultBlock{
		ToolUseID: toolUseID,
		Status:    ToolResultSuccess,
		Content:   []ToolResultPart{{JSON: doc}},
	}
}

// ErrorResult returns an error-status tool result block with a single text part.
func ErrorResult(toolUseID, text string) ToolResultBlock {
	return ToolResultBlock{
		ToolUseID: toolUseID,
		Status:    ToolResultError,
		Content:   []ToolResultPart{{Text: text}},
	}
}

// Clone returns a deep copy of the content block.
func (b ContentBlock) Clone() ContentBlock {
	out := ContentBlock{}
	if b.Text != nil {
		t := *b.Text
		out.Text = &t
	}
	if b.ToolUse != nil {
		u := *b.ToolUse
		if u.Input != nil {
			input := make(map[string]any, len(u.Input))
			for k, v := range u.Input {
				input[k] = v
			}
			u.Input = input
		}
		out.ToolUse = &u
	}
	if b.ToolResult != nil {
		r := *b.ToolResult
		if r.Content != nil {
			r.Content = append([]ToolResultPart(nil), r.Content...)
		}
		out.ToolResult = &r
	}
	if b.Reasoning != nil {
		rb := *b.Reasoning
		out.Reasoning = &rb
	}
	if b.CachePoint != nil {
		cp := *b.CachePoint
		out.CachePoint = &cp
	}
	if b.Media != nil {
		m := *b.Media
		if m.Data != nil {
			m.Data = append([]byte(nil), m.Data...)
		}
		out.Media = &m
	}
	return out
}

// String renders a short human-readable description of the block, used in
// logs and pretty printing.
func (b ContentBlock) String() string {
	switch {
	case b.Text != nil:
		return fmt.Sprintf("text(%q)", b.Text.Text)
	case b.ToolUse != nil:
		return fmt.Sprintf("tool_use(id=%s name=%s)", b.ToolUse.ID, b.ToolUse.Name)
	case b.ToolResult != nil:
		return fmt.Sprintf("tool_result(id=%s status=%s)", b.ToolResult.ToolUseID, b.ToolResult.Status)
	case b.Reasoning != nil:
		return fmt.Sprintf("reasoning(%d chars)", len(b.Reasoning.Text))
	case b.CachePoint != nil:
		return "cache_point"
	case b.Media != nil:
		return fmt.Sprintf("media(format=%s)", b.Media.Format)
	default:
		return "empty"
	}
}
