package conversation

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
)

// ErrCannotTrim is returned when the history cannot be shortened without
// breaking the tool use / tool result pairing invariant.
var ErrCannotTrim = errors.New("conversation cannot be trimmed further")

// oversizedToolResultText replaces tool result content when the history
// overflows the model's context window.
const oversizedToolResultText = "The tool result was too large!"

// Manager keeps the conversation history bounded. It runs once after every
// completed external invocation of the turn loop.
type Manager interface {
	ApplyWindow(c *chat.Conversation) error
}

// SlidingWindowManager trims the oldest messages once the history exceeds
// WindowSize, taking care never to cut through a tool use / tool result
// pair.
type SlidingWindowManager struct {
	WindowSize int
}

// DefaultWindowSize bounds histories to a generous number of messages.
const DefaultWindowSize = 40

func NewSlidingWindowManager(windowSize int) *SlidingWindowManager {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &SlidingWindowManager{WindowSize: windowSize}
}

// ApplyWindow trims the history in place so it holds at most WindowSize
// messages. The trim index starts at 2 messages from the front (or len -
// WindowSize if that is larger) and advances past any message that would
// break the pairing invariant as the new start: a message carrying a tool
// result may not start the history (its tool use would be gone), and a tool
// use message is only a valid start if the immediately following message
// supplies its results. Returns ErrCannotTrim when no valid index exists.
func (m *SlidingWindowManager) ApplyWindow(c *chat.Conversation) error {
	if c == nil || len(*c) <= m.WindowSize {
		return nil
	}

	trimIdx := 2
	if overflow := len(*c) - m.WindowSize; overflow > trimIdx {
		trimIdx = overflow
	}

	for trimIdx < len(*c) {
		if validWindowStart(*c, trimIdx) {
			break
		}
		trimIdx++
	}
	if trimIdx >= len(*c) {
		return errors.Wrapf(ErrCannotTrim, "window size %d, history length %d", m.WindowSize, len(*c))
	}

	log.Debug().
		Int("trim_index", trimIdx).
		Int("history_length", len(*c)).
		Int("window_size", m.WindowSize).
		Msg("applying sliding window")
	*c = (*c)[trimIdx:]
	return nil
}

// validWindowStart reports whether the message at index may become the first
// message of the trimmed history.
func validWindowStart(c chat.Conversation, index int) bool {
	msg := c[index]
	if msg.HasToolResult() {
		return false
	}
	if msg.HasToolUse() {
		if index+1 >= len(c) {
			return false
		}
		next := c[index+1]
		for _, use := range msg.ToolUses() {
			if !next.HasToolResultFor(use.ID) {
				return false
			}
		}
	}
	return true
}

// MarkOversizedToolResults locates the most recent message carrying tool
// results and replaces every result in it with a fixed error marker, freeing
// context window space so the turn can be retried with a smaller history.
// Returns false when no message carries a tool result, in which case the
// overflow is unrecoverable.
func MarkOversizedToolResults(c *chat.Conversation) bool {
	if c == nil {
		return false
	}
	for i := len(*c) - 1; i >= 0; i-- {
		msg := &(*c)[i]
		if !msg.HasToolResult() {
			continue
		}
		for j := range msg.Content {
			if result := msg.Content[j].ToolResult; result != nil {
				result.Status = chat.ToolResultError
				result.Content = []chat.ToolResultPart{{Text: oversizedToolResultText}}
			}
		}
		log.Debug().Int("message_index", i).Msg("marked oversized tool results")
		return true
	}
	return false
}
