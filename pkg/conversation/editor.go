package conversation

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/mangiafuoco/pkg/chat"
)

// RepairDanglingToolUses scans assistant messages for tool use blocks whose
// input is empty and for which no matching tool result exists anywhere later
// in the history. Such orphans are left behind when a turn is interrupted
// while the tool input was still streaming. Messages are processed in
// reverse index order so edits do not shift earlier indices. If the orphan
// is the sole content block of its message, the message content is replaced
// with an explanatory text block; otherwise just that block is removed.
// Returns whether any repair occurred.
func RepairDanglingToolUses(c *chat.Conversation) bool {
	if c == nil {
		return false
	}
	repaired := false
	for i := len(*c) - 1; i >= 0; i-- {
		msg := &(*c)[i]
		if msg.Role != chat.RoleAssistant {
			continue
		}
		for j := len(msg.Content) - 1; j >= 0; j-- {
			use := msg.Content[j].ToolUse
			if use == nil || len(use.Input) != 0 {
				continue
			}
			if hasResultAfter(*c, i, use.ID) {
				continue
			}
			log.Debug().
				Str("tool_use_id", use.ID).
				Str("tool_name", use.Name).
				Int("message_index", i).
				Msg("repairing dangling tool use")
			if len(msg.Content) == 1 {
				msg.Content = []chat.ContentBlock{
					chat.NewTextBlock(fmt.Sprintf("attempted to use %s, but the request was canceled", use.Name)),
				}
			} else {
				msg.Content = append(msg.Content[:j], msg.Content[j+1:]...)
			}
			repaired = true
		}
	}
	return repaired
}

// TrimDangling removes the messages a failed turn can leave at the end of
// the history: first a trailing user message that should carry tool results
// for the preceding assistant tool use but lacks them (the loop failed
// mid-turn), then a trailing assistant message containing a tool use whose
// result never arrived. User first, since removing the assistant message can
// expose a now-dangling user message beneath it. Applying TrimDangling twice
// is a no-op.
func TrimDangling(c *chat.Conversation) {
	if c == nil || len(*c) == 0 {
		return
	}

	last := len(*c) - 1
	if (*c)[last].Role == chat.RoleUser && last > 0 {
		prev := (*c)[last-1]
		if prev.Role == chat.RoleAssistant && prev.HasToolUse() && !(*c)[last].HasToolResult() {
			log.Debug().Int("message_index", last).Msg("trimming dangling user message")
			*c = (*c)[:last]
		}
	}

	if len(*c) == 0 {
		return
	}
	last = len(*c) - 1
	if (*c)[last].Role == chat.RoleAssistant && hasUnmatchedToolUse(*c, last) {
		log.Debug().Int("message_index", last).Msg("trimming dangling assistant message")
		*c = (*c)[:last]
	}
}

// hasResultAfter reports whether any message after index carries a tool
// result matching the given tool use id.
func hasResultAfter(c chat.Conversation, index int, toolUseID string) bool {
	for i := index + 1; i < len(c); i++ {
		if c[i].HasToolResultFor(toolUseID) {
			return true
		}
	}
	return false
}

// hasUnmatchedToolUse reports whether the message at index contains a tool
// use with no matching tool result anywhere later in the history.
func hasUnmatchedToolUse(c chat.Conversation, index int) bool {
	for _, use := range c[index].ToolUses() {
		if !hasResultAfter(c, index, use.ID) {
			return true
		}
	}
	return false
}
