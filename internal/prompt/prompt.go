package prompt

import (
	"strings"

	v1 "chatrelay/internal/api/relay/v1"
)

// Build renders a conversation into a single prompt string, one line per
// message in input order:
//
//	User: <content>
//	Assistant: <content>
//
// Messages with a role other than user/assistant are skipped rather than
// rejected, matching the behavior callers already depend on.
func Build(messages []v1.Message) string {
	var sb strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case v1.RoleUser:
			sb.WriteString("User: ")
		case v1.RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			continue
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
