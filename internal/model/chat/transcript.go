package chat

import "strings"

// Transcript renders messages as the plain-text export format: one
// "{sender}: {text}" line per message, newline-joined, no trailing newline.
func Transcript(messages []Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		lines = append(lines, string(msg.Sender)+": "+msg.Text)
	}
	return strings.Join(lines, "\n")
}
