// Package collab provides concrete implementations for the session
// controller's external collaborators.
package collab

import "github.com/atotto/clipboard"

// SystemClipboard copies text to the host system clipboard.
type SystemClipboard struct{}

// WriteText places text on the clipboard.
func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}
