// Package ui provides semantic text formatting for kbs command output.
//
// Formatters colorize content by role when the terminal supports it. When
// NO_COLOR is set or colors are unavailable, some formatters fall back to text
// decorations instead:
//
//	ui.Code.Sprint("kbs key unwrap")        // `kbs key unwrap`
//	ui.Path.Sprint("~/.config/kbs/key")     // no decoration
//	ui.Highlight.Sprint("age1...")          // 'age1...'
//	ui.Muted.Sprint("32 bytes")             // (32 bytes)
//
// Success, Error, Warning, and Info are used for the ✓, ✗, ⚠, and → markers
// and are never decorated.
package ui
