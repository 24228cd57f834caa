package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter renders text for one role in command output: colored when the
// terminal allows it, wrapped in a plain-text decoration otherwise.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

func newFormatter(attr color.Attribute, decoration ...string) Formatter {
	f := Formatter{color: color.New(attr)}
	if len(decoration) == 2 {
		f.prefix, f.suffix = decoration[0], decoration[1]
	}
	return f
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprint formats its operands like fmt.Sprint.
func (f Formatter) Sprint(a ...interface{}) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats like fmt.Sprintf.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.render(fmt.Sprintf(format, a...))
}

// EnsureNewline appends a newline to s unless it already ends with one.
func EnsureNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}

// noColor honours NO_COLOR (https://no-color.org/) as well as fatih/color's
// own terminal detection.
func noColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return true
	}
	return color.NoColor
}

var (
	// Code is for commands the user can run: yellow, or `backticks`.
	Code = newFormatter(color.FgYellow, "`", "`")

	// Path is for files and directories, including shared memory names.
	Path = newFormatter(color.FgYellow)

	Success = newFormatter(color.FgGreen)
	Error   = newFormatter(color.FgRed)
	Warning = newFormatter(color.FgYellow)

	// Info is for hints and the → marker.
	Info = newFormatter(color.FgCyan)

	// Highlight is for user values such as public keys and record labels: cyan, or 'quotes'.
	Highlight = newFormatter(color.FgCyan, "'", "'")

	// Muted is for secondary detail: gray, or (parentheses).
	Muted = newFormatter(color.FgHiBlack, "(", ")")
)
