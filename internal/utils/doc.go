// Package utils provides shared utility functions for kbs.
//
// # Filesystem Utilities
//
//   - ExpandTilde: expands a leading ~ in configured paths
//   - FileExists: existence check that surfaces unexpected errors
//   - CopyFile: used to snapshot a keyfile before rewrapping it
//
// # I/O Utilities
//
//   - ReadStdin: reads all data from standard input
//
// # Terminal Utilities
//
// Password prompts never echo input. PromptPassword reads from stdin when it
// is a terminal and falls back to /dev/tty when stdin carries piped data:
//   - PromptPassword, PromptNewPassword
//   - ReadPassphrase, ReadPassphraseFromTTY
//   - IsTerminal
package utils
