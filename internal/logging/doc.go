// Package logger provides leveled logging for kbs commands and the core
// packages they call.
//
// The logger supports multiple verbosity levels controlled by command-line
// flags. Output is formatted with colored prefixes and always goes to stderr,
// leaving stdout for envelopes and decrypted records.
//
// # Verbosity Levels
//
// Logging behavior is controlled by two flags:
//
//   - --verbose: Shows info and warning messages
//   - --debug: Shows all messages including debug details
//
// Without flags, only critical warnings are shown.
//
// # Log Methods
//
//	Logger.Infof()          // Shown with --verbose or --debug
//	Logger.Debugf()         // Shown only with --debug
//	Logger.Warnf()          // Shown with --verbose or --debug
//	Logger.WarnfAlways()    // Always shown (critical warnings)
//	Logger.Errorf()         // Shown with --debug
//	Logger.ErrorfAndReturn() // Errorf, then returns the error
//
// # Secrets
//
// Never pass passwords, key material, or decrypted records to a Logger.
// secrets.SecretKey formats as [REDACTED] if one slips through.
//
// # Usage
//
// The zero Logger is silent except for critical warnings, so core
// packages accept one by value and tests can leave it unset:
//
//	log := Logger{Verbose: verbose, Debug: debug}
//	log.Debugf("parsing unwrapped key")
package logger
