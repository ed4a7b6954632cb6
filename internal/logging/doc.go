// Package logging provides structured logging for the tapauth binaries.
//
// This package wraps a zap logger with convenience functions for the log
// lines the greeter and the bridge emit. Logging is silent unless a level is
// configured, either explicitly or through TAPAUTH_LOG_LEVEL.
//
// # Log Levels
//
//   - Debug: Flow steps that do not change mode, raw bridge traffic
//   - Info: Directory requests and responses, mode transitions, hand-offs
//   - Warn: Non-fatal issues (upstream failures, provisioning errors)
//   - Error: Startup failures, hand-off failures
//
// # Secrets
//
// Passwords and PINs are never passed to the logger. Card UIDs are logged
// through Fingerprint only:
//
//	logging.LogRequest("check", uid)
//	// INFO  Directory request  {"action": "check", "uid": "9f86d081"}
//
// # Configuration
//
//	if err := logging.InitializeWithOutput("debug", "/var/log/tapauth-greeter.log"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has
// returned.
package logging
