// Package logging provides a simple leveled logging interface for the
// video grid server and its command line tools.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable (or
// DEBUG=true). Output is written through zerolog; Setup can add a rotated
// log file.
package logging
