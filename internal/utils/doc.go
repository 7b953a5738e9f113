// Package utils hosts shared configuration and logging helpers used by the
// worklog command-line application.
package utils
