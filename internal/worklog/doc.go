// Package worklog delivers rendered day reports to a Notion-style work log
// database and exposes the record command that drives the delivery flow.
package worklog
