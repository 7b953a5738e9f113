// Package cli assembles the worklog command hierarchy: the report, record,
// and github-events subcommands share configuration loading, structured
// logging, and persistent flag handling through a single Application value.
package cli
