// Package activity implements the commit-collection engine behind worklog:
// repository discovery fan-out, per-repository branch enumeration and commit
// extraction, author matching, day bucketing, and report rendering.
package activity
