package activity

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

const (
	dayKeyLayoutConstant             = "2006-01-02"
	commitTimestampLayoutConstant    = "2006-01-02 15:04:05 -0700"
	abbreviatedHashLengthConstant    = 7
	invalidDateWindowMessageConstant = "date window start must not be after its end"
)

// ErrInvalidDateWindow indicates a window whose start lies after its end.
var ErrInvalidDateWindow = errors.New(invalidDateWindowMessageConstant)

// Commit is an immutable record of one commit matched for the target author.
//
// Identity is the full hash; the timestamp preserves the UTC offset recorded
// by the committing machine so day bucketing follows the author's local day.
type Commit struct {
	Hash        string
	AuthorName  string
	AuthorEmail string
	Timestamp   time.Time
	Subject     string
}

// AbbreviatedHash returns the shortened commit identifier used in rendered reports.
func (commit Commit) AbbreviatedHash() string {
	if len(commit.Hash) <= abbreviatedHashLengthConstant {
		return commit.Hash
	}
	return commit.Hash[:abbreviatedHashLengthConstant]
}

// DayKey returns the commit's calendar day in the recorded offset.
func (commit Commit) DayKey() string {
	return commit.Timestamp.Format(dayKeyLayoutConstant)
}

// Repository identifies one discovered git repository.
type Repository struct {
	Path string
	Name string
}

// DateWindow bounds a commit history query at day granularity.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// NewDateWindow validates the ordering of the provided boundaries.
func NewDateWindow(start time.Time, end time.Time) (DateWindow, error) {
	if start.After(end) {
		return DateWindow{}, ErrInvalidDateWindow
	}
	return DateWindow{Start: start, End: end}, nil
}

// SinceText renders the window start as the textual since boundary passed to git.
func (window DateWindow) SinceText() string {
	return window.Start.Format(dayKeyLayoutConstant)
}

// UntilText renders the window end as the textual until boundary passed to git.
func (window DateWindow) UntilText() string {
	return window.End.Format(dayKeyLayoutConstant)
}

// RepositoryResult captures the outcome of processing one repository.
//
// A failed repository carries zero commits and a non-nil ProcessingError; it is
// reported in summaries rather than silently dropped.
type RepositoryResult struct {
	Repository      Repository
	Commits         []Commit
	ProcessingError error
}

// DayBucketEntry pairs a commit with the repository it originated from.
type DayBucketEntry struct {
	RepositoryName string
	Commit         Commit
}

// baseNameOfPath returns the final path segment used to label repositories
// whose name could not be resolved through git.
func baseNameOfPath(repositoryPath string) string {
	return filepath.Base(strings.TrimRight(repositoryPath, "/"))
}

// ReportDocuments is the terminal output of a report run: the combined summary
// plus one rendered document per day that saw at least one matching commit,
// keyed by YYYY-MM-DD day string.
type ReportDocuments struct {
	CombinedReport string
	DayReports     map[string]string
}
