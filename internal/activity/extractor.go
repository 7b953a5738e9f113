package activity

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mcklmo/worklog/internal/execshell"
)

const (
	gitLogSubcommandConstant            = "log"
	gitLogPrettyFormatConstant          = "--pretty=format:%H|%an|%ae|%ai|%s"
	gitLogSinceFlagTemplateConstant     = "--since="
	gitLogUntilFlagTemplateConstant     = "--until="
	gitLogAllRefsFlagConstant           = "--all"
	commitFieldSeparatorConstant        = "|"
	commitFieldCountConstant            = 5
	branchQueryFailureMessageConstant   = "branch history query failed"
	malformedCommitLineMessageConstant  = "skipping malformed commit line"
	malformedTimestampMessageConstant   = "skipping commit with unparseable timestamp"
	logFieldBranchNameConstant          = "branch_name"
	logFieldCommitHashConstant          = "commit_hash"
	logFieldLineFieldCountConstant      = "field_count"
	commitHashFieldIndexConstant        = 0
	commitAuthorNameFieldIndexConstant  = 1
	commitAuthorEmailFieldIndexConstant = 2
	commitTimestampFieldIndexConstant   = 3
	commitSubjectFieldIndexConstant     = 4
)

// CommitExtractor gathers commits from one repository across its branches.
type CommitExtractor struct {
	gitExecutor GitExecutor
	logger      *zap.Logger
}

// NewCommitExtractor constructs a CommitExtractor around the provided executor.
func NewCommitExtractor(gitExecutor GitExecutor, logger *zap.Logger) *CommitExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommitExtractor{gitExecutor: gitExecutor, logger: logger}
}

// ExtractCommits runs one bounded history query per branch and merges the
// results into a unique-by-hash commit list in first-seen order.
//
// Individual branch query failures are logged and skipped; a repository whose
// every branch fails yields an empty list, not an error. Malformed output
// lines are dropped one at a time. The AllHistorySentinel branch widens the
// query to every ref.
func (extractor *CommitExtractor) ExtractCommits(executionContext context.Context, repositoryPath string, window DateWindow, branchNames []string) []Commit {
	seenCommitHashes := make(map[string]struct{})
	var extractedCommits []Commit

	for _, branchName := range branchNames {
		commandDetails := execshell.CommandDetails{
			Arguments:        buildLogArguments(window, branchName),
			WorkingDirectory: repositoryPath,
		}

		executionResult, executionError := extractor.gitExecutor.ExecuteGit(executionContext, commandDetails)
		if executionError != nil {
			extractor.logger.Debug(
				branchQueryFailureMessageConstant,
				zap.String(logFieldRepositoryPathConstant, repositoryPath),
				zap.String(logFieldBranchNameConstant, branchName),
				zap.Error(executionError),
			)
			continue
		}

		for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
			parsedCommit, parsed := extractor.parseCommitLine(outputLine)
			if !parsed {
				continue
			}
			if _, alreadySeen := seenCommitHashes[parsedCommit.Hash]; alreadySeen {
				continue
			}
			seenCommitHashes[parsedCommit.Hash] = struct{}{}
			extractedCommits = append(extractedCommits, parsedCommit)
		}
	}

	return extractedCommits
}

func buildLogArguments(window DateWindow, branchName string) []string {
	logArguments := []string{
		gitLogSubcommandConstant,
		gitLogPrettyFormatConstant,
		gitLogSinceFlagTemplateConstant + window.SinceText(),
		gitLogUntilFlagTemplateConstant + window.UntilText(),
	}
	if branchName == AllHistorySentinel {
		return append(logArguments, gitLogAllRefsFlagConstant)
	}
	return append(logArguments, branchName)
}

func (extractor *CommitExtractor) parseCommitLine(outputLine string) (Commit, bool) {
	trimmedLine := strings.TrimSpace(outputLine)
	if len(trimmedLine) == 0 {
		return Commit{}, false
	}

	lineFields := strings.SplitN(trimmedLine, commitFieldSeparatorConstant, commitFieldCountConstant)
	if len(lineFields) != commitFieldCountConstant {
		extractor.logger.Debug(malformedCommitLineMessageConstant, zap.Int(logFieldLineFieldCountConstant, len(lineFields)))
		return Commit{}, false
	}

	commitTimestamp, timestampError := time.Parse(commitTimestampLayoutConstant, lineFields[commitTimestampFieldIndexConstant])
	if timestampError != nil {
		extractor.logger.Debug(
			malformedTimestampMessageConstant,
			zap.String(logFieldCommitHashConstant, lineFields[commitHashFieldIndexConstant]),
			zap.Error(timestampError),
		)
		return Commit{}, false
	}

	return Commit{
		Hash:        lineFields[commitHashFieldIndexConstant],
		AuthorName:  lineFields[commitAuthorNameFieldIndexConstant],
		AuthorEmail: lineFields[commitAuthorEmailFieldIndexConstant],
		Timestamp:   commitTimestamp,
		Subject:     firstSubjectLine(lineFields[commitSubjectFieldIndexConstant]),
	}, true
}

// firstSubjectLine keeps only the first line of a possibly multi-line subject.
func firstSubjectLine(subject string) string {
	if newlineIndex := strings.IndexByte(subject, '\n'); newlineIndex >= 0 {
		subject = subject[:newlineIndex]
	}
	return strings.TrimSpace(subject)
}

// SortCommitsDeterministically orders commits by timestamp descending with an
// ascending hash tie-break so equal-timestamp output is reproducible.
func SortCommitsDeterministically(commits []Commit) {
	sort.Slice(commits, func(firstIndex int, secondIndex int) bool {
		firstCommit := commits[firstIndex]
		secondCommit := commits[secondIndex]
		if !firstCommit.Timestamp.Equal(secondCommit.Timestamp) {
			return firstCommit.Timestamp.After(secondCommit.Timestamp)
		}
		return firstCommit.Hash < secondCommit.Hash
	})
}
