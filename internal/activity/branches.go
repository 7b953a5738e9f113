package activity

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mcklmo/worklog/internal/execshell"
)

const (
	// AllHistorySentinel marks the pseudo-branch meaning "query every ref".
	//
	// The commit extractor translates it into an --all history query; the
	// enumerator falls back to it whenever branch listing fails.
	AllHistorySentinel = "HEAD"

	gitBranchSubcommandConstant          = "branch"
	gitBranchAllFlagConstant             = "-a"
	currentBranchMarkerPrefixConstant    = "* "
	remoteTrackingPrefixConstant         = "remotes/"
	symbolicReferenceSeparatorConstant   = "->"
	branchListFallbackMessageConstant    = "branch listing failed, falling back to full history"
	logFieldRepositoryPathConstant       = "repository_path"
	remoteTrackingSegmentCountWithRemote = 2
)

// BranchEnumerator lists the logical branch names of one repository.
type BranchEnumerator struct {
	gitExecutor GitExecutor
	logger      *zap.Logger
}

// NewBranchEnumerator constructs a BranchEnumerator around the provided executor.
func NewBranchEnumerator(gitExecutor GitExecutor, logger *zap.Logger) *BranchEnumerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BranchEnumerator{gitExecutor: gitExecutor, logger: logger}
}

// ListBranches returns deduplicated local and remote-tracking branch names.
//
// Remote-tracking names lose their remote prefix so the same branch tracked
// under several remotes collapses to one logical name. The symbolic HEAD
// pointer is excluded. Any listing failure degrades to the AllHistorySentinel.
func (enumerator *BranchEnumerator) ListBranches(executionContext context.Context, repositoryPath string) []string {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitBranchSubcommandConstant, gitBranchAllFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := enumerator.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		enumerator.logger.Debug(branchListFallbackMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.Error(executionError))
		return []string{AllHistorySentinel}
	}

	seenBranchNames := make(map[string]struct{})
	var branchNames []string

	for _, outputLine := range strings.Split(executionResult.StandardOutput, "\n") {
		branchName := normalizeBranchLine(outputLine)
		if len(branchName) == 0 {
			continue
		}
		if _, alreadySeen := seenBranchNames[branchName]; alreadySeen {
			continue
		}
		seenBranchNames[branchName] = struct{}{}
		branchNames = append(branchNames, branchName)
	}

	if len(branchNames) == 0 {
		return []string{AllHistorySentinel}
	}
	return branchNames
}

// normalizeBranchLine reduces one `git branch -a` output line to a logical
// branch name, returning the empty string for lines that carry none.
func normalizeBranchLine(outputLine string) string {
	trimmedLine := strings.TrimSpace(outputLine)
	if len(trimmedLine) == 0 {
		return ""
	}

	trimmedLine = strings.TrimPrefix(trimmedLine, currentBranchMarkerPrefixConstant)
	trimmedLine = strings.TrimSpace(trimmedLine)

	if strings.Contains(trimmedLine, symbolicReferenceSeparatorConstant) {
		return ""
	}

	if strings.HasPrefix(trimmedLine, remoteTrackingPrefixConstant) {
		withoutTrackingPrefix := strings.TrimPrefix(trimmedLine, remoteTrackingPrefixConstant)
		remoteSegments := strings.SplitN(withoutTrackingPrefix, "/", remoteTrackingSegmentCountWithRemote)
		if len(remoteSegments) == remoteTrackingSegmentCountWithRemote {
			trimmedLine = remoteSegments[1]
		} else {
			trimmedLine = withoutTrackingPrefix
		}
	}

	if trimmedLine == AllHistorySentinel {
		return ""
	}
	return trimmedLine
}
