package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/mcklmo/worklog/internal/execshell"
)

const (
	originRemoteNameConstant             = "origin"
	gitRemoteSubcommandConstant          = "remote"
	gitRemoteGetURLSubcommandConstant    = "get-url"
	gitRevParseSubcommandConstant        = "rev-parse"
	gitIsInsideWorkTreeFlagConstant      = "--is-inside-work-tree"
	gitTrueOutputConstant                = "true"
	executorNotConfiguredMessageConstant = "git executor not configured"
	emptyRemoteURLMessageConstant        = "remote url is empty"
)

// GitExecutor exposes the subset of shell execution required by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager performs repository-scoped git queries.
type RepositoryManager struct {
	gitExecutor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(gitExecutor GitExecutor) (*RepositoryManager, error) {
	if gitExecutor == nil {
		return nil, errors.New(executorNotConfiguredMessageConstant)
	}
	return &RepositoryManager{gitExecutor: gitExecutor}, nil
}

// IsGitRepository reports whether the provided path sits inside a git work tree.
func (manager *RepositoryManager) IsGitRepository(executionContext context.Context, repositoryPath string) bool {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitIsInsideWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return false
	}
	return strings.TrimSpace(executionResult.StandardOutput) == gitTrueOutputConstant
}

// GetRemoteURL returns the textual URL configured for the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.gitExecutor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return "", executionError
	}

	remoteURL := strings.TrimSpace(executionResult.StandardOutput)
	if len(remoteURL) == 0 {
		return "", errors.New(emptyRemoteURLMessageConstant)
	}
	return remoteURL, nil
}

// ResolveRepositoryName derives a display name from the origin remote URL, falling back to the directory base name.
func (manager *RepositoryManager) ResolveRepositoryName(executionContext context.Context, repositoryPath string) string {
	remoteURL, remoteError := manager.GetRemoteURL(executionContext, repositoryPath, originRemoteNameConstant)
	if remoteError == nil {
		repositoryName := RepositoryNameFromRemoteURL(remoteURL)
		if len(repositoryName) > 0 {
			return repositoryName
		}
	}
	return baseNameOf(repositoryPath)
}
