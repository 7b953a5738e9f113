package activity_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/mcklmo/worklog/internal/execshell"
)

const (
	gitBranchSubcommandConstant   = "branch"
	gitLogSubcommandConstant      = "log"
	gitRemoteSubcommandConstant   = "remote"
	gitRevParseSubcommandConstant = "rev-parse"
)

var errNoRemoteConfigured = errors.New("no remote configured")

// repositoryScript describes the canned git behavior of one repository path.
type repositoryScript struct {
	branchOutput    string
	branchFailure   error
	logOutputsByRef map[string]string
	logFailure      error
	remoteURL       string
}

// scriptedGitExecutor replays per-repository scripts for branch, log, and
// remote queries. It is safe for concurrent use so aggregator tests can run it
// under real fan-out.
type scriptedGitExecutor struct {
	mutex            sync.Mutex
	scripts          map[string]repositoryScript
	executedCommands []execshell.CommandDetails
}

func newScriptedGitExecutor(scripts map[string]repositoryScript) *scriptedGitExecutor {
	return &scriptedGitExecutor{scripts: scripts}
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	executor.executedCommands = append(executor.executedCommands, details)
	script := executor.scripts[details.WorkingDirectory]
	executor.mutex.Unlock()

	switch details.Arguments[0] {
	case gitBranchSubcommandConstant:
		if script.branchFailure != nil {
			return execshell.ExecutionResult{}, script.branchFailure
		}
		return execshell.ExecutionResult{StandardOutput: script.branchOutput}, nil
	case gitLogSubcommandConstant:
		if script.logFailure != nil {
			return execshell.ExecutionResult{}, script.logFailure
		}
		historyReference := details.Arguments[len(details.Arguments)-1]
		return execshell.ExecutionResult{StandardOutput: script.logOutputsByRef[historyReference]}, nil
	case gitRemoteSubcommandConstant:
		if len(script.remoteURL) == 0 {
			return execshell.ExecutionResult{}, errNoRemoteConfigured
		}
		return execshell.ExecutionResult{StandardOutput: script.remoteURL + "\n"}, nil
	case gitRevParseSubcommandConstant:
		return execshell.ExecutionResult{StandardOutput: "true\n"}, nil
	}

	return execshell.ExecutionResult{}, nil
}

func (executor *scriptedGitExecutor) recordedCommands() []execshell.CommandDetails {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]execshell.CommandDetails{}, executor.executedCommands...)
}

// basenameNameResolver labels repositories by their path's final segment and
// treats every path as a git repository unless scripted otherwise.
type basenameNameResolver struct {
	nonRepositoryPaths map[string]bool
}

func (resolver basenameNameResolver) IsGitRepository(_ context.Context, repositoryPath string) bool {
	return !resolver.nonRepositoryPaths[repositoryPath]
}

func (basenameNameResolver) ResolveRepositoryName(_ context.Context, repositoryPath string) string {
	return filepath.Base(repositoryPath)
}

// memoryFileSystem records writes and serves scripted stat failures.
type memoryFileSystem struct {
	mutex              sync.Mutex
	statFailures       map[string]error
	writtenFiles       map[string][]byte
	createdDirectories []string
}

func newMemoryFileSystem() *memoryFileSystem {
	return &memoryFileSystem{writtenFiles: make(map[string][]byte)}
}

func (fileSystem *memoryFileSystem) Stat(path string) (fs.FileInfo, error) {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	if statFailure, exists := fileSystem.statFailures[path]; exists {
		return nil, statFailure
	}
	return nil, nil
}

func (fileSystem *memoryFileSystem) WriteFile(path string, contents []byte, _ fs.FileMode) error {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	fileSystem.writtenFiles[path] = append([]byte{}, contents...)
	return nil
}

func (fileSystem *memoryFileSystem) MkdirAll(path string, _ fs.FileMode) error {
	fileSystem.mutex.Lock()
	defer fileSystem.mutex.Unlock()
	fileSystem.createdDirectories = append(fileSystem.createdDirectories, path)
	return nil
}
