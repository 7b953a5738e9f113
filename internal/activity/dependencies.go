package activity

import (
	"context"
	"io/fs"
	"os"

	"github.com/mcklmo/worklog/internal/execshell"
)

// RepositoryDiscoverer finds git repositories beneath a root directory.
type RepositoryDiscoverer interface {
	DiscoverRepositories(rootPath string, maximumDepth int) ([]string, error)
}

// GitExecutor exposes the subset of shell execution used by the activity engine.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryInspector validates repository paths and derives their display names.
type RepositoryInspector interface {
	IsGitRepository(executionContext context.Context, repositoryPath string) bool
	ResolveRepositoryName(executionContext context.Context, repositoryPath string) string
}

// FileSystem exposes the filesystem operations required by the activity service.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	WriteFile(path string, contents []byte, permissions fs.FileMode) error
	MkdirAll(path string, permissions fs.FileMode) error
}

// OSFileSystem implements FileSystem using operating system facilities.
type OSFileSystem struct{}

// Stat delegates to os.Stat.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// WriteFile delegates to os.WriteFile.
func (OSFileSystem) WriteFile(path string, contents []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, contents, permissions)
}

// MkdirAll delegates to os.MkdirAll.
func (OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}
