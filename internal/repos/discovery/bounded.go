package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	gitMetadataDirectoryNameConstant      = ".git"
	hiddenDirectoryPrefixConstant         = "."
	directoryListFailureMessageConstant   = "unable to list directory"
	rootPathResolveFailureMessageConstant = "unable to resolve root path"
	logFieldDirectoryPathConstant         = "directory_path"
)

// DepthBoundedRepositoryDiscoverer locates git repositories up to a fixed traversal depth.
//
// A directory counts as a repository when it directly contains a .git entry.
// Hidden directories are skipped and discovered repositories are not descended
// into. Listing failures degrade that subtree to an empty result.
type DepthBoundedRepositoryDiscoverer struct {
	logger *zap.Logger
}

// NewDepthBoundedRepositoryDiscoverer constructs a discoverer reporting traversal issues to the provided logger.
func NewDepthBoundedRepositoryDiscoverer(logger *zap.Logger) *DepthBoundedRepositoryDiscoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepthBoundedRepositoryDiscoverer{logger: logger}
}

// DiscoverRepositories returns absolute repository paths found under rootPath within maximumDepth levels.
func (discoverer *DepthBoundedRepositoryDiscoverer) DiscoverRepositories(rootPath string, maximumDepth int) ([]string, error) {
	absoluteRootPath, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		discoverer.logger.Warn(rootPathResolveFailureMessageConstant, zap.String(logFieldDirectoryPathConstant, rootPath), zap.Error(absoluteError))
		return nil, absoluteError
	}

	seenRepositories := make(map[string]struct{})
	var repositories []string
	discoverer.collectRepositories(absoluteRootPath, maximumDepth, seenRepositories, &repositories)

	sort.Strings(repositories)
	return repositories, nil
}

func (discoverer *DepthBoundedRepositoryDiscoverer) collectRepositories(directoryPath string, remainingDepth int, seenRepositories map[string]struct{}, repositories *[]string) {
	if discoverer.isRepositoryRoot(directoryPath) {
		if _, alreadySeen := seenRepositories[directoryPath]; !alreadySeen {
			seenRepositories[directoryPath] = struct{}{}
			*repositories = append(*repositories, directoryPath)
		}
	}

	if remainingDepth <= 0 {
		return
	}

	directoryEntries, listError := os.ReadDir(directoryPath)
	if listError != nil {
		discoverer.logger.Warn(directoryListFailureMessageConstant, zap.String(logFieldDirectoryPathConstant, directoryPath), zap.Error(listError))
		return
	}

	for _, directoryEntry := range directoryEntries {
		if !directoryEntry.IsDir() {
			continue
		}

		entryName := directoryEntry.Name()
		if strings.HasPrefix(entryName, hiddenDirectoryPrefixConstant) {
			continue
		}

		childDirectoryPath := filepath.Join(directoryPath, entryName)
		if discoverer.isRepositoryRoot(childDirectoryPath) {
			if _, alreadySeen := seenRepositories[childDirectoryPath]; !alreadySeen {
				seenRepositories[childDirectoryPath] = struct{}{}
				*repositories = append(*repositories, childDirectoryPath)
			}
			continue
		}

		if remainingDepth > 1 {
			discoverer.collectRepositories(childDirectoryPath, remainingDepth-1, seenRepositories, repositories)
		}
	}
}

func (discoverer *DepthBoundedRepositoryDiscoverer) isRepositoryRoot(directoryPath string) bool {
	metadataInformation, statError := os.Stat(filepath.Join(directoryPath, gitMetadataDirectoryNameConstant))
	if statError != nil {
		return false
	}
	return metadataInformation.IsDir()
}
