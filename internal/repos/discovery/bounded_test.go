package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mcklmo/worklog/internal/repos/discovery"
)

const (
	gitMetadataDirectoryName       = ".git"
	hiddenDirectoryName            = ".cache"
	repositoryDirectoryPermissions = 0o755
)

func createRepository(testInstance *testing.T, rootDirectory string, segments ...string) string {
	testInstance.Helper()
	repositoryPath := filepath.Join(append([]string{rootDirectory}, segments...)...)
	creationError := os.MkdirAll(filepath.Join(repositoryPath, gitMetadataDirectoryName), repositoryDirectoryPermissions)
	require.NoError(testInstance, creationError)
	return repositoryPath
}

func TestDepthBoundedRepositoryDiscovererHonorsDepthLimits(testInstance *testing.T) {
	testCases := []struct {
		name                 string
		maximumDepth         int
		expectedRepositories func(rootDirectory string, firstLevel string, secondLevel string, nested string) []string
	}{
		{
			name:         "depth_zero_only_considers_root",
			maximumDepth: 0,
			expectedRepositories: func(rootDirectory string, firstLevel string, secondLevel string, nested string) []string {
				return nil
			},
		},
		{
			name:         "depth_one_finds_immediate_children",
			maximumDepth: 1,
			expectedRepositories: func(rootDirectory string, firstLevel string, secondLevel string, nested string) []string {
				return []string{firstLevel}
			},
		},
		{
			name:         "depth_two_descends_into_plain_directories",
			maximumDepth: 2,
			expectedRepositories: func(rootDirectory string, firstLevel string, secondLevel string, nested string) []string {
				return []string{secondLevel, firstLevel}
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rootDirectory := testInstance.TempDir()
			firstLevelRepository := createRepository(testInstance, rootDirectory, "repo1")
			secondLevelRepository := createRepository(testInstance, rootDirectory, "group", "repo2")
			nestedRepository := createRepository(testInstance, rootDirectory, "repo1", "vendor", "repo3")
			createRepository(testInstance, rootDirectory, hiddenDirectoryName, "repo4")

			repositoryDiscoverer := discovery.NewDepthBoundedRepositoryDiscoverer(zap.NewNop())
			discoveredRepositories, discoveryError := repositoryDiscoverer.DiscoverRepositories(rootDirectory, testCase.maximumDepth)
			require.NoError(testInstance, discoveryError)

			expectedRepositories := testCase.expectedRepositories(rootDirectory, firstLevelRepository, secondLevelRepository, nestedRepository)
			require.Equal(testInstance, expectedRepositories, discoveredRepositories)
		})
	}
}

func TestDepthBoundedRepositoryDiscovererRecordsRootRepository(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	creationError := os.MkdirAll(filepath.Join(rootDirectory, gitMetadataDirectoryName), repositoryDirectoryPermissions)
	require.NoError(testInstance, creationError)

	repositoryDiscoverer := discovery.NewDepthBoundedRepositoryDiscoverer(zap.NewNop())
	discoveredRepositories, discoveryError := repositoryDiscoverer.DiscoverRepositories(rootDirectory, 0)
	require.NoError(testInstance, discoveryError)
	require.Equal(testInstance, []string{rootDirectory}, discoveredRepositories)
}

func TestDepthBoundedRepositoryDiscovererIsIdempotent(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	createRepository(testInstance, rootDirectory, "repo1")
	createRepository(testInstance, rootDirectory, "group", "repo2")

	repositoryDiscoverer := discovery.NewDepthBoundedRepositoryDiscoverer(zap.NewNop())
	firstDiscovery, firstError := repositoryDiscoverer.DiscoverRepositories(rootDirectory, 2)
	require.NoError(testInstance, firstError)
	secondDiscovery, secondError := repositoryDiscoverer.DiscoverRepositories(rootDirectory, 2)
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, firstDiscovery, secondDiscovery)
}
