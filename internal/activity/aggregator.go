package activity

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maximumParallelRepositoriesConstant        = 10
	repositoryUnreachableErrorTemplateConstant = "repository unreachable: %w"
	notGitRepositoryErrorTemplateConstant      = "not a git repository: %s"
	aggregationStartedMessageConstant          = "aggregating repositories"
	repositoryProcessedMessageConstant         = "repository processed"
	logFieldRepositoryCountConstant            = "repository_count"
	logFieldWorkerCountConstant                = "worker_count"
	logFieldRepositoryNameConstant             = "repository_name"
	logFieldCommitCountConstant                = "commit_count"
)

// Aggregator fans commit collection out across repositories and merges the
// per-repository outcomes.
type Aggregator struct {
	gitExecutor         GitExecutor
	repositoryInspector RepositoryInspector
	fileSystem          FileSystem
	logger              *zap.Logger
}

// NewAggregator constructs an Aggregator with the provided collaborators.
func NewAggregator(gitExecutor GitExecutor, repositoryInspector RepositoryInspector, fileSystem FileSystem, logger *zap.Logger) *Aggregator {
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		gitExecutor:         gitExecutor,
		repositoryInspector: repositoryInspector,
		fileSystem:          fileSystem,
		logger:              logger,
	}
}

type indexedRepositoryResult struct {
	repositoryIndex int
	result          RepositoryResult
}

// AggregateRepositories processes every repository with bounded concurrency
// and returns one result per input path, in input order.
//
// Each worker builds its own enumeration and extraction state scoped to a
// single repository; no worker touches shared aggregate state. Results cross a
// channel and are merged exclusively on the consuming side, so the ordered
// result slice is mutated by one goroutine only. A repository failure is
// captured in its result and never aborts sibling repositories.
func (aggregator *Aggregator) AggregateRepositories(executionContext context.Context, repositoryPaths []string, targetIdentity string, window DateWindow) []RepositoryResult {
	if len(repositoryPaths) == 0 {
		return nil
	}

	workerCount := len(repositoryPaths)
	if workerCount > maximumParallelRepositoriesConstant {
		workerCount = maximumParallelRepositoriesConstant
	}

	aggregator.logger.Debug(
		aggregationStartedMessageConstant,
		zap.Int(logFieldRepositoryCountConstant, len(repositoryPaths)),
		zap.Int(logFieldWorkerCountConstant, workerCount),
	)

	resultChannel := make(chan indexedRepositoryResult, len(repositoryPaths))

	var workerGroup errgroup.Group
	workerGroup.SetLimit(workerCount)
	for repositoryIndex, repositoryPath := range repositoryPaths {
		repositoryIndex, repositoryPath := repositoryIndex, repositoryPath
		workerGroup.Go(func() error {
			repositoryResult := aggregator.processRepository(executionContext, repositoryPath, targetIdentity, window)
			resultChannel <- indexedRepositoryResult{repositoryIndex: repositoryIndex, result: repositoryResult}
			return nil
		})
	}

	go func() {
		_ = workerGroup.Wait()
		close(resultChannel)
	}()

	repositoryResults := make([]RepositoryResult, len(repositoryPaths))
	for arrivedResult := range resultChannel {
		repositoryResults[arrivedResult.repositoryIndex] = arrivedResult.result
		aggregator.logger.Debug(
			repositoryProcessedMessageConstant,
			zap.String(logFieldRepositoryNameConstant, arrivedResult.result.Repository.Name),
			zap.Int(logFieldCommitCountConstant, len(arrivedResult.result.Commits)),
		)
	}

	return repositoryResults
}

// processRepository runs the full per-repository pipeline: existence and
// work-tree checks, name resolution, branch enumeration, extraction, author
// filtering, sorting.
func (aggregator *Aggregator) processRepository(executionContext context.Context, repositoryPath string, targetIdentity string, window DateWindow) RepositoryResult {
	repository := Repository{Path: repositoryPath, Name: baseNameOfPath(repositoryPath)}

	if _, statError := aggregator.fileSystem.Stat(repositoryPath); statError != nil {
		return RepositoryResult{
			Repository:      repository,
			ProcessingError: fmt.Errorf(repositoryUnreachableErrorTemplateConstant, statError),
		}
	}

	if !aggregator.repositoryInspector.IsGitRepository(executionContext, repositoryPath) {
		return RepositoryResult{
			Repository:      repository,
			ProcessingError: fmt.Errorf(notGitRepositoryErrorTemplateConstant, repositoryPath),
		}
	}

	repository.Name = aggregator.repositoryInspector.ResolveRepositoryName(executionContext, repositoryPath)

	branchEnumerator := NewBranchEnumerator(aggregator.gitExecutor, aggregator.logger)
	commitExtractor := NewCommitExtractor(aggregator.gitExecutor, aggregator.logger)

	branchNames := branchEnumerator.ListBranches(executionContext, repositoryPath)
	extractedCommits := commitExtractor.ExtractCommits(executionContext, repositoryPath, window, branchNames)
	matchingCommits := FilterCommitsByAuthor(extractedCommits, targetIdentity)
	SortCommitsDeterministically(matchingCommits)

	return RepositoryResult{Repository: repository, Commits: matchingCommits}
}
