package activity

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	noRepositoriesFoundErrorTemplateConstant  = "no git repositories found under %s (depth %d)"
	repositoryDiscoveryFailedTemplateConstant = "repository discovery failed: %w"
	outputDirectoryCreationFailedTemplate     = "unable to create output directory %s: %w"
	reportWriteFailedTemplateConstant         = "unable to write report %s: %w"
	combinedReportFileNameTemplateConstant    = "git_report_multi_%s_%s_to_%s.md"
	dayReportFileNameTemplateConstant         = "git_report_day_%s.md"
	reportFilePermissionsConstant             = fs.FileMode(0o644)
	outputDirectoryPermissionsConstant        = fs.FileMode(0o755)
	repositoriesDiscoveredMessageConstant     = "repositories discovered"
	combinedReportWrittenMessageConstant      = "combined report written"
	dayReportWrittenMessageConstant           = "day report written"
	logFieldDiscoveredRepositoryCountConstant = "repository_count"
	logFieldReportPathConstant                = "report_path"
	logFieldReportDayConstant                 = "report_day"
	logFieldRootPathConstant                  = "root_path"
)

// ReportRequest carries the resolved inputs for one report run.
type ReportRequest struct {
	RootPath        string
	TargetIdentity  string
	Window          DateWindow
	MaximumDepth    int
	OutputDirectory string
}

// Service drives an end-to-end report run: discovery, aggregation, bucketing,
// rendering, and artifact persistence.
type Service struct {
	discoverer RepositoryDiscoverer
	aggregator *Aggregator
	renderer   *ReportRenderer
	fileSystem FileSystem
	logger     *zap.Logger
}

// NewService constructs a Service with the provided collaborators.
func NewService(discoverer RepositoryDiscoverer, aggregator *Aggregator, fileSystem FileSystem, logger *zap.Logger) *Service {
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		discoverer: discoverer,
		aggregator: aggregator,
		renderer:   NewReportRenderer(),
		fileSystem: fileSystem,
		logger:     logger,
	}
}

// Run executes the full pipeline and returns the rendered documents.
//
// Finding zero repositories is a fatal error: every later stage would produce
// an empty report that silently hides a mistyped root path.
func (service *Service) Run(executionContext context.Context, request ReportRequest) (ReportDocuments, error) {
	repositoryPaths, discoveryError := service.discoverer.DiscoverRepositories(request.RootPath, request.MaximumDepth)
	if discoveryError != nil {
		return ReportDocuments{}, fmt.Errorf(repositoryDiscoveryFailedTemplateConstant, discoveryError)
	}
	if len(repositoryPaths) == 0 {
		return ReportDocuments{}, fmt.Errorf(noRepositoriesFoundErrorTemplateConstant, request.RootPath, request.MaximumDepth)
	}

	service.logger.Debug(
		repositoriesDiscoveredMessageConstant,
		zap.String(logFieldRootPathConstant, request.RootPath),
		zap.Int(logFieldDiscoveredRepositoryCountConstant, len(repositoryPaths)),
	)

	repositoryResults := service.aggregator.AggregateRepositories(executionContext, repositoryPaths, request.TargetIdentity, request.Window)

	dayBuckets := BuildDayBuckets(repositoryResults)

	documents := ReportDocuments{
		CombinedReport: service.renderer.RenderCombinedReport(request.TargetIdentity, request.Window, repositoryResults),
		DayReports:     make(map[string]string, len(dayBuckets)),
	}
	for dayKey, bucketEntries := range dayBuckets {
		documents.DayReports[dayKey] = service.renderer.RenderDayReport(dayKey, bucketEntries)
	}

	if persistError := service.persistDocuments(request, documents); persistError != nil {
		return ReportDocuments{}, persistError
	}

	return documents, nil
}

// persistDocuments writes the combined report plus one file per day bucket
// into the requested output directory.
func (service *Service) persistDocuments(request ReportRequest, documents ReportDocuments) error {
	if mkdirError := service.fileSystem.MkdirAll(request.OutputDirectory, outputDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(outputDirectoryCreationFailedTemplate, request.OutputDirectory, mkdirError)
	}

	combinedReportFileName := fmt.Sprintf(
		combinedReportFileNameTemplateConstant,
		baseNameOfPath(request.RootPath),
		request.Window.SinceText(),
		request.Window.UntilText(),
	)
	combinedReportPath := filepath.Join(request.OutputDirectory, combinedReportFileName)
	if writeError := service.fileSystem.WriteFile(combinedReportPath, []byte(documents.CombinedReport), reportFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(reportWriteFailedTemplateConstant, combinedReportPath, writeError)
	}
	service.logger.Debug(combinedReportWrittenMessageConstant, zap.String(logFieldReportPathConstant, combinedReportPath))

	for dayKey, renderedDayReport := range documents.DayReports {
		dayReportPath := filepath.Join(request.OutputDirectory, fmt.Sprintf(dayReportFileNameTemplateConstant, dayKey))
		if writeError := service.fileSystem.WriteFile(dayReportPath, []byte(renderedDayReport), reportFilePermissionsConstant); writeError != nil {
			return fmt.Errorf(reportWriteFailedTemplateConstant, dayReportPath, writeError)
		}
		service.logger.Debug(
			dayReportWrittenMessageConstant,
			zap.String(logFieldReportDayConstant, dayKey),
			zap.String(logFieldReportPathConstant, dayReportPath),
		)
	}

	return nil
}
