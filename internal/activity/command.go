package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcklmo/worklog/internal/execshell"
	"github.com/mcklmo/worklog/internal/gitrepo"
	"github.com/mcklmo/worklog/internal/repos/discovery"
	"github.com/mcklmo/worklog/internal/ui"
	"github.com/mcklmo/worklog/internal/utils"
)

const (
	commandUseConstant                    = "report"
	commandShortDescriptionConstant       = "Collect commit activity across repositories into markdown reports"
	commandLongDescriptionConstant        = "report walks a directory tree for git repositories, collects every commit authored by the target identity inside the date window, and renders a combined report plus one report per active day."
	commandExecutionErrorTemplateConstant = "activity report failed: %w"
	missingAuthorMessageConstant          = "author identity is required; supply --author"
	invalidDateTemplateConstant           = "invalid %s date %q: expected YYYY-MM-DD"
	flagRootNameConstant                  = "root"
	flagRootShorthandConstant             = "r"
	flagRootDescriptionConstant           = "Directory tree to search for git repositories"
	flagAuthorNameConstant                = "author"
	flagAuthorShorthandConstant           = "u"
	flagAuthorDescriptionConstant         = "Author name or email fragment to match commits against"
	flagSinceNameConstant                 = "since"
	flagSinceShorthandConstant            = "s"
	flagSinceDescriptionConstant          = "Start of the date window (YYYY-MM-DD, default: first day of the current month)"
	flagUntilNameConstant                 = "until"
	flagUntilShorthandConstant            = "e"
	flagUntilDescriptionConstant          = "End of the date window (YYYY-MM-DD, default: tomorrow)"
	flagMaxDepthNameConstant              = "max-depth"
	flagMaxDepthDescriptionConstant       = "Maximum directory depth searched for repositories"
	flagOutputDirNameConstant             = "output-dir"
	flagOutputDirDescriptionConstant      = "Directory receiving the rendered report files"
	flagDebugNameConstant                 = "debug"
	flagDebugDescriptionConstant          = "Enable verbose diagnostic logging"
	sinceDateLabelConstant                = "since"
	untilDateLabelConstant                = "until"
	defaultRootPathConstant               = "."
	runSummaryTemplateConstant            = "Report complete: %d active days, written to %s\n"
	configurationAppliedMessageConstant   = "configuration file applied"
	logFieldConfigurationFileConstant     = "configuration_file"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for activity reporting.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           GitExecutor
	Discoverer            RepositoryDiscoverer
	FileSystem            FileSystem
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the report command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagRootNameConstant, flagRootShorthandConstant, defaultRootPathConstant, flagRootDescriptionConstant)
	command.Flags().StringP(flagAuthorNameConstant, flagAuthorShorthandConstant, "", flagAuthorDescriptionConstant)
	command.Flags().StringP(flagSinceNameConstant, flagSinceShorthandConstant, "", flagSinceDescriptionConstant)
	command.Flags().StringP(flagUntilNameConstant, flagUntilShorthandConstant, "", flagUntilDescriptionConstant)
	command.Flags().Int(flagMaxDepthNameConstant, defaultMaximumDepthConstant, flagMaxDepthDescriptionConstant)
	command.Flags().String(flagOutputDirNameConstant, defaultOutputDirectoryConstant, flagOutputDirDescriptionConstant)
	command.Flags().Bool(flagDebugNameConstant, false, flagDebugDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	request, debugRequested, requestError := builder.resolveRequest(command)
	if requestError != nil {
		return requestError
	}

	logger := builder.resolveLogger(debugRequested)

	contextAccessor := utils.NewCommandContextAccessor()
	if configurationFilePath, pathAvailable := contextAccessor.ConfigurationFilePath(command.Context()); pathAvailable && len(configurationFilePath) > 0 {
		logger.Debug(configurationAppliedMessageConstant, zap.String(logFieldConfigurationFileConstant, configurationFilePath))
	}

	gitExecutor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(gitExecutor)
	if managerError != nil {
		return managerError
	}

	repositoryDiscoverer := builder.Discoverer
	if repositoryDiscoverer == nil {
		repositoryDiscoverer = discovery.NewDepthBoundedRepositoryDiscoverer(logger)
	}

	aggregator := NewAggregator(gitExecutor, repositoryManager, builder.FileSystem, logger)
	service := NewService(repositoryDiscoverer, aggregator, builder.FileSystem, logger)

	documents, runError := service.Run(command.Context(), request)
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	fmt.Fprintf(command.OutOrStdout(), runSummaryTemplateConstant, len(documents.DayReports), request.OutputDirectory)

	return nil
}

// resolveRequest merges flag values over the loaded configuration and fills in
// the defaulted date window: first day of the current month through tomorrow.
func (builder *CommandBuilder) resolveRequest(command *cobra.Command) (ReportRequest, bool, error) {
	configuration := builder.resolveConfiguration()

	rootPath := stringFlagOrConfiguration(command, flagRootNameConstant, configuration.RootPath)
	if len(rootPath) == 0 {
		rootPath = defaultRootPathConstant
	}

	authorIdentity := stringFlagOrConfiguration(command, flagAuthorNameConstant, configuration.AuthorIdentity)
	if len(authorIdentity) == 0 {
		return ReportRequest{}, false, errors.New(missingAuthorMessageConstant)
	}

	currentTime := time.Now()
	sinceText := stringFlagOrConfiguration(command, flagSinceNameConstant, configuration.StartDate)
	if len(sinceText) == 0 {
		sinceText = time.Date(currentTime.Year(), currentTime.Month(), 1, 0, 0, 0, 0, currentTime.Location()).Format(dayKeyLayoutConstant)
	}
	untilText := stringFlagOrConfiguration(command, flagUntilNameConstant, configuration.EndDate)
	if len(untilText) == 0 {
		untilText = currentTime.AddDate(0, 0, 1).Format(dayKeyLayoutConstant)
	}

	sinceDate, sinceError := time.Parse(dayKeyLayoutConstant, sinceText)
	if sinceError != nil {
		return ReportRequest{}, false, fmt.Errorf(invalidDateTemplateConstant, sinceDateLabelConstant, sinceText)
	}
	untilDate, untilError := time.Parse(dayKeyLayoutConstant, untilText)
	if untilError != nil {
		return ReportRequest{}, false, fmt.Errorf(invalidDateTemplateConstant, untilDateLabelConstant, untilText)
	}

	window, windowError := NewDateWindow(sinceDate, untilDate)
	if windowError != nil {
		return ReportRequest{}, false, windowError
	}

	maximumDepth := configuration.MaximumDepth
	if command.Flags().Changed(flagMaxDepthNameConstant) {
		maximumDepth, _ = command.Flags().GetInt(flagMaxDepthNameConstant)
	}
	if maximumDepth <= 0 {
		maximumDepth = defaultMaximumDepthConstant
	}

	outputDirectory := stringFlagOrConfiguration(command, flagOutputDirNameConstant, configuration.OutputDirectory)
	if len(outputDirectory) == 0 {
		outputDirectory = defaultOutputDirectoryConstant
	}

	debugRequested := configuration.Debug
	if command.Flags().Changed(flagDebugNameConstant) {
		debugRequested, _ = command.Flags().GetBool(flagDebugNameConstant)
	}

	return ReportRequest{
		RootPath:        rootPath,
		TargetIdentity:  authorIdentity,
		Window:          window,
		MaximumDepth:    maximumDepth,
		OutputDirectory: outputDirectory,
	}, debugRequested, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger(debugRequested bool) *zap.Logger {
	if debugRequested {
		debugLogger, creationError := utils.NewLoggerFactory().CreateLogger(utils.LogLevelDebug, utils.LogFormatConsole)
		if creationError == nil {
			return debugLogger
		}
	}

	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))

	return shellExecutor, nil
}

// stringFlagOrConfiguration prefers an explicitly changed flag value over the
// configuration-sourced fallback.
func stringFlagOrConfiguration(command *cobra.Command, flagName string, configuredValue string) string {
	if command.Flags().Changed(flagName) {
		flagValue, _ := command.Flags().GetString(flagName)
		return strings.TrimSpace(flagValue)
	}
	return strings.TrimSpace(configuredValue)
}
