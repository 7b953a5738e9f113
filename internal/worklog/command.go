package worklog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcklmo/worklog/internal/activity"
	"github.com/mcklmo/worklog/internal/execshell"
	"github.com/mcklmo/worklog/internal/gitrepo"
	"github.com/mcklmo/worklog/internal/repos/discovery"
	"github.com/mcklmo/worklog/internal/ui"
)

const (
	commandUseConstant                    = "record"
	commandShortDescriptionConstant       = "Deliver one day of git activity to the work log"
	commandLongDescriptionConstant        = "record collects git activity for a one-day window, renders the day's report, and delivers it as a new work log record."
	commandExecutionErrorTemplateConstant = "work record delivery failed: %w"
	missingAuthorMessageConstant          = "author identity is required; supply --author"
	noWorkFoundTemplateConstant           = "no work found for %s"
	invalidDateTemplateConstant           = "invalid date %q: expected YYYY-MM-DD"
	recordCreatedTemplateConstant         = "Successfully created work record: %s\n"
	recordURLTemplateConstant             = "URL: %s\n"
	flagDateNameConstant                  = "date"
	flagDateShorthandConstant             = "D"
	flagDateDescriptionConstant           = "Date of the work (YYYY-MM-DD, default: today)"
	flagRootNameConstant                  = "root"
	flagRootShorthandConstant             = "r"
	flagRootDescriptionConstant           = "Directory tree to search for git repositories"
	flagAuthorNameConstant                = "author"
	flagAuthorShorthandConstant           = "u"
	flagAuthorDescriptionConstant         = "Author name or email fragment to match commits against"
	flagDurationNameConstant              = "duration"
	flagDurationShorthandConstant         = "d"
	flagDurationDescriptionConstant       = "Work duration in hours"
	flagProjectNameConstant               = "project"
	flagProjectShorthandConstant          = "p"
	flagProjectDescriptionConstant        = "Project page title referenced by the record"
	flagUserNameConstant                  = "user-name"
	flagUserShorthandConstant             = "U"
	flagUserDescriptionConstant           = "Work log user the record is attributed to"
	flagDatabaseNameConstant              = "database-id"
	flagDatabaseDescriptionConstant       = "Work log database identifier"
	tokenEnvironmentVariableConstant      = "NOTION_API_KEY"
	dateLayoutConstant                    = "2006-01-02"
	defaultRootPathConstant               = "."
	dateWindowRadiusDaysConstant          = 1
)

// ReportRunner produces rendered activity documents for a report request.
type ReportRunner interface {
	Run(executionContext context.Context, request activity.ReportRequest) (activity.ReportDocuments, error)
}

// RecordSink accepts finished work records for delivery.
type RecordSink interface {
	CreateWorkRecord(executionContext context.Context, record WorkRecord) (CreatedRecord, error)
}

// SinkFactory builds a RecordSink once the configuration is resolved.
type SinkFactory func(executionContext context.Context, configuration ClientConfiguration, logger *zap.Logger) (RecordSink, error)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for work record delivery.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ReportRunner          ReportRunner
	SinkFactory           SinkFactory
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the record command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagDateNameConstant, flagDateShorthandConstant, "", flagDateDescriptionConstant)
	command.Flags().StringP(flagRootNameConstant, flagRootShorthandConstant, "", flagRootDescriptionConstant)
	command.Flags().StringP(flagAuthorNameConstant, flagAuthorShorthandConstant, "", flagAuthorDescriptionConstant)
	command.Flags().IntP(flagDurationNameConstant, flagDurationShorthandConstant, 0, flagDurationDescriptionConstant)
	command.Flags().StringP(flagProjectNameConstant, flagProjectShorthandConstant, "", flagProjectDescriptionConstant)
	command.Flags().StringP(flagUserNameConstant, flagUserShorthandConstant, "", flagUserDescriptionConstant)
	command.Flags().String(flagDatabaseNameConstant, "", flagDatabaseDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	authorIdentity := stringFlagOrConfiguration(command, flagAuthorNameConstant, configuration.AuthorIdentity)
	if len(authorIdentity) == 0 {
		return errors.New(missingAuthorMessageConstant)
	}

	targetDate, dateError := builder.resolveTargetDate(command)
	if dateError != nil {
		return dateError
	}
	targetDayKey := targetDate.Format(dateLayoutConstant)

	rootPath := stringFlagOrConfiguration(command, flagRootNameConstant, configuration.RootPath)
	if len(rootPath) == 0 {
		rootPath = defaultRootPathConstant
	}
	outputDirectory := configuration.OutputDirectory
	if len(outputDirectory) == 0 {
		outputDirectory = defaultOutputDirectoryConstant
	}
	maximumDepth := configuration.MaximumDepth
	if maximumDepth <= 0 {
		maximumDepth = defaultRecordMaximumDepthConstant
	}

	window, windowError := activity.NewDateWindow(
		targetDate.AddDate(0, 0, -dateWindowRadiusDaysConstant),
		targetDate.AddDate(0, 0, dateWindowRadiusDaysConstant),
	)
	if windowError != nil {
		return windowError
	}

	logger := builder.resolveLogger()
	reportRunner, runnerError := builder.resolveReportRunner(logger)
	if runnerError != nil {
		return runnerError
	}

	documents, runError := reportRunner.Run(command.Context(), activity.ReportRequest{
		RootPath:        rootPath,
		TargetIdentity:  authorIdentity,
		Window:          window,
		MaximumDepth:    maximumDepth,
		OutputDirectory: outputDirectory,
	})
	if runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}

	dayReport, dayExists := documents.DayReports[targetDayKey]
	if !dayExists {
		return fmt.Errorf(noWorkFoundTemplateConstant, targetDayKey)
	}

	recordSink, sinkError := builder.resolveSink(command, configuration, logger)
	if sinkError != nil {
		return sinkError
	}

	durationHours := configuration.DurationHours
	if command.Flags().Changed(flagDurationNameConstant) {
		durationHours, _ = command.Flags().GetInt(flagDurationNameConstant)
	}

	createdRecord, deliveryError := recordSink.CreateWorkRecord(command.Context(), WorkRecord{
		Description:   dayReport,
		Date:          targetDate,
		DurationHours: durationHours,
		ProjectName:   stringFlagOrConfiguration(command, flagProjectNameConstant, configuration.ProjectName),
		UserName:      stringFlagOrConfiguration(command, flagUserNameConstant, configuration.UserName),
	})
	if deliveryError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, deliveryError)
	}

	fmt.Fprintf(command.OutOrStdout(), recordCreatedTemplateConstant, createdRecord.Identifier)
	fmt.Fprintf(command.OutOrStdout(), recordURLTemplateConstant, createdRecord.URL)

	return nil
}

func (builder *CommandBuilder) resolveTargetDate(command *cobra.Command) (time.Time, error) {
	dateText, _ := command.Flags().GetString(flagDateNameConstant)
	dateText = strings.TrimSpace(dateText)
	if len(dateText) == 0 {
		currentTime := time.Now()
		return time.Date(currentTime.Year(), currentTime.Month(), currentTime.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	targetDate, parseError := time.Parse(dateLayoutConstant, dateText)
	if parseError != nil {
		return time.Time{}, fmt.Errorf(invalidDateTemplateConstant, dateText)
	}
	return targetDate, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// resolveReportRunner assembles the full activity pipeline unless a runner was
// injected for testing.
func (builder *CommandBuilder) resolveReportRunner(logger *zap.Logger) (ReportRunner, error) {
	if builder.ReportRunner != nil {
		return builder.ReportRunner, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
	if executorError != nil {
		return nil, executorError
	}
	shellExecutor.SetCommandEventObserver(ui.NewConsoleCommandEventLogger(logger))

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, managerError
	}

	repositoryDiscoverer := discovery.NewDepthBoundedRepositoryDiscoverer(logger)
	aggregator := activity.NewAggregator(shellExecutor, repositoryManager, nil, logger)
	return activity.NewService(repositoryDiscoverer, aggregator, nil, logger), nil
}

// resolveSink builds the work log client from configuration, honoring the
// token environment fallback the original tooling used.
func (builder *CommandBuilder) resolveSink(command *cobra.Command, configuration CommandConfiguration, logger *zap.Logger) (RecordSink, error) {
	token := configuration.NotionToken
	if len(token) == 0 {
		token = strings.TrimSpace(os.Getenv(tokenEnvironmentVariableConstant))
	}
	databaseIdentifier := stringFlagOrConfiguration(command, flagDatabaseNameConstant, configuration.DatabaseIdentifier)

	clientConfiguration := ClientConfiguration{Token: token, DatabaseIdentifier: databaseIdentifier}
	if builder.SinkFactory != nil {
		return builder.SinkFactory(command.Context(), clientConfiguration, logger)
	}
	return NewClient(command.Context(), clientConfiguration, logger)
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
