package githubactivity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant                    = "github-events"
	commandShortDescriptionConstant       = "Render one day of GitHub activity as a work report"
	commandLongDescriptionConstant        = "github-events reads the user's GitHub event stream and renders commits, pull requests, issues, comments, and reviews for a single day."
	commandExecutionErrorTemplateConstant = "github events report failed: %w"
	missingUsernameMessageConstant        = "github username is required; supply --username"
	missingTokenMessageConstant           = "github token is required; set GITHUB_TOKEN or configure github_token"
	flagUsernameNameConstant              = "username"
	flagUsernameShorthandConstant         = "u"
	flagUsernameDescriptionConstant       = "GitHub username whose events are reported"
	flagDateNameConstant                  = "date"
	flagDateShorthandConstant             = "D"
	flagDateDescriptionConstant           = "Day to report (YYYY-MM-DD, default: today)"
	tokenEnvironmentVariableConstant      = "GITHUB_TOKEN"
	dayLayoutFlagConstant                 = "2006-01-02"
)

// ReportBuilder produces a rendered event report for one user and day.
type ReportBuilder interface {
	BuildDailyReport(executionContext context.Context, username string, dayText string) (string, error)
}

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the Cobra command for GitHub event reports.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ReportBuilder         ReportBuilder
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the github-events command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().StringP(flagUsernameNameConstant, flagUsernameShorthandConstant, "", flagUsernameDescriptionConstant)
	command.Flags().StringP(flagDateNameConstant, flagDateShorthandConstant, "", flagDateDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	username := configuration.Username
	if command.Flags().Changed(flagUsernameNameConstant) {
		flagValue, _ := command.Flags().GetString(flagUsernameNameConstant)
		username = strings.TrimSpace(flagValue)
	}
	if len(username) == 0 {
		return errors.New(missingUsernameMessageConstant)
	}

	dayText, _ := command.Flags().GetString(flagDateNameConstant)
	dayText = strings.TrimSpace(dayText)
	if len(dayText) == 0 {
		dayText = time.Now().UTC().Format(dayLayoutFlagConstant)
	}

	reportBuilder, builderError := builder.resolveReportBuilder(configuration)
	if builderError != nil {
		return builderError
	}

	renderedReport, reportError := reportBuilder.BuildDailyReport(command.Context(), username, dayText)
	if reportError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, reportError)
	}

	fmt.Fprintln(command.OutOrStdout(), renderedReport)
	return nil
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

// resolveReportBuilder constructs the events client unless one was injected.
// The token falls back to the conventional environment variable.
func (builder *CommandBuilder) resolveReportBuilder(configuration CommandConfiguration) (ReportBuilder, error) {
	if builder.ReportBuilder != nil {
		return builder.ReportBuilder, nil
	}

	token := configuration.GithubToken
	if len(token) == 0 {
		token = strings.TrimSpace(os.Getenv(tokenEnvironmentVariableConstant))
	}
	if len(token) == 0 {
		return nil, errors.New(missingTokenMessageConstant)
	}

	return NewClient(ClientConfiguration{Token: token}, builder.resolveLogger())
}
