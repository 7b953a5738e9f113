package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func changeWorkingDirectory(testInstance *testing.T, directoryPath string) {
	testInstance.Helper()

	originalDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	require.NoError(testInstance, os.Chdir(directoryPath))
	testInstance.Cleanup(func() {
		require.NoError(testInstance, os.Chdir(originalDirectory))
	})
}

const (
	reportSubcommandNameConstant       = "report"
	recordSubcommandNameConstant       = "record"
	githubEventsSubcommandNameConstant = "github-events"
)

func TestNewApplicationRegistersSubcommands(testInstance *testing.T) {
	application := NewApplication()

	registeredNames := map[string]bool{}
	for _, subcommand := range application.rootCommand.Commands() {
		registeredNames[subcommand.Name()] = true
	}

	require.True(testInstance, registeredNames[reportSubcommandNameConstant])
	require.True(testInstance, registeredNames[recordSubcommandNameConstant])
	require.True(testInstance, registeredNames[githubEventsSubcommandNameConstant])
}

func TestNewApplicationDeclaresPersistentFlags(testInstance *testing.T) {
	application := NewApplication()

	persistentFlags := application.rootCommand.PersistentFlags()
	require.NotNil(testInstance, persistentFlags.Lookup(configFileFlagNameConstant))
	require.NotNil(testInstance, persistentFlags.Lookup(logLevelFlagNameConstant))
	require.NotNil(testInstance, persistentFlags.Lookup(logFormatFlagNameConstant))
}

func TestInitializeConfigurationAppliesFlagOverrides(testInstance *testing.T) {
	changeWorkingDirectory(testInstance, testInstance.TempDir())

	application := NewApplication()

	parseError := application.rootCommand.PersistentFlags().Parse([]string{
		"--" + logLevelFlagNameConstant, "debug",
		"--" + logFormatFlagNameConstant, "console",
	})
	require.NoError(testInstance, parseError)

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
	require.Equal(testInstance, "console", application.configuration.Common.LogFormat)
	require.NotNil(testInstance, application.logger)
}

func TestInitializeConfigurationUsesEmbeddedDefaults(testInstance *testing.T) {
	changeWorkingDirectory(testInstance, testInstance.TempDir())

	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, 3, application.configuration.Tools.Report.MaximumDepth)
	require.Equal(testInstance, 2, application.configuration.Tools.Record.MaximumDepth)
}

func TestFlushLoggerToleratesNopLogger(testInstance *testing.T) {
	application := NewApplication()

	require.NoError(testInstance, application.flushLogger())
}
