package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	allBranchesLabelConstant                = "all branches"
)

const (
	gitLogSubcommandNameConstant       = "log"
	gitBranchSubcommandNameConstant    = "branch"
	gitRemoteSubcommandNameConstant    = "remote"
	gitRemoteGetURLSubcommandConstant  = "get-url"
	gitRevParseSubcommandNameConstant  = "rev-parse"
	gitAllRefsFlagConstant             = "--all"
	gitBranchAllFlagConstant           = "-a"
	gitSinceFlagPrefixConstant         = "--since="
	gitUntilFlagPrefixConstant         = "--until="
	gitPrettyFormatFlagPrefixConstant  = "--pretty=format:"
	gitIsInsideWorkTreeFlagConstant    = "--is-inside-work-tree"
	dateRangeSeparatorLabelConstant    = ".."
	commitHistoryReferenceLabelPadding = " "
)

const (
	gitLogStartTemplateConstant                   = "Collecting commit history for %s in %s%s"
	gitLogSuccessTemplateConstant                 = "Collected commit history for %s in %s"
	gitLogFailureTemplateConstant                 = "Could not collect commit history for %s in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant        = "Unable to collect commit history for %s in %s: %s"
	gitBranchListStartTemplateConstant            = "Listing branches in %s"
	gitBranchListSuccessTemplateConstant          = "Listed branches in %s"
	gitBranchListFailureTemplateConstant          = "Could not list branches in %s (exit code %d%s)"
	gitBranchListExecutionFailureTemplateConstant = "Unable to list branches in %s: %s"
	gitRemoteLookupStartTemplateConstant          = "Reading %s remote in %s"
	gitRemoteLookupSuccessTemplateConstant        = "Read %s remote in %s"
	gitRemoteLookupFailureTemplateConstant        = "Could not read %s remote in %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureConstant       = "Unable to read %s remote in %s: %s"
	gitWorkTreeStartTemplateConstant              = "Analyzing repository at %s"
	gitWorkTreeSuccessTemplateConstant            = "%s is a Git repository"
	gitWorkTreeFailureTemplateConstant            = "Could not confirm %s is a Git repository (exit code %d%s)"
	gitWorkTreeExecutionFailureTemplateConstant   = "Could not analyze %s: %s"
)

// CommandMessageFormatter builds log messages describing command lifecycle stages.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command that is about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that completed with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that completed with a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not run at all.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit && len(command.Details.Arguments) > 0 {
		switch command.Details.Arguments[0] {
		case gitLogSubcommandNameConstant:
			return formatter.describeGitLogMessage(command, result, failure, stage)
		case gitBranchSubcommandNameConstant:
			return formatter.describeGitBranchMessage(command, result, failure, stage)
		case gitRemoteSubcommandNameConstant:
			return formatter.describeGitRemoteMessage(command, result, failure, stage)
		case gitRevParseSubcommandNameConstant:
			return formatter.describeGitRevParseMessage(command, result, failure, stage)
		}
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitLogMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	historyReference := formatter.resolveHistoryReference(command.Details.Arguments)
	workingDirectory := formatter.describeWorkingDirectory(command)
	dateRangeSuffix := formatter.formatDateRangeSuffix(command.Details.Arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitLogStartTemplateConstant, historyReference, workingDirectory, dateRangeSuffix)
	case messageStageSuccess:
		return fmt.Sprintf(gitLogSuccessTemplateConstant, historyReference, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitLogFailureTemplateConstant, historyReference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitLogExecutionFailureTemplateConstant, historyReference, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitBranchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitBranchListStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitBranchListSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitBranchListFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitBranchListExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(command.Details.Arguments, gitRemoteGetURLSubcommandConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	remoteName := formatter.argumentAfter(command.Details.Arguments, gitRemoteGetURLSubcommandConstant)
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRemoteLookupStartTemplateConstant, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitRemoteLookupFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitRemoteLookupExecutionFailureConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(command.Details.Arguments, gitIsInsideWorkTreeFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitWorkTreeStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitWorkTreeSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitWorkTreeFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitWorkTreeExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) resolveHistoryReference(arguments []string) string {
	if containsArgument(arguments, gitAllRefsFlagConstant) {
		return allBranchesLabelConstant
	}
	for argumentIndex := len(arguments) - 1; argumentIndex > 0; argumentIndex-- {
		candidate := arguments[argumentIndex]
		if !strings.HasPrefix(candidate, "-") {
			return candidate
		}
	}
	return allBranchesLabelConstant
}

func (formatter CommandMessageFormatter) formatDateRangeSuffix(arguments []string) string {
	sinceValue := valueWithPrefix(arguments, gitSinceFlagPrefixConstant)
	untilValue := valueWithPrefix(arguments, gitUntilFlagPrefixConstant)
	if len(sinceValue) == 0 && len(untilValue) == 0 {
		return emptyStringConstant
	}
	return commitHistoryReferenceLabelPadding + sinceValue + dateRangeSeparatorLabelConstant + untilValue
}

func (formatter CommandMessageFormatter) argumentAfter(arguments []string, marker string) string {
	for argumentIndex, argument := range arguments {
		if argument == marker && argumentIndex+1 < len(arguments) {
			return arguments[argumentIndex+1]
		}
	}
	return unknownFailureMessageConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if argument == value {
			return true
		}
	}
	return false
}

func valueWithPrefix(arguments []string, prefix string) string {
	for _, argument := range arguments {
		if strings.HasPrefix(argument, prefix) {
			return strings.TrimPrefix(argument, prefix)
		}
	}
	return emptyStringConstant
}
