package execshell

// CommandEventObserver watches the lifecycle of every git invocation the
// collection pipeline issues; ui.ConsoleCommandEventLogger is the production
// implementation.
type CommandEventObserver interface {
	// CommandStarted fires just before the git process launches.
	CommandStarted(command ShellCommand)
	// CommandCompleted supplies the captured result once the process exits.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented a result, such as
	// a missing git binary.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
