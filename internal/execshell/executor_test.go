package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/repopulse/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "--version"
	testWorkingDirectoryConstant                 = "."
	testStandardErrorOutputConstant              = "failure"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedCommands []execshell.ShellCommand
	failedCommands    []execshell.ShellCommand
}

func (observerInstance *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observerInstance.startedCommands = append(observerInstance.startedCommands, command)
}

func (observerInstance *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, _ execshell.ExecutionResult) {
	observerInstance.completedCommands = append(observerInstance.completedCommands, command)
}

func (observerInstance *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, _ error) {
	observerInstance.failedCommands = append(observerInstance.failedCommands, command)
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedLogCount int
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: "ok",
				ExitCode:       0,
			},
			expectedLogCount: 2,
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant,
				ExitCode:      1,
			},
			expectErrorType:  execshell.CommandFailedError{},
			expectedLogCount: 2,
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedLogCount: 2,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observedLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)
			runner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}

			executor, creationError := execshell.NewShellExecutor(logger, runner)
			require.NoError(testInstance, creationError)

			command := execshell.ShellCommand{
				Name: execshell.CommandGit,
				Details: execshell.CommandDetails{
					Arguments:        []string{testCommandArgumentConstant},
					WorkingDirectory: testWorkingDirectoryConstant,
				},
			}

			executionResult, executionError := executor.Execute(context.Background(), command)
			require.Len(testInstance, runner.recordedCommands, 1)
			require.Equal(testInstance, testCase.expectedLogCount, observedLogs.Len())

			switch testCase.expectErrorType.(type) {
			case nil:
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult, executionResult)
			case execshell.CommandFailedError:
				commandFailure := execshell.CommandFailedError{}
				require.ErrorAs(testInstance, executionError, &commandFailure)
				require.Equal(testInstance, testCase.runnerResult.ExitCode, commandFailure.Result.ExitCode)
			case execshell.CommandExecutionError:
				commandExecutionFailure := execshell.CommandExecutionError{}
				require.ErrorAs(testInstance, executionError, &commandExecutionFailure)
				require.ErrorIs(testInstance, executionError, testCase.runnerError)
			}
		})
	}
}

func TestShellExecutorNotifiesObserver(testInstance *testing.T) {
	eventObserver := &recordingEventObserver{}
	runner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 0}}

	executor, creationError := execshell.NewShellExecutorWithObserver(zap.NewNop(), runner, eventObserver)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}})
	require.NoError(testInstance, executionError)
	require.Len(testInstance, eventObserver.startedCommands, 1)
	require.Len(testInstance, eventObserver.completedCommands, 1)
	require.Empty(testInstance, eventObserver.failedCommands)
	require.Equal(testInstance, execshell.CommandGit, eventObserver.startedCommands[0].Name)
}

func TestShellExecutorNotifiesObserverOnRunnerFailure(testInstance *testing.T) {
	eventObserver := &recordingEventObserver{}
	runner := &recordingCommandRunner{executionError: errors.New("spawn failed")}

	executor, creationError := execshell.NewShellExecutorWithObserver(zap.NewNop(), runner, eventObserver)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}})
	require.Error(testInstance, executionError)
	require.Len(testInstance, eventObserver.startedCommands, 1)
	require.Empty(testInstance, eventObserver.completedCommands)
	require.Len(testInstance, eventObserver.failedCommands, 1)
}
