package activity_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repopulse/internal/activity"
	"github.com/temirov/repopulse/internal/execshell"
)

const (
	commandSubtestNameTemplateConstant = "%d_%s"
	caseCheckHealthyConstant           = "check_passes_inside_repository"
	caseCheckOutsideConstant           = "check_fails_outside_repository"
	caseCheckMissingRemoteConstant     = "check_fails_without_remote"
	caseCheckMissingPathConstant       = "check_fails_for_missing_path"
	caseCheckRegularFileConstant       = "check_fails_for_regular_file"
	testCommandRemoteURLConstant       = "git@github.com:example/activity.git"
	testCommandBranchConstant          = "main"
	checkSubcommandNameConstant        = "check"
	runSubcommandNameConstant          = "run"
	repositoryFlagArgumentConstant     = "--repository"
	iterationsFlagArgumentConstant     = "--iterations"
	singleIterationArgumentConstant    = "1"
	expectedSubcommandCountConstant    = 2
)

type scriptedGitExecutor struct {
	insideWorkTree   bool
	remoteURL        string
	branchName       string
	executedCommands [][]string
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.executedCommands = append(executor.executedCommands, details.Arguments)
	joinedArguments := strings.Join(details.Arguments, " ")

	switch {
	case joinedArguments == "rev-parse --is-inside-work-tree":
		if executor.insideWorkTree {
			return execshell.ExecutionResult{StandardOutput: "true\n"}, nil
		}
		return execshell.ExecutionResult{StandardOutput: "false\n"}, nil
	case strings.HasPrefix(joinedArguments, "remote get-url"):
		if len(executor.remoteURL) == 0 {
			return execshell.ExecutionResult{}, execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
				Result:  execshell.ExecutionResult{ExitCode: 2, StandardError: "error: No such remote"},
			}
		}
		return execshell.ExecutionResult{StandardOutput: executor.remoteURL + "\n"}, nil
	case joinedArguments == "rev-parse --abbrev-ref HEAD":
		return execshell.ExecutionResult{StandardOutput: executor.branchName + "\n"}, nil
	default:
		return execshell.ExecutionResult{}, nil
	}
}

func (executor *scriptedGitExecutor) commandCount(firstArguments ...string) int {
	matched := 0
	for _, executedArguments := range executor.executedCommands {
		if len(executedArguments) < len(firstArguments) {
			continue
		}
		prefixMatches := true
		for argumentIndex, expectedArgument := range firstArguments {
			if executedArguments[argumentIndex] != expectedArgument {
				prefixMatches = false
				break
			}
		}
		if prefixMatches {
			matched++
		}
	}
	return matched
}

func buildTestCommand(executor *scriptedGitExecutor) *activity.CommandBuilder {
	return &activity.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		GitExecutor:    executor,
	}
}

func TestCommandBuilderBuildShape(testInstance *testing.T) {
	activityCommand := buildTestCommand(&scriptedGitExecutor{}).Build()
	require.Equal(testInstance, "activity", activityCommand.Use)
	require.Len(testInstance, activityCommand.Commands(), expectedSubcommandCountConstant)

	for _, persistentFlagName := range []string{"repository", "assets", "remote", "iterations", "delay"} {
		require.NotNil(testInstance, activityCommand.PersistentFlags().Lookup(persistentFlagName))
	}
}

func TestCheckCommand(testInstance *testing.T) {
	testCases := []struct {
		name        string
		executor    *scriptedGitExecutor
		expectError bool
	}{
		{
			name: caseCheckHealthyConstant,
			executor: &scriptedGitExecutor{
				insideWorkTree: true,
				remoteURL:      testCommandRemoteURLConstant,
				branchName:     testCommandBranchConstant,
			},
		},
		{
			name:        caseCheckOutsideConstant,
			executor:    &scriptedGitExecutor{},
			expectError: true,
		},
		{
			name: caseCheckMissingRemoteConstant,
			executor: &scriptedGitExecutor{
				insideWorkTree: true,
				branchName:     testCommandBranchConstant,
			},
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(commandSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			activityCommand := buildTestCommand(testCase.executor).Build()

			activityCommand.SetArgs([]string{checkSubcommandNameConstant, repositoryFlagArgumentConstant, testInstance.TempDir()})
			executionError := activityCommand.Execute()
			if testCase.expectError {
				require.Error(testInstance, executionError)
				return
			}
			require.NoError(testInstance, executionError)
		})
	}
}

func TestCheckCommandRejectsUnusableRepositoryPath(testInstance *testing.T) {
	regularFilePath := filepath.Join(testInstance.TempDir(), "not_a_directory")
	require.NoError(testInstance, os.WriteFile(regularFilePath, []byte("content"), 0o644))

	testCases := []struct {
		name           string
		repositoryPath string
	}{
		{name: caseCheckMissingPathConstant, repositoryPath: filepath.Join(testInstance.TempDir(), "absent")},
		{name: caseCheckRegularFileConstant, repositoryPath: regularFilePath},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(commandSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			scriptedExecutor := &scriptedGitExecutor{
				insideWorkTree: true,
				remoteURL:      testCommandRemoteURLConstant,
				branchName:     testCommandBranchConstant,
			}
			activityCommand := buildTestCommand(scriptedExecutor).Build()

			activityCommand.SetArgs([]string{checkSubcommandNameConstant, repositoryFlagArgumentConstant, testCase.repositoryPath})
			executionError := activityCommand.Execute()
			require.Error(testInstance, executionError)
			require.Empty(testInstance, scriptedExecutor.executedCommands)
		})
	}
}

func TestRunCommandSingleIteration(testInstance *testing.T) {
	scriptedExecutor := &scriptedGitExecutor{
		insideWorkTree: true,
		remoteURL:      testCommandRemoteURLConstant,
		branchName:     testCommandBranchConstant,
	}
	activityCommand := buildTestCommand(scriptedExecutor).Build()

	repositoryDirectory := testInstance.TempDir()
	activityCommand.SetArgs([]string{
		runSubcommandNameConstant,
		repositoryFlagArgumentConstant, repositoryDirectory,
		iterationsFlagArgumentConstant, singleIterationArgumentConstant,
	})

	executionError := activityCommand.Execute()
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, 1, scriptedExecutor.commandCount("add"))
	require.Equal(testInstance, 1, scriptedExecutor.commandCount("commit"))
	require.Equal(testInstance, 1, scriptedExecutor.commandCount("push", "origin", testCommandBranchConstant))
	require.Equal(testInstance, 1, scriptedExecutor.commandCount("push", "origin", "--tags"))
	require.GreaterOrEqual(testInstance, scriptedExecutor.commandCount("tag"), 1)

	assetEntries, readError := os.ReadDir(filepath.Join(repositoryDirectory, "assets"))
	require.NoError(testInstance, readError)
	require.NotEmpty(testInstance, assetEntries)
}

func TestRunCommandUsesConfigurationProvider(testInstance *testing.T) {
	scriptedExecutor := &scriptedGitExecutor{
		insideWorkTree: true,
		remoteURL:      testCommandRemoteURLConstant,
		branchName:     testCommandBranchConstant,
	}
	repositoryDirectory := testInstance.TempDir()
	builder := &activity.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		GitExecutor:    scriptedExecutor,
		ConfigurationProvider: func() activity.CommandConfiguration {
			return activity.CommandConfiguration{
				RepositoryPath: repositoryDirectory,
				AssetDirectory: "generated",
				RemoteName:     "upstream",
				IterationLimit: 1,
			}
		},
	}

	activityCommand := builder.Build()

	activityCommand.SetArgs([]string{runSubcommandNameConstant})
	executionError := activityCommand.Execute()
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, 1, scriptedExecutor.commandCount("push", "upstream", testCommandBranchConstant))
	require.Equal(testInstance, 1, scriptedExecutor.commandCount("add", "-A", "generated"))
}
