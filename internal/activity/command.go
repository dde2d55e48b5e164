package activity

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repopulse/internal/execshell"
	"github.com/temirov/repopulse/internal/gitrepo"
	"github.com/temirov/repopulse/internal/repos/filesystem"
	"github.com/temirov/repopulse/internal/ui"
)

const (
	activityCommandUseConstant              = "activity"
	activityCommandShortDescriptionConstant = "Generate synthetic repository activity"
	activityCommandLongDescriptionConstant  = "activity writes random asset files, commits and pushes them, and creates digest-named tags in a continuous loop."
	runCommandUseConstant                   = "run"
	runCommandShortDescriptionConstant      = "Run the synthetic activity loop"
	checkCommandUseConstant                 = "check"
	checkCommandShortDescriptionConstant    = "Verify the repository is ready for synthetic activity"
	repositoryFlagNameConstant              = "repository"
	repositoryFlagUsageConstant             = "Path of the git repository to operate on"
	assetsFlagNameConstant                  = "assets"
	assetsFlagUsageConstant                 = "Directory inside the repository that receives generated files"
	remoteFlagNameConstant                  = "remote"
	remoteFlagUsageConstant                 = "Name of the remote that receives pushes"
	iterationsFlagNameConstant              = "iterations"
	iterationsFlagUsageConstant             = "Number of iterations to run before stopping, 0 runs forever"
	delayFlagNameConstant                   = "delay"
	delayFlagUsageConstant                  = "Pause between iterations"
	serviceCreationErrorTemplateConstant    = "unable to construct activity service: %w"
	executorCreationErrorTemplateConstant   = "unable to construct shell executor: %w"
	managerCreationErrorTemplateConstant    = "unable to construct repository manager: %w"
	fillerCreationErrorTemplateConstant     = "unable to construct asset writer: %w"
	preflightFailedTemplateConstant         = "preflight failed: %w"
	preflightPassedMessageConstant          = "Preflight passed"
	activityStartingMessageConstant         = "Starting synthetic activity"
	logFieldIterationLimitConstant          = "iteration_limit"
	logFieldDelayConstant                   = "delay"

	repositoryPathResolutionTemplateConstant   = "resolving repository path %s: %w"
	repositoryPathNotDirectoryTemplateConstant = "repository path %s is not a directory"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the activity Cobra commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  gitrepo.GitExecutor
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the activity command with its run and check subcommands.
func (builder *CommandBuilder) Build() *cobra.Command {
	activityCommand := &cobra.Command{
		Use:           activityCommandUseConstant,
		Short:         activityCommandShortDescriptionConstant,
		Long:          activityCommandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	defaults := DefaultCommandConfiguration()
	activityCommand.PersistentFlags().String(repositoryFlagNameConstant, defaults.RepositoryPath, repositoryFlagUsageConstant)
	activityCommand.PersistentFlags().String(assetsFlagNameConstant, defaults.AssetDirectory, assetsFlagUsageConstant)
	activityCommand.PersistentFlags().String(remoteFlagNameConstant, defaults.RemoteName, remoteFlagUsageConstant)
	activityCommand.PersistentFlags().Int(iterationsFlagNameConstant, defaults.IterationLimit, iterationsFlagUsageConstant)
	activityCommand.PersistentFlags().Duration(delayFlagNameConstant, defaults.InterIterationDelay, delayFlagUsageConstant)

	runCommand := &cobra.Command{
		Use:           runCommandUseConstant,
		Short:         runCommandShortDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runActivity,
	}
	checkCommand := &cobra.Command{
		Use:           checkCommandUseConstant,
		Short:         checkCommandShortDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runPreflight,
	}

	activityCommand.AddCommand(runCommand)
	activityCommand.AddCommand(checkCommand)

	return activityCommand
}

func (builder *CommandBuilder) runActivity(command *cobra.Command, _ []string) error {
	options, service, buildError := builder.prepare(command)
	if buildError != nil {
		return buildError
	}

	if _, preflightError := service.Preflight(command.Context(), options); preflightError != nil {
		return fmt.Errorf(preflightFailedTemplateConstant, preflightError)
	}

	builder.resolveLogger().Info(activityStartingMessageConstant,
		zap.String(logFieldRepositoryConstant, options.RepositoryPath),
		zap.String(logFieldAssetDirectoryConstant, options.AssetDirectory),
		zap.String(logFieldRemoteConstant, options.RemoteName),
		zap.Int(logFieldIterationLimitConstant, options.IterationLimit),
		zap.Duration(logFieldDelayConstant, options.InterIterationDelay),
	)

	return service.Run(command.Context(), options)
}

func (builder *CommandBuilder) runPreflight(command *cobra.Command, _ []string) error {
	options, service, buildError := builder.prepare(command)
	if buildError != nil {
		return buildError
	}

	preflightResult, preflightError := service.Preflight(command.Context(), options)
	if preflightError != nil {
		return fmt.Errorf(preflightFailedTemplateConstant, preflightError)
	}

	builder.resolveLogger().Info(preflightPassedMessageConstant,
		zap.String(logFieldRepositoryConstant, options.RepositoryPath),
		zap.String(logFieldRemoteURLConstant, preflightResult.RemoteURL),
		zap.String(logFieldBranchConstant, preflightResult.BranchName),
	)
	return nil
}

func (builder *CommandBuilder) prepare(command *cobra.Command) (ActivityOptions, *Service, error) {
	options := builder.parseOptions(command)

	fileSystem := filesystem.OSFileSystem{}
	resolvedRepositoryPath, pathError := resolveRepositoryPath(fileSystem, options.RepositoryPath)
	if pathError != nil {
		return ActivityOptions{}, nil, pathError
	}
	options.RepositoryPath = resolvedRepositoryPath

	logger := builder.resolveLogger()
	executor, executorError := builder.resolveExecutor(logger)
	if executorError != nil {
		return ActivityOptions{}, nil, fmt.Errorf(executorCreationErrorTemplateConstant, executorError)
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return ActivityOptions{}, nil, fmt.Errorf(managerCreationErrorTemplateConstant, managerError)
	}

	fillerWriter, fillerError := NewFillerWriter(fileSystem, SystemClock{}, PseudoRandomNumberGenerator{}, logger)
	if fillerError != nil {
		return ActivityOptions{}, nil, fmt.Errorf(fillerCreationErrorTemplateConstant, fillerError)
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:            logger,
		RepositoryManager: repositoryManager,
		AssetWriter:       fillerWriter,
		Clock:             SystemClock{},
		RandomGenerator:   PseudoRandomNumberGenerator{},
	})
	if serviceError != nil {
		return ActivityOptions{}, nil, fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}

	return options, service, nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) ActivityOptions {
	configuration := builder.resolveConfiguration()
	options := ActivityOptions{
		RepositoryPath:      configuration.RepositoryPath,
		AssetDirectory:      configuration.AssetDirectory,
		RemoteName:          configuration.RemoteName,
		IterationLimit:      configuration.IterationLimit,
		InterIterationDelay: configuration.InterIterationDelay,
	}

	if command == nil {
		return options
	}

	flags := command.Flags()
	if flags.Changed(repositoryFlagNameConstant) {
		options.RepositoryPath, _ = flags.GetString(repositoryFlagNameConstant)
	}
	if flags.Changed(assetsFlagNameConstant) {
		options.AssetDirectory, _ = flags.GetString(assetsFlagNameConstant)
	}
	if flags.Changed(remoteFlagNameConstant) {
		options.RemoteName, _ = flags.GetString(remoteFlagNameConstant)
	}
	if flags.Changed(iterationsFlagNameConstant) {
		options.IterationLimit, _ = flags.GetInt(iterationsFlagNameConstant)
	}
	if flags.Changed(delayFlagNameConstant) {
		options.InterIterationDelay, _ = flags.GetDuration(delayFlagNameConstant)
	}
	return options
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger) (gitrepo.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	if humanReadableLogging {
		return execshell.NewShellExecutorWithObserver(logger, commandRunner, ui.NewConsoleCommandEventLogger(logger))
	}
	return execshell.NewShellExecutor(logger, commandRunner)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func resolveRepositoryPath(fileSystem filesystem.OSFileSystem, repositoryPath string) (string, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return "", ErrRepositoryPathRequired
	}

	absolutePath, absoluteError := fileSystem.Abs(trimmedPath)
	if absoluteError != nil {
		return "", fmt.Errorf(repositoryPathResolutionTemplateConstant, trimmedPath, absoluteError)
	}

	pathInformation, statError := fileSystem.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(repositoryPathResolutionTemplateConstant, absolutePath, statError)
	}
	if !pathInformation.IsDir() {
		return "", fmt.Errorf(repositoryPathNotDirectoryTemplateConstant, absolutePath)
	}
	return absolutePath, nil
}
