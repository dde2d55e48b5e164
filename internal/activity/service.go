package activity

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repopulse/internal/gitrepo"
)

const (
	minimumTagsPerIterationConstant            = 1
	maximumTagsPerIterationConstant            = 7
	repositoryPathRequiredMessageConstant      = "repository path must be provided"
	assetDirectoryRequiredMessageConstant      = "asset directory must be provided"
	remoteNameRequiredMessageConstant          = "remote name must be provided"
	repositoryManagerMissingMessageConstant    = "repository manager not configured"
	assetWriterMissingMessageConstant          = "asset writer not configured"
	serviceLoggerMissingMessageConstant        = "logger not configured"
	notARepositoryMessageConstant              = "path is not inside a git work tree"
	remoteNotConfiguredMessageConstant         = "remote is not configured"
	worktreeVerificationFailureTemplate        = "verifying work tree at %s: %w"
	remoteResolutionFailureTemplate            = "resolving remote %s: %w"
	logMessageAssetWriteFailedConstant         = "Asset batch write failed"
	logMessageNothingToCommitConstant          = "No assets written, skipping commit"
	logMessageStagingFailedConstant            = "Staging failed"
	logMessageCommitFailedConstant             = "Commit failed"
	logMessageBranchResolutionFailedConstant   = "Branch resolution failed"
	logMessageDetachedHeadConstant             = "Repository has no checked out branch, stopping activity"
	logMessagePushFailedConstant               = "Branch push failed"
	logMessageTagSeedFailedConstant            = "Tag seed generation failed"
	logMessageTagCreationFailedConstant        = "Tag creation failed"
	logMessageTagPushFailedConstant            = "Tag push failed"
	logMessageIterationCompletedConstant       = "Iteration completed"
	logMessageDirtyWorktreeConstant            = "Work tree has uncommitted changes"
	logMessageRemoteResolvedConstant           = "Remote resolved"
	logFieldRepositoryConstant                 = "repository"
	logFieldAssetDirectoryConstant             = "asset_directory"
	logFieldRemoteConstant                     = "remote"
	logFieldRemoteURLConstant                  = "remote_url"
	logFieldRemoteHostConstant                 = "host"
	logFieldRemoteOwnerConstant                = "owner"
	logFieldRemoteRepositoryConstant           = "remote_repository"
	logFieldBranchConstant                     = "branch"
	logFieldCommitMessageConstant              = "commit_message"
	logFieldWrittenFilesConstant               = "written_files"
	logFieldCreatedTagsConstant                = "created_tags"
	logFieldTagNameConstant                    = "tag"
	logFieldIterationConstant                  = "iteration"
)

// Service validation and preflight errors.
var (
	ErrRepositoryPathRequired          = errors.New(repositoryPathRequiredMessageConstant)
	ErrAssetDirectoryRequired          = errors.New(assetDirectoryRequiredMessageConstant)
	ErrRemoteNameRequired              = errors.New(remoteNameRequiredMessageConstant)
	ErrRepositoryManagerNotConfigured  = errors.New(repositoryManagerMissingMessageConstant)
	ErrAssetWriterNotConfigured        = errors.New(assetWriterMissingMessageConstant)
	ErrLoggerNotConfigured             = errors.New(serviceLoggerMissingMessageConstant)
	ErrNotARepository                  = errors.New(notARepositoryMessageConstant)
	ErrRemoteNotConfigured             = errors.New(remoteNotConfiguredMessageConstant)
)

// GitRepositoryManager enumerates the repository operations the activity loop performs.
type GitRepositoryManager interface {
	IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error)
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	StagePath(executionContext context.Context, repositoryPath string, targetPath string) error
	CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error
	PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	CreateTag(executionContext context.Context, repositoryPath string, tagName string) error
	PushTags(executionContext context.Context, repositoryPath string, remoteName string) error
}

// AssetWriter produces a batch of asset files inside a directory.
type AssetWriter interface {
	WriteBatch(assetDirectoryPath string) ([]string, error)
}

// ServiceDependencies enumerates external collaborators required by the activity service.
type ServiceDependencies struct {
	Logger            *zap.Logger
	RepositoryManager GitRepositoryManager
	AssetWriter       AssetWriter
	Clock             Clock
	RandomGenerator   RandomNumberGenerator
}

// ActivityOptions configures a synthetic activity run.
type ActivityOptions struct {
	RepositoryPath      string
	AssetDirectory      string
	RemoteName          string
	IterationLimit      int
	InterIterationDelay time.Duration
}

// PreflightResult captures the repository state observed before the loop starts.
type PreflightResult struct {
	RemoteURL     string
	BranchName    string
	WorktreeClean bool
}

// IterationOutcome signals whether the loop should keep running.
type IterationOutcome int

// Iteration outcomes.
const (
	IterationOutcomeContinue IterationOutcome = iota
	IterationOutcomeFatal
)

// Service drives the synthetic repository activity loop.
type Service struct {
	logger            *zap.Logger
	repositoryManager GitRepositoryManager
	assetWriter       AssetWriter
	clock             Clock
	randomGenerator   RandomNumberGenerator
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.AssetWriter == nil {
		return nil, ErrAssetWriterNotConfigured
	}
	if dependencies.Clock == nil {
		return nil, ErrClockNotConfigured
	}
	if dependencies.RandomGenerator == nil {
		return nil, ErrRandomSourceNotConfigured
	}
	return &Service{
		logger:            dependencies.Logger,
		repositoryManager: dependencies.RepositoryManager,
		assetWriter:       dependencies.AssetWriter,
		clock:             dependencies.Clock,
		randomGenerator:   dependencies.RandomGenerator,
	}, nil
}

// Preflight verifies the repository path lies inside a git work tree and the
// configured remote exists. Both conditions are required before the loop may
// start.
func (service *Service) Preflight(executionContext context.Context, options ActivityOptions) (PreflightResult, error) {
	sanitizedOptions, optionsError := sanitizeOptions(options)
	if optionsError != nil {
		return PreflightResult{}, optionsError
	}

	insideWorkTree, worktreeError := service.repositoryManager.IsInsideWorkTree(executionContext, sanitizedOptions.RepositoryPath)
	if worktreeError != nil {
		return PreflightResult{}, fmt.Errorf(worktreeVerificationFailureTemplate, sanitizedOptions.RepositoryPath, worktreeError)
	}
	if !insideWorkTree {
		return PreflightResult{}, fmt.Errorf("%w: %s", ErrNotARepository, sanitizedOptions.RepositoryPath)
	}

	remoteURL, remoteError := service.repositoryManager.GetRemoteURL(executionContext, sanitizedOptions.RepositoryPath, sanitizedOptions.RemoteName)
	if remoteError != nil {
		return PreflightResult{}, errors.Join(fmt.Errorf("%w: %s", ErrRemoteNotConfigured, sanitizedOptions.RemoteName), remoteError)
	}
	if len(remoteURL) == 0 {
		return PreflightResult{}, fmt.Errorf("%w: %s", ErrRemoteNotConfigured, sanitizedOptions.RemoteName)
	}

	service.logResolvedRemote(sanitizedOptions, remoteURL)

	branchName, branchError := service.repositoryManager.GetCurrentBranch(executionContext, sanitizedOptions.RepositoryPath)
	if branchError != nil {
		branchName = ""
	}

	worktreeClean, cleanError := service.repositoryManager.CheckCleanWorktree(executionContext, sanitizedOptions.RepositoryPath)
	if cleanError != nil {
		worktreeClean = false
	}
	if !worktreeClean {
		service.logger.Warn(logMessageDirtyWorktreeConstant, zap.String(logFieldRepositoryConstant, sanitizedOptions.RepositoryPath))
	}

	return PreflightResult{RemoteURL: remoteURL, BranchName: branchName, WorktreeClean: worktreeClean}, nil
}

// RunIteration performs a single activity iteration. Failures inside the
// iteration are logged and the loop keeps running; losing the branch checkout
// is the one fatal condition.
func (service *Service) RunIteration(executionContext context.Context, options ActivityOptions) IterationOutcome {
	assetDirectoryPath := filepath.Join(options.RepositoryPath, options.AssetDirectory)

	writtenPaths, writeError := service.assetWriter.WriteBatch(assetDirectoryPath)
	if writeError != nil {
		service.logger.Error(logMessageAssetWriteFailedConstant,
			zap.String(logFieldAssetDirectoryConstant, assetDirectoryPath),
			zap.Error(writeError),
		)
		return IterationOutcomeContinue
	}
	if len(writtenPaths) == 0 {
		service.logger.Warn(logMessageNothingToCommitConstant, zap.String(logFieldAssetDirectoryConstant, assetDirectoryPath))
		return IterationOutcomeContinue
	}

	if stagingError := service.repositoryManager.StagePath(executionContext, options.RepositoryPath, options.AssetDirectory); stagingError != nil {
		service.logger.Error(logMessageStagingFailedConstant,
			zap.String(logFieldRepositoryConstant, options.RepositoryPath),
			zap.Error(stagingError),
		)
		return IterationOutcomeContinue
	}

	commitMessage := CommitMessageForTimestamp(service.clock.Now())
	if commitError := service.repositoryManager.CreateCommit(executionContext, options.RepositoryPath, commitMessage); commitError != nil {
		service.logger.Error(logMessageCommitFailedConstant,
			zap.String(logFieldRepositoryConstant, options.RepositoryPath),
			zap.Error(commitError),
		)
		return IterationOutcomeContinue
	}

	branchName, branchError := service.repositoryManager.GetCurrentBranch(executionContext, options.RepositoryPath)
	if branchError != nil {
		service.logger.Error(logMessageBranchResolutionFailedConstant,
			zap.String(logFieldRepositoryConstant, options.RepositoryPath),
			zap.Error(branchError),
		)
		return IterationOutcomeContinue
	}
	if len(branchName) == 0 {
		service.logger.Error(logMessageDetachedHeadConstant, zap.String(logFieldRepositoryConstant, options.RepositoryPath))
		return IterationOutcomeFatal
	}

	if pushError := service.repositoryManager.PushBranch(executionContext, options.RepositoryPath, options.RemoteName, branchName); pushError != nil {
		service.logger.Error(logMessagePushFailedConstant,
			zap.String(logFieldRepositoryConstant, options.RepositoryPath),
			zap.String(logFieldBranchConstant, branchName),
			zap.String(logFieldRemoteConstant, options.RemoteName),
			zap.Error(pushError),
		)
		return IterationOutcomeContinue
	}

	createdTags := service.createTags(executionContext, options)
	if len(createdTags) > 0 {
		if tagPushError := service.repositoryManager.PushTags(executionContext, options.RepositoryPath, options.RemoteName); tagPushError != nil {
			service.logger.Error(logMessageTagPushFailedConstant,
				zap.String(logFieldRepositoryConstant, options.RepositoryPath),
				zap.String(logFieldRemoteConstant, options.RemoteName),
				zap.Error(tagPushError),
			)
			return IterationOutcomeContinue
		}
	}

	service.logger.Info(logMessageIterationCompletedConstant,
		zap.String(logFieldRepositoryConstant, options.RepositoryPath),
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldCommitMessageConstant, commitMessage),
		zap.Int(logFieldWrittenFilesConstant, len(writtenPaths)),
		zap.Strings(logFieldCreatedTagsConstant, createdTags),
	)
	return IterationOutcomeContinue
}

// Run executes the activity loop until the iteration limit is reached, the
// context is cancelled, or an iteration reports a fatal outcome.
func (service *Service) Run(executionContext context.Context, options ActivityOptions) error {
	sanitizedOptions, optionsError := sanitizeOptions(options)
	if optionsError != nil {
		return optionsError
	}

	completedIterations := 0
	for {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}

		iterationOutcome := service.RunIteration(executionContext, sanitizedOptions)
		if iterationOutcome == IterationOutcomeFatal {
			return nil
		}

		completedIterations++
		service.logger.Debug(logMessageIterationCompletedConstant, zap.Int(logFieldIterationConstant, completedIterations))
		if sanitizedOptions.IterationLimit > 0 && completedIterations >= sanitizedOptions.IterationLimit {
			return nil
		}

		if sanitizedOptions.InterIterationDelay > 0 {
			delayTimer := time.NewTimer(sanitizedOptions.InterIterationDelay)
			select {
			case <-executionContext.Done():
				delayTimer.Stop()
				return executionContext.Err()
			case <-delayTimer.C:
			}
		}
	}
}

func (service *Service) createTags(executionContext context.Context, options ActivityOptions) []string {
	tagCount := minimumTagsPerIterationConstant + service.randomGenerator.IntN(maximumTagsPerIterationConstant-minimumTagsPerIterationConstant+1)
	createdTags := make([]string, 0, tagCount)
	for tagIndex := 0; tagIndex < tagCount; tagIndex++ {
		tagSeed, seedError := RandomTagSeed()
		if seedError != nil {
			service.logger.Warn(logMessageTagSeedFailedConstant, zap.Error(seedError))
			continue
		}
		tagName := TagNameFromDigits(tagSeed)
		if tagError := service.repositoryManager.CreateTag(executionContext, options.RepositoryPath, tagName); tagError != nil {
			service.logger.Warn(logMessageTagCreationFailedConstant,
				zap.String(logFieldTagNameConstant, tagName),
				zap.Error(tagError),
			)
			continue
		}
		createdTags = append(createdTags, tagName)
	}
	return createdTags
}

func (service *Service) logResolvedRemote(options ActivityOptions, remoteURL string) {
	remoteFields := []zap.Field{
		zap.String(logFieldRemoteConstant, options.RemoteName),
		zap.String(logFieldRemoteURLConstant, remoteURL),
	}
	if parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL); parseError == nil {
		remoteFields = append(remoteFields,
			zap.String(logFieldRemoteHostConstant, parsedRemote.Host),
			zap.String(logFieldRemoteOwnerConstant, parsedRemote.Owner),
			zap.String(logFieldRemoteRepositoryConstant, parsedRemote.Repository),
		)
	}
	service.logger.Info(logMessageRemoteResolvedConstant, remoteFields...)
}

func sanitizeOptions(options ActivityOptions) (ActivityOptions, error) {
	sanitized := options
	sanitized.RepositoryPath = strings.TrimSpace(options.RepositoryPath)
	sanitized.AssetDirectory = strings.TrimSpace(options.AssetDirectory)
	sanitized.RemoteName = strings.TrimSpace(options.RemoteName)

	if len(sanitized.RepositoryPath) == 0 {
		return ActivityOptions{}, ErrRepositoryPathRequired
	}
	if len(sanitized.AssetDirectory) == 0 {
		return ActivityOptions{}, ErrAssetDirectoryRequired
	}
	if len(sanitized.RemoteName) == 0 {
		return ActivityOptions{}, ErrRemoteNameRequired
	}
	if sanitized.IterationLimit < 0 {
		sanitized.IterationLimit = 0
	}
	if sanitized.InterIterationDelay < 0 {
		sanitized.InterIterationDelay = 0
	}
	return sanitized, nil
}
