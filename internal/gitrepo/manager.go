package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/repopulse/internal/execshell"
)

const (
	gitRevParseSubcommandConstant        = "rev-parse"
	gitWorkTreeFlagConstant              = "--is-inside-work-tree"
	gitAbbrevRefFlagConstant             = "--abbrev-ref"
	gitHeadReferenceConstant             = "HEAD"
	gitRemoteSubcommandConstant          = "remote"
	gitRemoteGetURLSubcommandConstant    = "get-url"
	gitStatusSubcommandConstant          = "status"
	gitStatusPorcelainFlagConstant       = "--porcelain"
	gitAddSubcommandConstant             = "add"
	gitAddAllFlagConstant                = "-A"
	gitCommitSubcommandConstant          = "commit"
	gitMessageFlagConstant               = "-m"
	gitPushSubcommandConstant            = "push"
	gitTagsFlagConstant                  = "--tags"
	gitTagSubcommandConstant             = "tag"
	trueOutputConstant                   = "true"
	executorNotConfiguredMessageConstant = "git executor not configured"
)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the repository manager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// RepositoryManager performs repository-level git operations through a GitExecutor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsInsideWorkTree reports whether the repository path lies within a git working tree.
func (manager *RepositoryManager) IsInsideWorkTree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitWorkTreeFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput) == trueOutputConstant, nil
}

// GetRemoteURL resolves the URL registered for the named remote.
func (manager *RepositoryManager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitRemoteGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// GetCurrentBranch resolves the checked-out branch name, returning an empty string for a detached HEAD.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}

	branchName := strings.TrimSpace(executionResult.StandardOutput)
	if strings.EqualFold(branchName, gitHeadReferenceConstant) {
		return "", nil
	}
	return branchName, nil
}

// CheckCleanWorktree reports whether the working tree holds no pending changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// StagePath adds the target path's contents to the pending change set.
func (manager *RepositoryManager) StagePath(executionContext context.Context, repositoryPath string, targetPath string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitAddSubcommandConstant, gitAddAllFlagConstant, targetPath},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// CreateCommit records the staged changes with the supplied message.
func (manager *RepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCommitSubcommandConstant, gitMessageFlagConstant, commitMessage},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// PushBranch pushes the named branch to the named remote.
func (manager *RepositoryManager) PushBranch(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, remoteName, branchName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// CreateTag creates a lightweight local tag with the supplied name.
func (manager *RepositoryManager) CreateTag(executionContext context.Context, repositoryPath string, tagName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitTagSubcommandConstant, tagName},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}

// PushTags pushes every local tag to the named remote in one call.
func (manager *RepositoryManager) PushTags(executionContext context.Context, repositoryPath string, remoteName string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, remoteName, gitTagsFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}
