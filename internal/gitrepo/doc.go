// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for the repository-level operations the
// activity loop performs (worktree detection, branch resolution, staging,
// committing, pushing commits and tags) along with a structured remote URL
// parser used to report where synthetic activity is pushed.
package gitrepo
