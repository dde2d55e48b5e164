// Package activity implements the synthetic repository activity loop.
//
// Each iteration writes a batch of random asset files, stages and commits
// them with a digest-derived message, pushes the current branch, then creates
// and pushes a batch of digest-named tags. The loop keeps running through
// individual failures and stops only when the repository loses its branch
// checkout or the configured iteration limit is reached.
package activity
