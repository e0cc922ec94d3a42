// Package git provides git operations via shell commands.
//
// All operations use [os/exec.Command] to call the git CLI directly rather than
// using Go git libraries. Every call passes -C so the process working
// directory is never changed, and GIT_TERMINAL_PROMPT=0 so a rejected token
// fails instead of waiting for input.
//
// # Publishing Operations
//
// The steps of a catalog pull request, in order:
//
//   - [Clone]: Clone the fork into a fresh directory
//   - [CreateBranch]: Create and check out the publish branch
//   - [Add]: Stage written files
//   - [Commit]: Commit with an explicit [Identity]
//   - [Push]: Push the branch to origin with upstream tracking
//
// # Repository Queries
//
//   - [GetCurrentBranch], [GetOriginURL]
//   - [RemoteBranchExists]: Check whether a pushed branch is still on origin
package git
