// Package gitpublish turns a set of catalog documents into a pull request.
//
// [Publisher.Publish] runs one strictly sequential transaction:
//
//	UNFORKED → FORKED → CLONED → BRANCHED → FILES_WRITTEN → COMMITTED → PUSHED → PR_OPENED → CLEANED_UP
//
// The fork is cloned into a fresh directory under the configured work
// directory, named by a random UUID, so publishes in one process never share
// a working copy. The directory is removed on every exit path.
//
// A failure in any step returns a [*PublishError] naming the step. Nothing
// is rolled back on the remote: a branch pushed before the pull request
// failed stays on the fork.
package gitpublish
