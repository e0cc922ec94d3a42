package gitpublish

// Step is a state of the publish transaction.
type Step string

const (
	StepUnforked     Step = "UNFORKED"
	StepForked       Step = "FORKED"
	StepCloned       Step = "CLONED"
	StepBranched     Step = "BRANCHED"
	StepFilesWritten Step = "FILES_WRITTEN"
	StepCommitted    Step = "COMMITTED"
	StepPushed       Step = "PUSHED"
	StepPROpened     Step = "PR_OPENED"
	StepCleanedUp    Step = "CLEANED_UP"
)

// Steps lists the states in transaction order.
var Steps = []Step{
	StepUnforked,
	StepForked,
	StepCloned,
	StepBranched,
	StepFilesWritten,
	StepCommitted,
	StepPushed,
	StepPROpened,
	StepCleanedUp,
}

// Description returns what the transaction does to reach s.
func (s Step) Description() string {
	switch s {
	case StepUnforked:
		return "Starting"
	case StepForked:
		return "Forking repository"
	case StepCloned:
		return "Cloning fork"
	case StepBranched:
		return "Creating branch"
	case StepFilesWritten:
		return "Writing files"
	case StepCommitted:
		return "Committing"
	case StepPushed:
		return "Pushing branch"
	case StepPROpened:
		return "Opening pull request"
	case StepCleanedUp:
		return "Cleaning up"
	default:
		return string(s)
	}
}

// OrphansBranch reports whether a transaction that failed while reaching s
// left a pushed branch on the fork without a pull request.
func (s Step) OrphansBranch() bool {
	return s == StepPROpened
}
