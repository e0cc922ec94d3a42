package gitpublish

import "fmt"

// PublishError reports the step of the transaction that failed. Step is the
// state the publisher was trying to reach.
type PublishError struct {
	Step   Step
	Branch string
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed at %s (%s): %v", e.Step, e.Step.Description(), e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }
