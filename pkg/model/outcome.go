package model

// Outcome is the final categorical tag assigned to a trial during a run.
// Each trial receives exactly one outcome; once assigned, the trial is
// removed from further passes.
type Outcome string

const (
	OutcomeInvalidNotTrial Outcome = "invalid.nottrial"
	OutcomeInvalidIOError  Outcome = "invalid.ioerror"

	OutcomeFinishedOld   Outcome = "finished.old"
	OutcomeFinishedNew   Outcome = "finished.new"
	OutcomeFinishedWrong Outcome = "finished.wrong"

	// OutcomeSkipped marks an unfinished-but-submitted trial passed over in skip mode.
	OutcomeSkipped Outcome = "skipped"

	OutcomeSubmittedNew     Outcome = "submitted.new"
	OutcomeSubmittedResumed Outcome = "submitted.resumed"

	// OutcomeUnfinished marks a trial reported as not finished in check mode.
	OutcomeUnfinished Outcome = "unfinished"

	// OutcomeUnprocessed marks trials left over after the submission pass halted.
	OutcomeUnprocessed Outcome = "unprocessed"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}
