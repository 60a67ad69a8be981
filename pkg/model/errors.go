package model

import "fmt"

// UnsafeTrialsError is returned by the engine when safe mode finds trials
// that are marked submitted but not finished. No submission has occurred
// when this error is returned.
type UnsafeTrialsError struct {
	Count int
}

func (e *UnsafeTrialsError) Error() string {
	return fmt.Sprintf("%d incomplete trial(s) found; cannot continue in safe mode", e.Count)
}
