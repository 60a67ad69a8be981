package model

// Mode selects the policy for trials that are marked submitted but are not
// yet finished. There are exactly four modes; anything else is a bug.
type Mode string

const (
	// ModeSafe refuses to submit anything when an unfinished-but-submitted
	// trial is present. This is the default.
	ModeSafe Mode = "safe"

	// ModeCheck only detects and marks finished trials; nothing is submitted.
	ModeCheck Mode = "check"

	// ModeSkip leaves unfinished-but-submitted trials alone and submits the rest.
	ModeSkip Mode = "skip"

	// ModeResume re-submits unfinished-but-submitted trials via new jobs.
	// Only valid when no job is still running in any of the directories.
	ModeResume Mode = "resume"
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeSafe, ModeCheck, ModeSkip, ModeResume:
		return true
	}
	return false
}

// Submits reports whether this mode can reach the submission pass.
func (m Mode) Submits() bool {
	return m != ModeCheck
}
