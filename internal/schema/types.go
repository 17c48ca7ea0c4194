package schema

import "time"

// Outcome is the derived status of one challenge attempt
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	OutcomePartial Outcome = "partial"
	OutcomeNotRun  Outcome = "not_run"
)

// Valid reports whether o is one of the four known outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailed, OutcomePartial, OutcomeNotRun:
		return true
	}
	return false
}

// ChallengeResult is one row of the report
type ChallengeResult struct {
	Challenge     string  `json:"challenge"`
	Vulnerability string  `json:"vulnerability"`
	Status        Outcome `json:"status"`
	Flag          string  `json:"flag,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	// Source tells where Status came from: "record", "log" or "none".
	Source string `json:"source"`
}

// Summary holds the aggregate counts of a report
type Summary struct {
	Total       int `json:"total"`
	Success     int `json:"success"`
	Failed      int `json:"failed"`
	Partial     int `json:"partial"`
	NotRun      int `json:"not_run"`
	FlagsFound  int `json:"flags_found"`
	SuccessRate int `json:"success_rate"`
}

// APIStatus is the optional reachability probe of the target API
type APIStatus struct {
	Probed     bool   `json:"probed"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Report groups everything rendered for one run
type Report struct {
	BaseURL     string            `json:"base_url"`
	GeneratedAt time.Time         `json:"generated_at"`
	Summary     Summary           `json:"summary"`
	API         APIStatus         `json:"api"`
	Challenges  []ChallengeResult `json:"challenges"`
}

// OutcomeRecord is the structured result an exploit writes next to its log
type OutcomeRecord struct {
	Challenge  string    `json:"challenge"`
	Status     Outcome   `json:"status"`
	Flag       string    `json:"flag,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
