package harness

// CheckResult is the outcome of one literal check.
type CheckResult struct {
	Category string `json:"category"`
	Function string `json:"function"`
	Input    string `json:"input"`
	Expect   string `json:"expect"`
	Got      string `json:"got,omitempty"`
	Pass     bool   `json:"pass"`
	Reason   string `json:"reason,omitempty"`
}

// OracleResult summarizes the oracle cross-check of one category.
type OracleResult struct {
	Category  string `json:"category"`
	Functions int    `json:"functions"`
	Cases     int    `json:"cases"`
	Failures  int    `json:"failures"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every check and oracle case matched.
	Pass bool `json:"pass"`

	Checks []CheckResult  `json:"checks"`
	Oracle []OracleResult `json:"oracle,omitempty"`

	// Errors holds one message per failure. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Checks: []CheckResult{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
