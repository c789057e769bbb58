package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: the engines agree and every
	// expectation and assertion holds.
	Pass bool `json:"pass"`

	// Columns are the output columns of the compiled pattern.
	Columns []string `json:"columns"`

	// Rows are the result row keys, sorted. Every engine produced them.
	Rows [][]string `json:"rows"`

	// ErrorCode is set when the pattern or a filter was rejected.
	ErrorCode string `json:"error_code,omitempty"`

	// Plan is the rendered logical plan.
	Plan string `json:"plan,omitempty"`

	// Engines lists the engines the scenario ran on.
	Engines []string `json:"engines,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Rows:   [][]string{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
