package search

import "time"

type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeExhausted
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the single outcome of a search. A cancelled search keeps the
// attempts and time spent so far.
type Result struct {
	Found     bool
	Plaintext string
	Attempts  uint64
	Elapsed   time.Duration
	Rate      float64
	Outcome   Outcome
}

func newResult(outcome Outcome, plaintext string, attempts uint64, elapsed time.Duration) *Result {
	return &Result{
		Found:     outcome == OutcomeFound,
		Plaintext: plaintext,
		Attempts:  attempts,
		Elapsed:   elapsed,
		Rate:      Rate(attempts, elapsed.Milliseconds()),
		Outcome:   outcome,
	}
}

func (r *Result) ElapsedMillis() int64 {
	return r.Elapsed.Milliseconds()
}

// Rate returns checks per second, or 0 when no whole millisecond elapsed.
func Rate(attempts uint64, elapsedMillis int64) float64 {
	if elapsedMillis <= 0 {
		return 0
	}
	return float64(attempts) / (float64(elapsedMillis) / 1000)
}

// Progress is a periodic snapshot of a running search.
type Progress struct {
	Attempts uint64
	Current  string
	Rate     float64
}

type ProgressFunc func(p Progress)
