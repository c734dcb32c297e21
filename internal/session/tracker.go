package session

import "fmt"

// Tracker counts answers of one quiz run
type Tracker struct {
	Target  int
	Asked   int
	Correct int
}

// NewTracker creates a tracker for a run of target questions
func NewTracker(target int) Tracker {
	return Tracker{Target: target}
}

// Record registers one answer and reports whether the run is complete.
func (t *Tracker) Record(correct bool) bool {
	t.Asked++
	if correct {
		t.Correct++
	}
	return t.Done()
}

// Done reports whether every question of the run was answered
func (t Tracker) Done() bool {
	return t.Asked >= t.Target
}

// Next returns the 1-based number of the question to ask next
func (t Tracker) Next() int {
	return t.Asked + 1
}

// Summary renders the score as "correct/target"
func (t Tracker) Summary() string {
	return fmt.Sprintf("%d/%d", t.Correct, t.Target)
}
