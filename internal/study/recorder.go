package study

import "github.com/xiaot623/gogo/foodshare/internal/domain"

// Sequence hands out increasing numbers scoped to its owner.
type Sequence struct {
	next int
}

// Next returns the next number, starting at 1.
func (s *Sequence) Next() int {
	s.next++
	return s.next
}

// Recorder accumulates completed trial results. It is append-only.
type Recorder struct {
	seq     Sequence
	results []domain.TrialResult
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append stores res in completion order and returns it with its sequence number.
func (r *Recorder) Append(res domain.TrialResult) domain.TrialResult {
	res.Seq = r.seq.Next()
	r.results = append(r.results, res)
	return res
}

// Results returns a copy of the recorded results.
func (r *Recorder) Results() []domain.TrialResult {
	out := make([]domain.TrialResult, len(r.results))
	copy(out, r.results)
	return out
}

// Len returns the number of recorded results.
func (r *Recorder) Len() int {
	return len(r.results)
}
