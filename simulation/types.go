package simulation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CellKey identifies one (k, w, strategy) point of the sweep
type CellKey struct {
	K        int
	W        int
	Strategy string
}

// TrialRecord is the final outcome of a single trial
type TrialRecord struct {
	Trial      int
	Seed       int64
	Infected   int
	Uninfected int
	Wise       int
	Rounds     int
	Converged  bool
}

type CellResult struct {
	Key    CellKey
	Trials []TrialRecord

	MeanInfected float64
	StdInfected  float64
}

func NewCellResult(key CellKey, trials int) *CellResult {
	return &CellResult{
		Key:    key,
		Trials: make([]TrialRecord, 0, trials),
	}
}

func (c *CellResult) accumulate(t TrialRecord) {
	c.Trials = append(c.Trials, t)
}

// finalize computes the population mean and standard deviation of the
// final infected counts
func (c *CellResult) finalize() {
	if len(c.Trials) == 0 {
		c.MeanInfected, c.StdInfected = 0, 0
		return
	}
	xs := make([]float64, len(c.Trials))
	for i, t := range c.Trials {
		xs[i] = float64(t.Infected)
	}
	mean, variance := stat.PopMeanVariance(xs, nil)
	c.MeanInfected = mean
	c.StdInfected = math.Sqrt(variance)
}

// SweepState is the resumable progress of a scenario: every finished cell
// in sweep order, so NextCell always equals len(Cells)
type SweepState struct {
	Cells    []CellResult
	NextCell int
}

func NewSweepState() *SweepState {
	return &SweepState{
		Cells: make([]CellResult, 0),
	}
}

func (s *SweepState) accumulate(c *CellResult) {
	s.Cells = append(s.Cells, *c)
	s.NextCell = len(s.Cells)
}

// validate checks the state against the planned sweep
func (s *SweepState) validate(cells []CellKey) bool {
	if s.NextCell != len(s.Cells) || s.NextCell > len(cells) {
		return false
	}
	for i, c := range s.Cells {
		if c.Key != cells[i] {
			return false
		}
	}
	return true
}
