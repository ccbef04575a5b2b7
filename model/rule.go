package model

import "github.com/cockroachdb/errors"

// UpdateRule decides the next state of a non-Wise node from the votes of
// its neighbors in the current snapshot. Wise neighbors vote Uninfected.
type UpdateRule interface {
	Next(cur State, infectedVotes int, uninfectedVotes int) State
	Name() string
}

// MajorityRule is plain binary response dynamics: adopt the strict
// majority, keep the current state on a tie.
type MajorityRule struct{}

func (MajorityRule) Next(cur State, infectedVotes int, uninfectedVotes int) State {
	switch {
	case infectedVotes > uninfectedVotes:
		return Infected
	case uninfectedVotes > infectedVotes:
		return Uninfected
	}
	return cur
}

func (MajorityRule) Name() string {
	return RuleMajority
}

// ThresholdRule infects a node once the infected share of its neighbors
// reaches Q. Infection is never reverted.
type ThresholdRule struct {
	Q float64
}

func (r ThresholdRule) Next(cur State, infectedVotes int, uninfectedVotes int) State {
	total := infectedVotes + uninfectedVotes
	if total == 0 {
		return cur
	}
	if float64(infectedVotes)/float64(total) >= r.Q {
		return Infected
	}
	return cur
}

func (ThresholdRule) Name() string {
	return RuleThreshold
}

const (
	RuleMajority  = "Majority"
	RuleThreshold = "Threshold"
)

// NewUpdateRule resolves a rule by name; q is only read by the threshold rule
func NewUpdateRule(name string, q float64) (UpdateRule, error) {
	switch name {
	case "", RuleMajority:
		return MajorityRule{}, nil
	case RuleThreshold:
		if q <= 0 || q > 1 {
			return nil, errors.Wrapf(ErrInvalidParameter, "threshold q=%v outside (0, 1]", q)
		}
		return ThresholdRule{Q: q}, nil
	}
	return nil, errors.Wrapf(ErrInvalidParameter, "unknown update rule %q", name)
}
