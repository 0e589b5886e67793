package models

import "fmt"

// TransitionPolicy decides which status changes an order may go through.
type TransitionPolicy interface {
	Name() string
	Allows(from, to StatusID) bool
}

const (
	PolicyOpen   = "open"
	PolicyStrict = "strict"
)

// OpenPolicy allows any known status to be written from any other status.
type OpenPolicy struct{}

func (OpenPolicy) Name() string { return PolicyOpen }

func (OpenPolicy) Allows(from, to StatusID) bool {
	return to.Valid()
}

// StrictPolicy enforces the transition table below. Cancelled is reachable from every
// status and is the only terminal one; an Issued order can still be cancelled.
type StrictPolicy struct{}

var strictTransitions = map[StatusID][]StatusID{
	StatusAccepted:    {StatusDiagnosis, StatusCancelled},
	StatusDiagnosis:   {StatusNegotiation, StatusInRepair, StatusCancelled},
	StatusNegotiation: {StatusInRepair, StatusCancelled},
	StatusInRepair:    {StatusReady, StatusCancelled},
	StatusReady:       {StatusInRepair, StatusIssued, StatusCancelled},
	StatusIssued:      {StatusCancelled},
	StatusCancelled:   {},
}

func (StrictPolicy) Name() string { return PolicyStrict }

func (StrictPolicy) Allows(from, to StatusID) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s under the strict table
func (StrictPolicy) NextStatuses(s StatusID) []StatusID {
	return strictTransitions[s]
}

// PolicyByName resolves a configured policy name
func PolicyByName(name string) (TransitionPolicy, error) {
	switch name {
	case "", PolicyOpen:
		return OpenPolicy{}, nil
	case PolicyStrict:
		return StrictPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown order transition policy %q", name)
}
