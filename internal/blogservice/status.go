package blogservice

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrScheduleRequired  = errors.New("scheduled status requires a scheduled publish time")
)

// statusTransitions is the explicit lifecycle table. Self-transitions are
// treated as no-ops by canTransition and never consult the table.
var statusTransitions = map[BlogStatus][]BlogStatus{
	StatusDraft:     {StatusPublished, StatusScheduled},
	StatusScheduled: {StatusPublished, StatusDraft},
	StatusPublished: {StatusDraft},
}

func canTransition(from, to BlogStatus) bool {
	if from == to {
		return true
	}

	for _, allowed := range statusTransitions[from] {
		if to == allowed {
			return true
		}
	}

	return false
}
