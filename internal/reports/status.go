package reports

import (
	"fmt"

	"github.com/oceanguard/hazard-server/internal/models"
)

// statusRank fixes the lifecycle ordering. A transition is accepted only
// when the target ranks strictly later than the current status; skipping
// intermediate stages forward is allowed (pending → resolved is legal),
// moving backward or standing still is not.
var statusRank = map[models.ReportStatus]int{
	models.StatusPending:   0,
	models.StatusVerified:  1,
	models.StatusResponded: 2,
	models.StatusResolved:  3,
}

// ValidateTransition returns ErrInvalidTransition unless moving from
// `from` to `to` advances the lifecycle.
func ValidateTransition(from, to models.ReportStatus) error {
	fromRank, ok := statusRank[from]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	toRank, ok := statusRank[to]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if toRank <= fromRank {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return nil
}
