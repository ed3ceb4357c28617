package reports

import (
	"testing"

	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.ReportStatus
		to      models.ReportStatus
		wantErr bool
	}{
		{"adjacent forward", models.StatusPending, models.StatusVerified, false},
		{"forward jump skipping stages", models.StatusPending, models.StatusResolved, false},
		{"verified to responded", models.StatusVerified, models.StatusResponded, false},
		{"backward", models.StatusResolved, models.StatusVerified, true},
		{"no-op transition", models.StatusVerified, models.StatusVerified, true},
		{"backward from responded", models.StatusResponded, models.StatusPending, true},
		{"unknown target", models.StatusPending, models.ReportStatus("archived"), true},
		{"unknown source", models.ReportStatus(""), models.StatusVerified, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
