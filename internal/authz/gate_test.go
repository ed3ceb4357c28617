package authz

import (
	"testing"

	"github.com/oceanguard/hazard-server/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestViewPolicy(t *testing.T) {
	tests := []struct {
		role    models.Role
		view    string
		allowed bool
	}{
		{models.RoleCitizen, ViewDashboard, true},
		{models.RoleCitizen, ViewReportSubmission, true},
		{models.RoleCitizen, ViewMap, true},
		{models.RoleCitizen, ViewAnalytics, false},
		{models.RoleCitizen, ViewUsers, false},
		{models.RoleOfficial, ViewAnalytics, true},
		{models.RoleOfficial, ViewUsers, true},
		{models.RoleAnalyst, ViewAnalytics, true},
		{models.RoleAnalyst, ViewUsers, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, IsViewAllowed(tt.role, tt.view),
			"%s / %s", tt.role, tt.view)
	}
}

func TestOperationPolicy(t *testing.T) {
	assert.True(t, IsOperationAllowed(models.RoleCitizen, OpSubmitReport))
	assert.False(t, IsOperationAllowed(models.RoleCitizen, OpTransitionStatus))

	for _, role := range []models.Role{models.RoleOfficial, models.RoleAnalyst} {
		assert.True(t, IsOperationAllowed(role, OpSubmitReport))
		assert.True(t, IsOperationAllowed(role, OpTransitionStatus))
	}
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	unknown := models.Role("superuser")
	assert.False(t, IsViewAllowed(unknown, ViewDashboard))
	assert.False(t, IsOperationAllowed(unknown, OpSubmitReport))
	assert.Empty(t, AllowedViews(unknown))
}

func TestAllowedViewsIsACopy(t *testing.T) {
	views := AllowedViews(models.RoleCitizen)
	for i := range views {
		views[i] = "tampered"
	}
	assert.True(t, IsViewAllowed(models.RoleCitizen, ViewDashboard))
}
