// Package authz maps roles to the views and operations they may reach.
// The policy is a fixed pure mapping: both view composition and the
// mutating operations themselves consult it, so a client that bypasses
// the view layer still hits the same checks.
package authz

import "github.com/oceanguard/hazard-server/internal/models"

// View identifiers, matching the client navigation tabs.
const (
	ViewDashboard        = "dashboard"
	ViewReportSubmission = "report-submission"
	ViewMap              = "map"
	ViewAnalytics        = "analytics"
	ViewUsers            = "users"
)

// Operation identifiers for mutating repository calls.
const (
	OpSubmitReport     = "submit_report"
	OpTransitionStatus = "transition_status"
)

var viewsByRole = map[models.Role][]string{
	models.RoleCitizen:  {ViewDashboard, ViewReportSubmission, ViewMap},
	models.RoleOfficial: {ViewDashboard, ViewReportSubmission, ViewMap, ViewAnalytics, ViewUsers},
	models.RoleAnalyst:  {ViewDashboard, ViewReportSubmission, ViewMap, ViewAnalytics, ViewUsers},
}

var opsByRole = map[models.Role][]string{
	models.RoleCitizen:  {OpSubmitReport},
	models.RoleOfficial: {OpSubmitReport, OpTransitionStatus},
	models.RoleAnalyst:  {OpSubmitReport, OpTransitionStatus},
}

// IsViewAllowed reports whether role may open the given view.
func IsViewAllowed(role models.Role, view string) bool {
	return contains(viewsByRole[role], view)
}

// IsOperationAllowed reports whether role may perform the given operation.
func IsOperationAllowed(role models.Role, op string) bool {
	return contains(opsByRole[role], op)
}

// AllowedViews returns the views reachable by role. The returned slice
// is a copy; callers may not mutate the policy.
func AllowedViews(role models.Role) []string {
	views := viewsByRole[role]
	out := make([]string, len(views))
	copy(out, views)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
