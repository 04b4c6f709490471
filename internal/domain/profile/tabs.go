// Package profile orchestrates the per-patient dashboard: which tab is
// active, which data categories are loaded, and how the pieces combine into
// one snapshot for presentation.
package profile

import "fmt"

// Tab identifies one dashboard view for a patient.
type Tab string

const (
	TabAIPredictions  Tab = "AI_PREDICTIONS"
	TabDialysis       Tab = "DIALYSIS"
	TabInvestigations Tab = "INVESTIGATIONS"
	TabTrend          Tab = "TREND"
	TabDecisions      Tab = "DECISIONS"
)

// Role selects which tab set a viewer gets.
type Role string

const (
	RoleDoctor Role = "doctor"
	RoleNurse  Role = "nurse"
)

// ParseTab validates a wire value against the known tab set.
func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabAIPredictions, TabDialysis, TabInvestigations, TabTrend, TabDecisions:
		return Tab(s), nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// ParseRole validates a wire value, defaulting empty input to the doctor view.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDoctor, RoleNurse:
		return Role(s), nil
	case "":
		return RoleDoctor, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// TabsForRole lists the tabs a role may open, in display order. Nurses do not
// see predictions or clinical decisions.
func TabsForRole(role Role) []Tab {
	if role == RoleNurse {
		return []Tab{TabDialysis, TabInvestigations, TabTrend}
	}
	return []Tab{TabAIPredictions, TabDialysis, TabInvestigations, TabTrend, TabDecisions}
}

// AllowedForRole reports whether the role may open the tab.
func AllowedForRole(tab Tab, role Role) bool {
	for _, t := range TabsForRole(role) {
		if t == tab {
			return true
		}
	}
	return false
}
