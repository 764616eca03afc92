// Package auth maps passwords to roles and roles to capabilities.
package auth

import "github.com/mamadbah2/eggledger/internal/domain/models"

// Action names a gated operation.
type Action string

const (
	ActionViewDashboard Action = "view_dashboard"
	ActionViewHistory   Action = "view_history"
	ActionCreateRecord  Action = "create_record"
	ActionOverrideRate  Action = "override_rate"
	ActionEditSettings  Action = "edit_settings"
	ActionDeleteRecord  Action = "delete_record"
	ActionRunReport     Action = "run_report"
)

// CapabilitiesFor returns what role may see and do. Unknown roles get nothing.
func CapabilitiesFor(role models.Role) models.Capabilities {
	switch role {
	case models.RoleAdmin:
		return models.Capabilities{
			ViewDashboard: true,
			ViewProfit:    true,
			CreateRecords: true,
			EditRate:      true,
			EditSettings:  true,
			DeleteRecords: true,
		}
	case models.RoleSubAdmin:
		return models.Capabilities{
			ViewDashboard: true,
			CreateRecords: true,
		}
	default:
		return models.Capabilities{}
	}
}

// Can reports whether role is allowed to perform action.
func Can(role models.Role, action Action) bool {
	caps := CapabilitiesFor(role)
	switch action {
	case ActionViewDashboard, ActionViewHistory:
		return caps.ViewDashboard
	case ActionCreateRecord:
		return caps.CreateRecords
	case ActionOverrideRate:
		return caps.EditRate
	case ActionEditSettings, ActionRunReport:
		return caps.EditSettings
	case ActionDeleteRecord:
		return caps.DeleteRecords
	default:
		return false
	}
}

// Authorize returns an AuthorizationError when role may not perform action.
func Authorize(role models.Role, action Action) error {
	if !Can(role, action) {
		return &AuthorizationError{Role: role, Action: action}
	}
	return nil
}

// MaskSnapshot shapes a snapshot for role, hiding profit when not allowed.
func MaskSnapshot(role models.Role, snap models.LedgerSnapshot) (models.DashboardView, error) {
	if err := Authorize(role, ActionViewDashboard); err != nil {
		return models.DashboardView{}, err
	}

	view := models.DashboardView{
		Stock:        snap.Stock,
		Cash:         snap.Cash,
		CustomerDue:  snap.CustomerDue,
		SupplierDue:  snap.SupplierDue,
		TodaySales:   snap.TodaySales,
		TodayExpense: snap.TodayExpense,
		ProfitMasked: true,
	}
	if CapabilitiesFor(role).ViewProfit {
		profit := snap.TodayProfit
		view.TodayProfit = &profit
		view.ProfitMasked = false
	}
	return view, nil
}
