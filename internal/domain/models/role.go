package models

// Role is the session role derived from the entered password.
type Role string

const (
	RoleGuest    Role = "guest"
	RoleSubAdmin Role = "subadmin"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleGuest, RoleSubAdmin, RoleAdmin:
		return true
	}
	return false
}

// Capabilities is what a role may see and do.
type Capabilities struct {
	ViewDashboard bool `json:"view_dashboard"`
	ViewProfit    bool `json:"view_profit"`
	CreateRecords bool `json:"create_records"`
	EditRate      bool `json:"edit_rate"`
	EditSettings  bool `json:"edit_settings"`
	DeleteRecords bool `json:"delete_records"`
}

// Settings is the persisted settings document.
type Settings struct {
	Rates            RateTable `json:"rates"`
	AdminPassword    string    `json:"-"`
	SubAdminPassword string    `json:"-"`
}
