package identity

// Role is the job function a profile holds on the estate
type Role string

const (
	RoleKraniPanen    Role = "krani_panen"    // Field clerk recording harvests
	RoleKraniBuah     Role = "krani_buah"     // Fruit clerk batching deliveries
	RoleMandor        Role = "mandor"         // Gang foreman
	RoleAsisten       Role = "asisten"        // Division assistant
	RoleEstateManager Role = "estate_manager" // Estate manager
	RoleRegionalGM    Role = "regional_gm"    // Regional general manager
)

// AllRoles returns every known role
func AllRoles() []Role {
	return []Role{
		RoleKraniPanen,
		RoleKraniBuah,
		RoleMandor,
		RoleAsisten,
		RoleEstateManager,
		RoleRegionalGM,
	}
}

// IsValid checks if the Role is a valid value
func (r Role) IsValid() bool {
	switch r {
	case RoleKraniPanen, RoleKraniBuah, RoleMandor, RoleAsisten, RoleEstateManager, RoleRegionalGM:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the label shown on the profile screen
func (r Role) DisplayName() string {
	switch r {
	case RoleKraniPanen:
		return "Krani Panen"
	case RoleKraniBuah:
		return "Krani Buah"
	case RoleMandor:
		return "Mandor"
	case RoleAsisten:
		return "Asisten"
	case RoleEstateManager:
		return "Estate Manager"
	case RoleRegionalGM:
		return "Regional GM"
	}
	return string(r)
}

// IsEstateWide reports whether the role sees every division regardless of its own assignment.
func (r Role) IsEstateWide() bool {
	return r == RoleEstateManager || r == RoleRegionalGM
}

// Capability is a screen tag a role can open
type Capability string

const (
	CapIndex      Capability = "index"
	CapKraniBuah  Capability = "krani-buah"
	CapMandor     Capability = "mandor"
	CapApproval   Capability = "approval"
	CapAsisten    Capability = "asisten"
	CapMonitoring Capability = "monitoring"
	CapEstate     Capability = "estate"
	CapReports    Capability = "reports"
	CapRegional   Capability = "regional"
	CapAnalytics  Capability = "analytics"
	CapProfile    Capability = "profile"
)

var roleCapabilities = map[Role][]Capability{
	RoleKraniPanen:    {CapIndex, CapProfile},
	RoleKraniBuah:     {CapKraniBuah, CapProfile},
	RoleMandor:        {CapMandor, CapApproval, CapProfile},
	RoleAsisten:       {CapAsisten, CapMonitoring, CapProfile},
	RoleEstateManager: {CapEstate, CapReports, CapMonitoring, CapProfile},
	RoleRegionalGM:    {CapRegional, CapReports, CapAnalytics, CapProfile},
}

// Capabilities returns the screens the role can open. Unknown roles get none.
func (r Role) Capabilities() []Capability {
	caps := roleCapabilities[r]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// HasCapability reports whether the role can open the given screen
func (r Role) HasCapability(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

// Action is a state-changing or read operation guarded by role
type Action string

const (
	ActionInputHarvest  Action = "input_harvest"
	ActionApprove       Action = "approve"
	ActionCreateSpb     Action = "create_spb"
	ActionShipSpb       Action = "ship_spb"
	ActionViewReports   Action = "view_reports"
	ActionExportReports Action = "export_reports"
)

var approvers = []Role{RoleMandor, RoleAsisten, RoleEstateManager, RoleRegionalGM}

var actionRoles = map[Action][]Role{
	ActionInputHarvest:  {RoleKraniPanen},
	ActionApprove:       approvers,
	ActionCreateSpb:     {RoleKraniBuah, RoleAsisten, RoleEstateManager},
	ActionShipSpb:       {RoleKraniBuah, RoleAsisten, RoleEstateManager},
	ActionViewReports:   approvers,
	ActionExportReports: {RoleAsisten, RoleEstateManager, RoleRegionalGM},
}

// Can reports whether the role may perform action
func (r Role) Can(action Action) bool {
	for _, allowed := range actionRoles[action] {
		if allowed == r {
			return true
		}
	}
	return false
}

// Permissions lists every action the role may perform, in a stable order
func (r Role) Permissions() []Action {
	order := []Action{
		ActionInputHarvest,
		ActionApprove,
		ActionCreateSpb,
		ActionShipSpb,
		ActionViewReports,
		ActionExportReports,
	}
	out := make([]Action, 0, len(order))
	for _, a := range order {
		if r.Can(a) {
			out = append(out, a)
		}
	}
	return out
}
