package authorization

type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleDistributor UserRole = "distributor"
	RoleLearner     UserRole = "learner"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDistributor, RoleLearner:
		return true
	}
	return false
}

// ParseUserRole falls back to the least privileged role for unknown input.
func ParseUserRole(s string) UserRole {
	role := UserRole(s)
	if role.IsValid() {
		return role
	}
	return RoleLearner
}

// Capability names a protected licensing action. Capabilities are the casbin
// objects; the action is always "write" except for reads of the catalog.
type Capability string

const (
	CapAllocateLicences     Capability = "licensing:allocatelicences"
	CapDistributeLicences   Capability = "licensing:distributelicences"
	CapManageProductSets    Capability = "licensing:manageproductsets"
	CapManageTargetSets     Capability = "licensing:managetargetsets"
	CapRunReconciliation    Capability = "licensing:runreconciliation"
	CapReceiveNotifications Capability = "licensing:receiveenrolnotification"
)

const (
	ActionWrite = "write"
	ActionRead  = "read"
)

// Enforcer answers capability checks for a subject (a role name).
type Enforcer interface {
	Enforce(subject string, capability Capability, action string) (bool, error)
}
