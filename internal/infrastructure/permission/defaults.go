package permission

import (
	"fmt"

	"github.com/orris-inc/licensing/internal/shared/authorization"
)

// defaultPolicies grants distributors the distribution capabilities and
// leaves the allocation side to administrators.
var defaultPolicies = []struct {
	role       authorization.UserRole
	capability authorization.Capability
	action     string
}{
	{authorization.RoleDistributor, authorization.CapDistributeLicences, "*"},
	{authorization.RoleDistributor, authorization.CapReceiveNotifications, authorization.ActionRead},
	{authorization.RoleAdmin, authorization.CapAllocateLicences, "*"},
	{authorization.RoleAdmin, authorization.CapManageProductSets, "*"},
	{authorization.RoleAdmin, authorization.CapManageTargetSets, "*"},
	{authorization.RoleAdmin, authorization.CapRunReconciliation, "*"},
}

// InitLicensingPermissions seeds the default policies. Existing rules are
// left untouched, so it is safe to run on every start.
func (e *Enforcer) InitLicensingPermissions() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range defaultPolicies {
		if _, err := e.enforcer.AddPolicy(string(p.role), string(p.capability), p.action); err != nil {
			e.logger.Errorw("failed to add licensing permission policy",
				"error", err,
				"role", p.role,
				"capability", p.capability,
				"action", p.action)
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", p.role, p.capability, p.action, err)
		}
	}

	// admin inherits every distributor capability
	if _, err := e.enforcer.AddGroupingPolicy(string(authorization.RoleAdmin), string(authorization.RoleDistributor)); err != nil {
		return fmt.Errorf("failed to add admin role inheritance: %w", err)
	}

	e.logger.Info("licensing permissions initialized successfully")
	return nil
}
