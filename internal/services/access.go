package services

import (
	"propertyms/internal/common"

	"github.com/sirupsen/logrus"
)

// canManage: admins, or the owner of the building.
func canManage(caller common.Identity, ownerID int64) bool {
	return caller.IsAdmin() || (caller.IsOwner() && caller.UserID == ownerID)
}

// canView additionally lets the tenant see their own records.
func canView(caller common.Identity, ownerID, tenantID int64) bool {
	return canManage(caller, ownerID) || (caller.IsTenant() && caller.UserID == tenantID)
}

// callerFields tags a log entry with who performed the action.
func callerFields(caller common.Identity) logrus.Fields {
	return logrus.Fields{"caller_id": caller.UserID, "caller_role": caller.Role}
}
