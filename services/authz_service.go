package services

import (
	"github.com/pocketbase/pocketbase/daos"

	"rehearsal-system/internal/status"
	"rehearsal-system/models"
)

// AuthzService decides whether a caller may manage resources that belong to
// an organization. It reads membership facts and has no side effects.
type AuthzService struct {
	dao *daos.Dao
}

func NewAuthzService(dao *daos.Dao) *AuthzService {
	return &AuthzService{dao: dao}
}

// CanManage reports whether the caller may mutate resources of the given
// organization. Site admins pass unconditionally.
func (s *AuthzService) CanManage(callerID string, callerRole models.UserRole, organizationID string) (bool, error) {
	if callerRole == models.UserRoleAdmin {
		return true, nil
	}

	org, err := s.loadOrganization(callerID, organizationID)
	if err != nil {
		return false, err
	}
	return CallerCanManage(org, callerID), nil
}

// RequireManage is CanManage folded into the error domain: it returns
// status.ErrUnauthorized when the caller lacks rights.
func (s *AuthzService) RequireManage(callerID string, callerRole models.UserRole, organizationID string) error {
	ok, err := s.CanManage(callerID, callerRole, organizationID)
	if err != nil {
		return err
	}
	if !ok {
		return status.ErrUnauthorized
	}
	return nil
}

func (s *AuthzService) loadOrganization(callerID, organizationID string) (*models.Organization, error) {
	record, err := s.dao.FindRecordById(collectionOrganizations, organizationID)
	if err != nil {
		return nil, status.ErrOrganizationNotFound
	}
	return decodeOrganization(record)
}

// CallerCanManage is the pure membership predicate: organization owner, or a
// member holding the OWNER or ADMIN organization role.
func CallerCanManage(org *models.Organization, callerID string) bool {
	if org.OwnerID == callerID {
		return true
	}
	for _, m := range org.Members {
		if m.UserID != callerID {
			continue
		}
		if m.Role == models.OrgRoleOwner || m.Role == models.OrgRoleAdmin {
			return true
		}
	}
	return false
}
