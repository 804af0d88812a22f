package models

type OrganizationRole string

const (
	OrgRoleOwner  OrganizationRole = "OWNER"
	OrgRoleAdmin  OrganizationRole = "ADMIN"
	OrgRoleMember OrganizationRole = "MEMBER"
)

// UserRole is the site-wide role carried by the authenticated session.
type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

type OrganizationMember struct {
	UserID string           `json:"user"`
	Role   OrganizationRole `json:"role"`
}

// Organization is the read-only membership view consumed by the
// authorization guard and the confirmation population.
type Organization struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	OwnerID string               `json:"owner"`
	Members []OrganizationMember `json:"members"`
}

// MemberIDs returns the owner plus every member, deduplicated, in a stable
// order (owner first, then member list order).
func (o *Organization) MemberIDs() []string {
	seen := map[string]struct{}{o.OwnerID: {}}
	ids := []string{o.OwnerID}
	for _, m := range o.Members {
		if _, ok := seen[m.UserID]; ok {
			continue
		}
		seen[m.UserID] = struct{}{}
		ids = append(ids, m.UserID)
	}
	return ids
}
