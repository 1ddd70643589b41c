package model

// Principal is the authenticated identity making a request.
// A nil *Principal is the anonymous caller.
type Principal struct {
	User
	// Credential is the session credential the principal presented.
	Credential string `json:"-"`
}

// HasRole reports whether p holds role r on any object.
func (p *Principal) HasRole(r Role) bool {
	if p == nil {
		return false
	}
	for _, g := range p.Roles {
		if g.Role == r {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(RoleAdmin).
func (p *Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

// IsSelf reports whether p is the user with the given id.
func (p *Principal) IsSelf(userID int64) bool {
	return p != nil && p.ID == userID
}
