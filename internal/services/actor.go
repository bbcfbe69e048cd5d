package services

import "github.com/alumnet/apiserver/types"

// Actor is the authenticated caller of a use-case.
type Actor struct {
	ID   int64
	Role types.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == types.RoleAdmin
}

// canPublish reports whether the actor may post jobs, news and comments.
func (a Actor) canPublish() bool {
	return a.Role == types.RoleAlumni || a.Role == types.RoleAdmin
}

// owns reports whether the actor is the recorded owner.
func (a Actor) owns(owner *int64) bool {
	return owner != nil && *owner == a.ID
}
