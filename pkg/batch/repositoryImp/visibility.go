package repositoryImp

import (
	"beanline/pkg/auth"
	"beanline/pkg/batch/repository"
)

// VisibilityFor turns an actor into list filters. ok is false when the actor
// can see nothing at all (staff without a scope).
func VisibilityFor(a auth.Actor) (v repository.Visibility, ok bool) {
	f := a.Flags()
	switch {
	case f.IsAdmin:
		return repository.Visibility{}, true
	case f.IsManagerOrExpert:
		return repository.Visibility{ScopeID: a.ScopeID}, a.ScopeID != ""
	default:
		return repository.Visibility{FarmerID: a.ID}, a.ID != ""
	}
}
