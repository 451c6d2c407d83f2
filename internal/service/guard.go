package service

import "fmt"

// Owned is anything with a single owning user.
type Owned interface {
	OwnerID() int64
}

// AssertOwner fails with ErrForbidden unless viewerID owns resource.
// Reads never go through here; they use the visibility policy.
func AssertOwner(resource Owned, viewerID int64, action string) error {
	if resource.OwnerID() != viewerID {
		return fmt.Errorf("%w: only the author can %s", ErrForbidden, action)
	}
	return nil
}
