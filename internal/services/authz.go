package services

import (
	"fmt"

	"budget/internal/core"
)

// authorizeOwner enforces the ownership rule: a principal may only act on
// resources it owns. There are no roles or shared access.
func authorizeOwner(principalID, ownerID int64) error {
	if principalID != ownerID {
		return fmt.Errorf("%w: user %d cannot act on resources of user %d",
			core.ErrForbidden, principalID, ownerID)
	}
	return nil
}
