package service

import (
	"concord/internal/domain"
)

// Operation is a message mutation requested by a caller.
type Operation string

const (
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// CanModify decides whether the caller may perform the operation on the
// message. Edit is author-only; delete is allowed to the author and to
// admins and moderators. The predicate is pure and is re-evaluated on every
// request against a freshly loaded member, so role changes take effect
// immediately.
func CanModify(caller *domain.Member, msg *domain.Message, op Operation) bool {
	if caller == nil || msg == nil {
		return false
	}
	isAuthor := msg.MemberID == caller.ID
	switch op {
	case OpEdit:
		return isAuthor
	case OpDelete:
		return isAuthor || caller.Role == domain.RoleAdmin || caller.Role == domain.RoleModerator
	}
	return false
}
