package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"concord/internal/domain"
	"concord/internal/service"
)

func TestCanModify(t *testing.T) {
	author := &domain.Member{ID: "m-author", Role: domain.RoleGuest}
	msg := &domain.Message{ID: "msg-1", MemberID: author.ID}

	cases := []struct {
		name   string
		caller *domain.Member
		op     service.Operation
		want   bool
	}{
		{"author can edit", author, service.OpEdit, true},
		{"author can delete", author, service.OpDelete, true},
		{"guest cannot edit others", &domain.Member{ID: "m-2", Role: domain.RoleGuest}, service.OpEdit, false},
		{"guest cannot delete others", &domain.Member{ID: "m-2", Role: domain.RoleGuest}, service.OpDelete, false},
		{"moderator cannot edit others", &domain.Member{ID: "m-3", Role: domain.RoleModerator}, service.OpEdit, false},
		{"moderator can delete others", &domain.Member{ID: "m-3", Role: domain.RoleModerator}, service.OpDelete, true},
		{"admin cannot edit others", &domain.Member{ID: "m-4", Role: domain.RoleAdmin}, service.OpEdit, false},
		{"admin can delete others", &domain.Member{ID: "m-4", Role: domain.RoleAdmin}, service.OpDelete, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.CanModify(tc.caller, msg, tc.op))
		})
	}

	t.Run("nil caller or message", func(t *testing.T) {
		assert.False(t, service.CanModify(nil, msg, service.OpDelete))
		assert.False(t, service.CanModify(author, nil, service.OpDelete))
	})

	t.Run("unknown operation", func(t *testing.T) {
		assert.False(t, service.CanModify(author, msg, service.Operation("promote")))
	})
}
