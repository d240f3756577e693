package policy

import (
	"testing"

	"brototype.com/complaintdesk/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestForActor(t *testing.T) {
	cases := []struct {
		name            string
		role            model.Role
		canListAll      bool
		canMutateStatus bool
		canRate         bool
		canManageCats   bool
	}{
		{name: "student", role: model.RoleStudent, canRate: true},
		{name: "staff", role: model.RoleStaff, canListAll: true, canMutateStatus: true},
		{name: "superadmin", role: model.RoleSuperadmin, canListAll: true, canMutateStatus: true, canManageCats: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			caps := ForActor(Actor{ID: uuid.New(), Role: tc.role})
			assert.Equal(t, tc.canListAll, caps.CanListAll)
			assert.Equal(t, tc.canMutateStatus, caps.CanMutateStatus)
			assert.Equal(t, tc.canRate, caps.CanRate)
			assert.Equal(t, tc.canManageCats, caps.CanManageCategories)
		})
	}
}

func TestCanView(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	complaint := &model.Complaint{ID: uuid.New(), StudentID: owner}

	assert.True(t, ForActor(Actor{ID: owner, Role: model.RoleStudent}).CanView(complaint))
	assert.False(t, ForActor(Actor{ID: other, Role: model.RoleStudent}).CanView(complaint))
	assert.True(t, ForActor(Actor{ID: other, Role: model.RoleStaff}).CanView(complaint))
	assert.True(t, ForActor(Actor{ID: other, Role: model.RoleSuperadmin}).CanView(complaint))
}

func TestCanPostMessageFollowsView(t *testing.T) {
	owner := uuid.New()
	complaint := &model.Complaint{ID: uuid.New(), StudentID: owner}

	assert.True(t, ForActor(Actor{ID: owner, Role: model.RoleStudent}).CanPostMessage(complaint))
	assert.False(t, ForActor(Actor{ID: uuid.New(), Role: model.RoleStudent}).CanPostMessage(complaint))
	assert.True(t, ForActor(Actor{ID: uuid.New(), Role: model.RoleStaff}).CanPostMessage(complaint))
}

func TestCanSubmitRating(t *testing.T) {
	owner := uuid.New()
	staff := uuid.New()

	cases := []struct {
		name   string
		actor  Actor
		status model.Status
		allow  bool
	}{
		{name: "owner resolved", actor: Actor{ID: owner, Role: model.RoleStudent}, status: model.StatusResolved, allow: true},
		{name: "owner closed", actor: Actor{ID: owner, Role: model.RoleStudent}, status: model.StatusClosed, allow: true},
		{name: "owner open", actor: Actor{ID: owner, Role: model.RoleStudent}, status: model.StatusOpen, allow: false},
		{name: "owner in progress", actor: Actor{ID: owner, Role: model.RoleStudent}, status: model.StatusInProgress, allow: false},
		{name: "other student resolved", actor: Actor{ID: uuid.New(), Role: model.RoleStudent}, status: model.StatusResolved, allow: false},
		{name: "staff resolved", actor: Actor{ID: staff, Role: model.RoleStaff}, status: model.StatusResolved, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			complaint := &model.Complaint{ID: uuid.New(), StudentID: owner, Status: tc.status}
			assert.Equal(t, tc.allow, ForActor(tc.actor).CanSubmitRating(complaint))
		})
	}
}
