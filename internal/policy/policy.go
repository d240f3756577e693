// Package policy is the single place role-conditioned behavior lives.
// Capabilities are computed once per request from the authenticated actor and
// passed explicitly into every service operation; services never branch on raw
// role strings themselves.
package policy

import (
	"brototype.com/complaintdesk/internal/model"
	"github.com/google/uuid"
)

// Actor is the already-verified identity supplied by the identity provider.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

type Capabilities struct {
	actor Actor

	// CanListAll scopes repository list queries: false means every query is
	// additionally constrained to student_id = actor.id.
	CanListAll bool
	// CanMutateStatus covers status, assignment and resolution notes.
	CanMutateStatus bool
	// CanRate allows rating own terminal complaints.
	CanRate bool
	// CanManageCategories covers category create/delete.
	CanManageCategories bool
}

// ForActor derives the capability set for an actor.
func ForActor(a Actor) Capabilities {
	c := Capabilities{actor: a}
	switch a.Role {
	case model.RoleStaff:
		c.CanListAll = true
		c.CanMutateStatus = true
	case model.RoleSuperadmin:
		c.CanListAll = true
		c.CanMutateStatus = true
		c.CanManageCategories = true
	default:
		c.CanRate = true
	}
	return c
}

func (c Capabilities) Actor() Actor { return c.actor }

// IsStudent reports whether the actor may open new complaints.
func (c Capabilities) IsStudent() bool { return c.actor.Role == model.RoleStudent }

// CanView: students see only their own complaints, staff and superadmin see all.
func (c Capabilities) CanView(cm *model.Complaint) bool {
	return c.CanListAll || cm.StudentID == c.actor.ID
}

// CanPostMessage: any participant who can see the case may reply.
func (c Capabilities) CanPostMessage(cm *model.Complaint) bool {
	return c.CanView(cm)
}

// CanSubmitRating: only the owning student, and only once the complaint has
// reached a terminal status.
func (c Capabilities) CanSubmitRating(cm *model.Complaint) bool {
	return c.CanRate && cm.StudentID == c.actor.ID && cm.Status.Terminal()
}
