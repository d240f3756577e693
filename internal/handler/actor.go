package handler

import (
	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/policy"
	"brototype.com/complaintdesk/pkg/response"
	"github.com/gin-gonic/gin"
)

// capsFromContext builds the per-request capability set from the identity the
// auth middleware stored. Handlers compute this once and pass it down.
func capsFromContext(c *gin.Context) (policy.Capabilities, error) {
	userID, err := response.GetUserID(c)
	if err != nil {
		return policy.Capabilities{}, err
	}

	role, err := response.GetUserRole(c)
	if err != nil {
		return policy.Capabilities{}, err
	}

	return policy.ForActor(policy.Actor{
		ID:   userID,
		Role: model.Role(role),
	}), nil
}
