package dto

type SubmitterResponse struct {
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	ProfilePic *string `json:"profile_pic,omitempty"`
}

// ComplaintFilter values "" and "all" both mean "no constraint".
type ComplaintFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=all open in_progress resolved closed"`
	Priority string `form:"priority" binding:"omitempty,oneof=all low medium high urgent"`
}
