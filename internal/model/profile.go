package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleStaff      Role = "staff"
	RoleSuperadmin Role = "superadmin"
)

// Profile mirrors the identity provider's user record. Provisioning and
// authentication happen outside this service; the role is immutable here.
type Profile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email      string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name       string    `gorm:"size:100;not null" json:"name"`
	Role       Role      `gorm:"size:20;not null;default:student" json:"role"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	ProfilePic *string   `gorm:"type:text" json:"profile_pic,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
