package session

import (
	"time"

	"github.com/google/uuid"
)

// User is the profile value object returned by the gateway. It is
// never persisted locally: the vault stores only the credential and
// the profile is re-fetched on every rehydration.
type User struct {
	ID              uuid.UUID        `json:"id,omitempty"`
	Email           string           `json:"email,omitempty"`
	Name            string           `json:"name,omitempty"`
	Role            Role             `json:"role,omitempty"`
	Avatar          string           `json:"avatar,omitempty"`
	Bio             string           `json:"bio,omitempty"`
	IsVerified      bool             `json:"is_verified,omitempty"`
	LawyerProfile   *LawyerProfile   `json:"lawyer_profile,omitempty"`
	ActivistProfile *ActivistProfile `json:"activist_profile,omitempty"`
	CreatedAt       *time.Time       `json:"created_at,omitempty"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
}

// LawyerProfile is the lawyer-specific profile variant.
type LawyerProfile struct {
	LicenseNumber   string   `json:"license_number,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	YearsExperience int      `json:"years_experience,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Firm            string   `json:"firm,omitempty"`
	ProBonoHours    int      `json:"pro_bono_hours,omitempty"`
}

// ActivistProfile is the activist-specific profile variant.
type ActivistProfile struct {
	Organization string   `json:"organization,omitempty"`
	CauseAreas   []string `json:"cause_areas,omitempty"`
	Location     string   `json:"location,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// RegisterPayload is the registration payload. The gateway is the
// source of truth for validation; the Store forwards it untouched.
type RegisterPayload struct {
	Email           string           `form:"email" json:"email"`
	Password        string           `form:"password" json:"password"`
	Name            string           `form:"name" json:"name"`
	Role            Role             `form:"role" json:"role"`
	LawyerProfile   *LawyerProfile   `json:"lawyer_profile,omitempty"`
	ActivistProfile *ActivistProfile `json:"activist_profile,omitempty"`
}

// UserPatch carries the fields UpdateUser may overwrite. Nil pointers
// leave the current value untouched.
type UserPatch struct {
	Name            *string          `json:"name,omitempty"`
	Avatar          *string          `json:"avatar,omitempty"`
	Bio             *string          `json:"bio,omitempty"`
	IsVerified      *bool            `json:"is_verified,omitempty"`
	LawyerProfile   *LawyerProfile   `json:"lawyer_profile,omitempty"`
	ActivistProfile *ActivistProfile `json:"activist_profile,omitempty"`
}

// Clone returns a deep enough copy for snapshot semantics: consumers
// must be able to treat a snapshot's User as immutable per read.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.LawyerProfile != nil {
		lp := *u.LawyerProfile
		lp.Specializations = append([]string(nil), u.LawyerProfile.Specializations...)
		clone.LawyerProfile = &lp
	}
	if u.ActivistProfile != nil {
		ap := *u.ActivistProfile
		ap.CauseAreas = append([]string(nil), u.ActivistProfile.CauseAreas...)
		clone.ActivistProfile = &ap
	}
	return &clone
}

// Apply merges the patch into the user, shallow per field.
func (p UserPatch) Apply(u *User) {
	if u == nil {
		return
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}
	if p.LawyerProfile != nil {
		u.LawyerProfile = p.LawyerProfile
	}
	if p.ActivistProfile != nil {
		u.ActivistProfile = p.ActivistProfile
	}
}
