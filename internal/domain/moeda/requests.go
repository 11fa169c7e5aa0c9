package moeda

import "strings"

// LoginRequest authenticates any principal.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the authenticated profile and its bearer token.
type LoginResponse struct {
	Token     string     `json:"token"`
	Role      Role       `json:"role"`
	Student   *Student   `json:"student,omitempty"`
	Professor *Professor `json:"professor,omitempty"`
	Company   *Company   `json:"company,omitempty"`
}

// StudentRegistration is the self-service sign-up payload for students.
type StudentRegistration struct {
	Name          string `json:"name" validate:"required,min=3"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	CPF           string `json:"cpf" validate:"required,numeric,len=11"`
	RG            string `json:"rg"`
	Address       string `json:"address"`
	InstitutionID string `json:"institutionId" validate:"required"`
	Course        string `json:"course" validate:"required"`
}

// ProfessorRegistration is the sign-up payload for professors.
type ProfessorRegistration struct {
	Name          string `json:"name" validate:"required,min=3"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	CPF           string `json:"cpf" validate:"required,numeric,len=11"`
	Department    string `json:"department" validate:"required"`
	InstitutionID string `json:"institutionId" validate:"required"`
}

// CompanyRegistration is the sign-up payload for partner companies.
type CompanyRegistration struct {
	CompanyName string `json:"companyName" validate:"required,min=2"`
	CNPJ        string `json:"cnpj" validate:"required,numeric,len=14"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
}

// SendCoinsRequest moves coins from a professor to a student.
type SendCoinsRequest struct {
	ProfessorID string `json:"professorId" validate:"required"`
	StudentID   string `json:"studentId" validate:"required"`
	Amount      int64  `json:"amount" validate:"gt=0"`
	Reason      string `json:"reason" validate:"required"`
}

// RedeemRequest claims an advantage for a student.
type RedeemRequest struct {
	AdvantageID string `json:"advantageId" validate:"required"`
	StudentID   string `json:"studentId" validate:"required"`
}

// AdvantageInput creates or partially updates an advantage.
// Nil fields are left untouched on update.
type AdvantageInput struct {
	Title          *string `json:"title,omitempty" validate:"omitempty,min=3"`
	Description    *string `json:"description,omitempty" validate:"omitempty,min=5"`
	PhotoURL       *string `json:"photoUrl,omitempty" validate:"omitempty,url"`
	CoinCost       *int64  `json:"coinCost,omitempty" validate:"omitempty,gt=0"`
	MaxRedemptions *int    `json:"maxRedemptions,omitempty" validate:"omitempty,gt=0"`
	IsActive       *bool   `json:"isActive,omitempty"`
}

// Apply copies the set fields onto a.
func (in AdvantageInput) Apply(a *Advantage) {
	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.PhotoURL != nil {
		a.PhotoURL = *in.PhotoURL
	}
	if in.CoinCost != nil {
		a.CoinCost = *in.CoinCost
	}
	if in.MaxRedemptions != nil {
		a.MaxRedemptions = *in.MaxRedemptions
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
}

// Complete reports whether in carries every field needed to create an advantage.
func (in AdvantageInput) Complete() bool {
	return in.Title != nil && in.Description != nil && in.CoinCost != nil && in.MaxRedemptions != nil
}

// StudentUpdate edits a student's own profile. Unset fields are kept.
// CPF, RG and institution are fixed at sign-up.
type StudentUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=3"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Address  *string `json:"address,omitempty"`
	Course   *string `json:"course,omitempty" validate:"omitempty,min=1"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

// Apply copies the set profile fields onto st. The password is hashed by the
// caller.
func (in StudentUpdate) Apply(st *Student) {
	if in.Name != nil {
		st.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		st.Email = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		st.Address = *in.Address
	}
	if in.Course != nil {
		st.Course = *in.Course
	}
}
