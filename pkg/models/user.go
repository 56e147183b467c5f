package models

// Role is the functional role a user acts in. Authorization is an exact
// match against the step's role: Admin carries no override.
type Role string

const (
	RoleQA            Role = "QA"
	RoleManufacturing Role = "Manufacturing"
	RoleRegulatory    Role = "Regulatory"
	RoleEngineering   Role = "Engineering"
	RoleAdmin         Role = "Admin"
)

// ValidRoles lists every role a user profile may carry.
var ValidRoles = []Role{
	RoleQA,
	RoleManufacturing,
	RoleRegulatory,
	RoleEngineering,
	RoleAdmin,
}

// IsValid reports whether the role is one of the recognised roles.
func (r Role) IsValid() bool {
	for _, role := range ValidRoles {
		if r == role {
			return true
		}
	}

	return false
}

// UserProfile is the authenticated identity a decision is performed under.
// Approvals and signatures snapshot the profile's name and role at the time
// of the decision.
type UserProfile struct {
	ID    string `json:"id"    validate:"required"`
	Name  string `json:"name"  validate:"required"`
	Role  Role   `json:"role"  validate:"required"`
	Email string `json:"email,omitempty"`
}
