package model

// Role is the platform-wide access level recorded for every account.
type Role string

const (
	RoleVolunteer   Role = "volunteer"
	RoleCoordinator Role = "coordinator"
	RoleAdmin       Role = "admin"
)

// MessagingEligible reports whether accounts with this role may take part
// in direct messaging. Volunteers are excluded.
func (r Role) MessagingEligible() bool {
	return r == RoleAdmin || r == RoleCoordinator
}

// User is the public identity shape consumed from the persistence store.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	ProfileImage string `json:"profileImage,omitempty"`
}
