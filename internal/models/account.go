package models

import "time"

// Role identifies which dashboard a session belongs to
type Role string

const (
	RoleCitizen Role = "warga"
	RoleRT      Role = "rt"
	RoleAdmin   Role = "admin"
)

// AdminDocumentID is the fixed id of the singleton admin account
const AdminDocumentID = "admin"

// RTAccount is the login of a neighborhood-unit head
type RTAccount struct {
	ID            string     `json:"id,omitempty"`
	Username      string     `json:"username" validate:"required,min=3,max=50"`
	Name          string     `json:"name,omitempty"`
	Email         string     `json:"email,omitempty" validate:"omitempty,email"`
	PasswordHash  string     `json:"passwordHash,omitempty"`
	Password      string     `json:"password,omitempty"` // legacy plaintext, cleared on first login
	RT            string     `json:"rt" validate:"required,numeric,max=3"`
	RW            string     `json:"rw" validate:"required,numeric,max=3"`
	LastLogin     *time.Time `json:"lastLogin"`
	IsDeactivated bool       `json:"isDeactivated"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Area returns the RT/RW the account manages
func (a RTAccount) Area() Area {
	return Area{RT: a.RT, RW: a.RW}
}

// Public returns a copy without credential fields
func (a RTAccount) Public() RTAccount {
	a.PasswordHash = ""
	a.Password = ""
	return a
}

// AdminAccount is the kelurahan admin login
type AdminAccount struct {
	ID           string     `json:"id,omitempty"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"passwordHash,omitempty"`
	Password     string     `json:"password,omitempty"` // legacy plaintext
	LastLogin    *time.Time `json:"lastLogin"`
}
