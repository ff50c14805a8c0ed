package entities

import (
	"fmt"
	"strings"
)

// ViewerRole identifica o perfil de quem consulta o dashboard
type ViewerRole string

const (
	RoleAdmin       ViewerRole = "admin"
	RoleCoordinator ViewerRole = "coordinator"
	RoleAssessor    ViewerRole = "assessor"
)

// ParseViewerRole normaliza o parâmetro role. "sales" é aceito como alias de assessor.
func ParseViewerRole(s string) (ViewerRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "coordinator":
		return RoleCoordinator, nil
	case "assessor", "sales":
		return RoleAssessor, nil
	default:
		return "", fmt.Errorf("invalid role %q: must be one of admin, coordinator, assessor", s)
	}
}

// Rank orders roles by privilege; higher sees more.
func (r ViewerRole) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleCoordinator:
		return 2
	case RoleAssessor:
		return 1
	default:
		return 0
	}
}

// Covers reports whether a viewer with role r may request the view of role other.
func (r ViewerRole) Covers(other ViewerRole) bool {
	return r.Rank() >= other.Rank()
}

// User representa um usuário com acesso ao dashboard
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"column:email;uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"column:name"`
	Role         ViewerRole `json:"role" gorm:"column:role;type:varchar(20);not null;default:'assessor'"`
	PasswordHash string     `json:"-" gorm:"column:password_hash;not null"`
	Timestamps
}

func (User) TableName() string { return "users" }
