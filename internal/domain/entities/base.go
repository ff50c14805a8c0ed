package entities

import "time"

// Timestamps contém campos comuns de auditoria para as entidades persistidas
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at"`
}
