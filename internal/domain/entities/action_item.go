package entities

import (
	"fmt"
	"time"
)

// ActionItemStatus é o estado de acompanhamento de uma ação
type ActionItemStatus string

const (
	ActionOpen       ActionItemStatus = "open"
	ActionInProgress ActionItemStatus = "in_progress"
	ActionDone       ActionItemStatus = "done"
)

// ParseActionItemStatus validates a status coming from the API.
func ParseActionItemStatus(s string) (ActionItemStatus, error) {
	switch ActionItemStatus(s) {
	case ActionOpen, ActionInProgress, ActionDone:
		return ActionItemStatus(s), nil
	}
	return "", fmt.Errorf("invalid status %q: must be one of open, in_progress, done", s)
}

// ActionItem representa uma ação derivada de uma recomendação
type ActionItem struct {
	ID               uint             `json:"id" gorm:"primaryKey"`
	RecommendationID string           `json:"recommendationId" gorm:"column:recommendation_id;type:varchar(100);not null;index"`
	Title            string           `json:"title" gorm:"column:title;not null"`
	Owner            string           `json:"owner" gorm:"column:owner"`
	Status           ActionItemStatus `json:"status" gorm:"column:status;type:varchar(20);not null;default:'open'"`
	DueDate          *time.Time       `json:"dueDate,omitempty" gorm:"column:due_date"`
	Notes            string           `json:"notes,omitempty" gorm:"column:notes;type:text"`
	Timestamps
}

func (ActionItem) TableName() string { return "action_items" }
