package repositories

import (
	"context"
	"fmt"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"gorm.io/gorm"
)

// ActionItemRepository persists action items.
type ActionItemRepository interface {
	List(ctx context.Context, recommendationID string, status entities.ActionItemStatus) ([]entities.ActionItem, error)
	FindByID(ctx context.Context, id uint) (*entities.ActionItem, error)
	Create(ctx context.Context, item *entities.ActionItem) error
	Update(ctx context.Context, item *entities.ActionItem) error
}

type actionItemRepository struct {
	db *gorm.DB
}

// NewActionItemRepository creates a new action item repository
func NewActionItemRepository(db *gorm.DB) ActionItemRepository {
	return &actionItemRepository{db}
}

// List retorna os itens de ação, opcionalmente filtrados por recomendação e status
func (r *actionItemRepository) List(ctx context.Context, recommendationID string, status entities.ActionItemStatus) ([]entities.ActionItem, error) {
	var items []entities.ActionItem
	query := r.db.WithContext(ctx).Model(&entities.ActionItem{})
	if recommendationID != "" {
		query = query.Where("recommendation_id = ?", recommendationID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("erro ao buscar itens de ação: %w", err)
	}
	return items, nil
}

func (r *actionItemRepository) FindByID(ctx context.Context, id uint) (*entities.ActionItem, error) {
	var item entities.ActionItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *actionItemRepository) Create(ctx context.Context, item *entities.ActionItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("erro ao criar item de ação: %w", err)
	}
	return nil
}

func (r *actionItemRepository) Update(ctx context.Context, item *entities.ActionItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("erro ao atualizar item de ação: %w", err)
	}
	return nil
}
