package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/analytics"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
)

var (
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrActionItemNotFound     = errors.New("action item not found")
)

// ReportSource produces the current analytics report.
type ReportSource interface {
	Report(ctx context.Context) (*analytics.Report, error)
}

// CreateActionItemInput é o corpo aceito em POST /api/action-items
type CreateActionItemInput struct {
	RecommendationID string     `json:"recommendationId"`
	Title            string     `json:"title"`
	Owner            string     `json:"owner"`
	DueDate          *time.Time `json:"dueDate"`
	Notes            string     `json:"notes"`
}

// UpdateActionItemInput carries only the fields being changed.
type UpdateActionItemInput struct {
	Status  *string    `json:"status"`
	Owner   *string    `json:"owner"`
	Notes   *string    `json:"notes"`
	DueDate *time.Time `json:"dueDate"`
}

// ActionItemUseCase acompanha as ações criadas a partir de recomendações
type ActionItemUseCase struct {
	items   repositories.ActionItemRepository
	reports ReportSource
}

// NewActionItemUseCase creates the action item use case.
func NewActionItemUseCase(items repositories.ActionItemRepository, reports ReportSource) *ActionItemUseCase {
	return &ActionItemUseCase{items: items, reports: reports}
}

func (u *ActionItemUseCase) List(ctx context.Context, recommendationID, status string) ([]entities.ActionItem, error) {
	var st entities.ActionItemStatus
	if status != "" {
		parsed, err := entities.ParseActionItemStatus(status)
		if err != nil {
			return nil, invalid(CodeInvalidPayload, err.Error(), nil)
		}
		st = parsed
	}
	return u.items.List(ctx, strings.TrimSpace(recommendationID), st)
}

// Create opens an action item for a recommendation the role can currently see.
// Recommendation ids are stable slugs, so the check runs against a fresh report.
func (u *ActionItemUseCase) Create(ctx context.Context, in CreateActionItemInput, role entities.ViewerRole) (*entities.ActionItem, error) {
	id := strings.TrimSpace(in.RecommendationID)
	if id == "" {
		return nil, invalid(CodeInvalidPayload, "recommendationId is required", nil)
	}

	report, err := u.reports.Report(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := report.Recommendation(id, role)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecommendationNotFound, id)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = rec.Title
	}
	item := &entities.ActionItem{
		RecommendationID: rec.ID,
		Title:            title,
		Owner:            strings.TrimSpace(in.Owner),
		Status:           entities.ActionOpen,
		DueDate:          in.DueDate,
		Notes:            in.Notes,
	}
	if err := u.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (u *ActionItemUseCase) Update(ctx context.Context, id uint, in UpdateActionItemInput) (*entities.ActionItem, error) {
	item, err := u.items.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrActionItemNotFound, id)
		}
		return nil, err
	}

	if in.Status != nil {
		status, err := entities.ParseActionItemStatus(*in.Status)
		if err != nil {
			return nil, invalid(CodeInvalidPayload, err.Error(), nil)
		}
		item.Status = status
	}
	if in.Owner != nil {
		item.Owner = strings.TrimSpace(*in.Owner)
	}
	if in.Notes != nil {
		item.Notes = *in.Notes
	}
	if in.DueDate != nil {
		item.DueDate = in.DueDate
	}

	if err := u.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
