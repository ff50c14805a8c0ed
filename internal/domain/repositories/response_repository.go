package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const answerBatchSize = 100

// ResponseRepository grava e lê respostas com suas answers
type ResponseRepository interface {
	// Submit grava a resposta e todas as respostas individuais atomicamente
	Submit(ctx context.Context, response *entities.Response, answers []entities.Answer) error
	ListComplete(ctx context.Context) ([]entities.Response, error)
	CountStarted(ctx context.Context) (int64, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository creates a new response repository
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Submit(ctx context.Context, response *entities.Response, answers []entities.Answer) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(response).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("erro ao inserir resposta: %w", err)
		}

		if len(answers) == 0 {
			return nil
		}

		now := time.Now()
		for i := range answers {
			answers[i].ResponseID = response.ID
			if answers[i].CreatedAt.IsZero() {
				answers[i].CreatedAt = now
			}
		}
		if err := tx.CreateInBatches(answers, answerBatchSize).Error; err != nil {
			return fmt.Errorf("erro ao inserir respostas individuais: %w", err)
		}
		response.Answers = answers
		return nil
	})
}

// ListComplete retorna as respostas completas em ordem de conclusão, com as respostas individuais
func (r *responseRepository) ListComplete(ctx context.Context) ([]entities.Response, error) {
	var responses []entities.Response
	err := r.db.WithContext(ctx).
		Where("is_complete = ?", true).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Order("completed_at ASC, id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar respostas: %w", err)
	}
	return responses, nil
}

func (r *responseRepository) CountStarted(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.Response{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("erro ao contar respostas: %w", err)
	}
	return total, nil
}
