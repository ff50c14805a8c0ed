package repositories

import (
	"context"
	"fmt"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"gorm.io/gorm"
)

// SurveyRepository lê pesquisas e perguntas
type SurveyRepository interface {
	ListActive(ctx context.Context) ([]entities.Survey, error)
	FindByID(ctx context.Context, id uint) (*entities.Survey, error)
	// ListAll retorna todas as pesquisas com as perguntas ordenadas (catálogo de analytics)
	ListAll(ctx context.Context) ([]entities.Survey, error)
	FindByNameAndVersion(ctx context.Context, name, version string) (*entities.Survey, error)
	Create(ctx context.Context, survey *entities.Survey) error
}

type surveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository cria uma nova instância de SurveyRepository
func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &surveyRepository{db: db}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("question_order ASC")
}

// ListActive retorna as pesquisas ativas, sem perguntas
func (r *surveyRepository) ListActive(ctx context.Context) ([]entities.Survey, error) {
	var surveys []entities.Survey
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&surveys).Error
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar pesquisas: %w", err)
	}
	return surveys, nil
}

// FindByID retorna uma pesquisa com suas perguntas em ordem
func (r *surveyRepository) FindByID(ctx context.Context, id uint) (*entities.Survey, error) {
	var survey entities.Survey
	err := r.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		First(&survey, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &survey, nil
}

func (r *surveyRepository) ListAll(ctx context.Context) ([]entities.Survey, error) {
	var surveys []entities.Survey
	err := r.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Order("id ASC").
		Find(&surveys).Error
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar catálogo de perguntas: %w", err)
	}
	return surveys, nil
}

func (r *surveyRepository) FindByNameAndVersion(ctx context.Context, name, version string) (*entities.Survey, error) {
	var survey entities.Survey
	err := r.db.WithContext(ctx).
		Where("name = ? AND version = ?", name, version).
		First(&survey).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &survey, nil
}

// Create insere a pesquisa e suas perguntas em uma única transação
func (r *surveyRepository) Create(ctx context.Context, survey *entities.Survey) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(survey).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("erro ao criar pesquisa: %w", err)
		}
		return nil
	})
}
