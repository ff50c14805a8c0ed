package migrations

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:embed seed/surveys.yaml
var surveysYAML []byte

type seedFile struct {
	Surveys []seedSurvey `yaml:"surveys"`
}

type seedSurvey struct {
	Name       string              `yaml:"name"`
	TargetRole entities.TargetRole `yaml:"targetRole"`
	Version    string              `yaml:"version"`
	Inactive   bool                `yaml:"inactive"`
	Questions  []seedQuestion      `yaml:"questions"`
}

type seedQuestion struct {
	Section  string                   `yaml:"section"`
	Text     string                   `yaml:"text"`
	Type     entities.QuestionType    `yaml:"type"`
	Required bool                     `yaml:"required"`
	Options  []string                 `yaml:"options"`
	Rules    entities.ValidationRules `yaml:"rules"`
	Tags     string                   `yaml:"tags"`
}

// LoadSeedSurveys decodes the embedded survey definitions.
func LoadSeedSurveys() ([]entities.Survey, error) {
	return parseSeed(surveysYAML)
}

func parseSeed(data []byte) ([]entities.Survey, error) {
	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	surveys := make([]entities.Survey, 0, len(file.Surveys))
	for _, s := range file.Surveys {
		if s.TargetRole != entities.TargetManager && s.TargetRole != entities.TargetSales {
			return nil, fmt.Errorf("survey %q: invalid target role %q", s.Name, s.TargetRole)
		}
		survey := entities.Survey{
			Name:       s.Name,
			TargetRole: s.TargetRole,
			Version:    s.Version,
			IsActive:   !s.Inactive,
		}
		for i, q := range s.Questions {
			if !q.Type.Valid() {
				return nil, fmt.Errorf("survey %q question %d: invalid type %q", s.Name, i+1, q.Type)
			}
			options := q.Options
			if options == nil {
				options = []string{}
			}
			survey.Questions = append(survey.Questions, entities.Question{
				Section:         q.Section,
				QuestionText:    strings.TrimSpace(q.Text),
				QuestionType:    q.Type,
				Order:           i + 1,
				Required:        q.Required,
				Options:         datatypes.JSONSlice[string](options),
				ValidationRules: datatypes.NewJSONType(q.Rules),
				AnalysisTags:    q.Tags,
			})
		}
		surveys = append(surveys, survey)
	}
	return surveys, nil
}

// SeedSurveys inserts every embedded survey whose (name, version) is not stored yet.
func SeedSurveys(ctx context.Context, db *gorm.DB) (int, error) {
	surveys, err := LoadSeedSurveys()
	if err != nil {
		return 0, err
	}
	return seedSurveys(ctx, db, surveys)
}

func seedSurveys(ctx context.Context, db *gorm.DB, surveys []entities.Survey) (int, error) {
	created := 0
	for i := range surveys {
		survey := surveys[i]
		var existing entities.Survey
		err := db.WithContext(ctx).
			Where("name = ? AND version = ?", survey.Name, survey.Version).
			First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		if err := db.WithContext(ctx).Create(&survey).Error; err != nil {
			return created, fmt.Errorf("survey %q: %w", survey.Name, err)
		}
		created++
	}
	return created, nil
}

// SeedAdmin creates the bootstrap admin account if no user has that email.
func SeedAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	var count int64
	if err := db.WithContext(ctx).Model(&entities.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Create(&entities.User{
		Email:        email,
		Name:         "Administrador",
		Role:         entities.RoleAdmin,
		PasswordHash: string(hash),
	}).Error
}
