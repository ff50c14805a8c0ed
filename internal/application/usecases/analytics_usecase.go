package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PavaniTiago/workflow-insights-api/internal/application/analytics"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/entities"
	"github.com/PavaniTiago/workflow-insights-api/internal/domain/repositories"
	"github.com/PavaniTiago/workflow-insights-api/internal/infrastructure/cache"
	"golang.org/x/sync/errgroup"
)

const catalogCacheKey = "analytics:catalog"

var (
	ErrInvalidRole   = errors.New("invalid role")
	ErrRoleForbidden = errors.New("role not allowed for this viewer")
)

// ResolveRole decide qual visão de papel atender.
// viewer is nil when authentication is disabled. An explicit role above the
// viewer's is forbidden; an omitted one falls back to def, capped at the viewer's role.
func ResolveRole(requested string, viewer *entities.ViewerRole, def entities.ViewerRole) (entities.ViewerRole, error) {
	if strings.TrimSpace(requested) == "" {
		if viewer != nil && !viewer.Covers(def) {
			return *viewer, nil
		}
		return def, nil
	}

	role, err := entities.ParseViewerRole(requested)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRole, err)
	}
	if viewer != nil && !viewer.Covers(role) {
		return "", fmt.Errorf("%w: %s cannot view %s", ErrRoleForbidden, *viewer, role)
	}
	return role, nil
}

// AnalyticsUseCase recalcula o relatório completo a cada requisição.
// Só o catálogo de perguntas (imutável após o seed) fica em cache.
type AnalyticsUseCase struct {
	surveys    repositories.SurveyRepository
	responses  repositories.ResponseRepository
	catalog    *cache.Cache[*analytics.Catalog]
	catalogTTL time.Duration
	location   *time.Location
	now        func() time.Time
}

// NewAnalyticsUseCase wires the repositories and the shared catalog cache.
func NewAnalyticsUseCase(
	surveys repositories.SurveyRepository,
	responses repositories.ResponseRepository,
	catalog *cache.Cache[*analytics.Catalog],
	catalogTTL time.Duration,
	location *time.Location,
) *AnalyticsUseCase {
	if location == nil {
		location = time.UTC
	}
	return &AnalyticsUseCase{
		surveys:    surveys,
		responses:  responses,
		catalog:    catalog,
		catalogTTL: catalogTTL,
		location:   location,
		now:        time.Now,
	}
}

// Catalog returns the question catalog with its tag index, loading it on a miss.
func (u *AnalyticsUseCase) Catalog(ctx context.Context) (*analytics.Catalog, error) {
	return u.catalog.GetOrLoad(ctx, catalogCacheKey, u.catalogTTL, func(ctx context.Context) (*analytics.Catalog, error) {
		surveys, err := u.surveys.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		c := analytics.NewCatalog(surveys)
		slog.Info("Question catalog loaded", "surveys", len(surveys))
		return c, nil
	})
}

// InvalidateCatalog drops the cached catalog.
func (u *AnalyticsUseCase) InvalidateCatalog() {
	u.catalog.Delete(catalogCacheKey)
}

// Report fetches every complete response and runs the analytics pipeline.
func (u *AnalyticsUseCase) Report(ctx context.Context) (*analytics.Report, error) {
	catalog, err := u.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	var (
		responses []entities.Response
		started   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		responses, err = u.responses.ListComplete(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		started, err = u.responses.CountStarted(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	start := time.Now()
	report := analytics.BuildReport(analytics.Input{
		Catalog:   catalog,
		Responses: responses,
		Started:   int(started),
		Now:       u.now(),
		Location:  u.location,
	})
	slog.Debug("Analytics report computed",
		"responses", report.Set.TotalComplete(),
		"insights", len(report.Insights),
		"recommendations", len(report.Recommendations),
		"unparseable", report.Set.Unparseable,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}
