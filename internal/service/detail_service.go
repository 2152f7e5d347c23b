package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/dto"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/orchestrator"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/jobs"
)

const jobTypeDetailRefresh = "detail_refresh"

// DetailService serves class-detail snapshots. A fresh load runs the full
// orchestration against the upstream; successful non-degraded results are
// cached by slug so subsequent viewers of the same class skip the fan-out.
type DetailService struct {
	hub      *store.Hub
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	queue    *jobs.Queue
}

type refreshPayload struct {
	SessionID string
	Token     string
	Slug      string
}

// NewDetailService constructs the service together with its refresh queue.
func NewDetailService(hub *store.Hub, cache *CacheService, cacheTTL time.Duration, queueCfg jobs.QueueConfig, logger *zap.Logger) *DetailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DetailService{
		hub:      hub,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("detail-prefetch", s.handleRefresh, queueCfg)
	return s
}

// Start begins background refresh workers.
func (s *DetailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the refresh workers.
func (s *DetailService) Stop() {
	s.queue.Stop()
}

// Get returns the detail snapshot for a slug. The boolean reports whether
// the snapshot came from cache; cached responses trigger a background
// refresh so the next viewer sees recent data.
func (s *DetailService) Get(ctx context.Context, sessionID, token, slug string) (*dto.ClassDetail, bool, error) {
	key := detailCacheKey(slug)

	var cached dto.ClassDetail
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		s.Prefetch(sessionID, token, slug)
		return &cached, true, nil
	}

	detail, err := s.load(ctx, sessionID, token, slug)
	if err != nil {
		return nil, false, err
	}
	return detail, false, nil
}

// Cached returns the snapshot for a slug only when it is already cached.
// The guardian share view uses this; it carries no upstream credentials
// and therefore never triggers a fresh load.
func (s *DetailService) Cached(ctx context.Context, slug string) (*dto.ClassDetail, bool) {
	var cached dto.ClassDetail
	hit, err := s.cache.Get(ctx, detailCacheKey(slug), &cached)
	if err != nil || !hit {
		return nil, false
	}
	return &cached, true
}

// Invalidate drops the cached snapshot for one class. Mutating handlers
// call this so a follow-up detail request reflects the write.
func (s *DetailService) Invalidate(ctx context.Context, slug string) {
	if err := s.cache.Invalidate(ctx, detailCacheKey(slug)); err != nil {
		s.logger.Warn("detail invalidate failed", zap.String("slug", slug), zap.Error(err))
	}
}

// Prefetch schedules a background snapshot refresh. Failures are logged,
// never surfaced; the foreground response does not depend on it.
func (s *DetailService) Prefetch(sessionID, token, slug string) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Key:     detailCacheKey(slug),
		Type:    jobTypeDetailRefresh,
		Payload: refreshPayload{SessionID: sessionID, Token: token, Slug: slug},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Debug("detail prefetch not scheduled", zap.String("slug", slug), zap.Error(err))
	}
}

func (s *DetailService) handleRefresh(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(refreshPayload)
	if !ok {
		s.logger.Error("unexpected refresh payload", zap.String("job_id", job.ID))
		return nil
	}
	if _, err := s.load(ctx, payload.SessionID, payload.Token, payload.Slug); err != nil {
		return fmt.Errorf("refresh detail %s: %w", payload.Slug, err)
	}
	return nil
}

func (s *DetailService) load(ctx context.Context, sessionID, token, slug string) (*dto.ClassDetail, error) {
	set := s.hub.For(ctx, sessionID)
	loader := orchestrator.NewClassDetailLoader(set, s.logger)
	detail, _, err := loader.Load(ctx, token, slug)
	if err != nil {
		return nil, err
	}
	// Degraded snapshots stay out of the cache so a healthy reload is not
	// masked by a cached partial result.
	if !detail.Degraded {
		if err := s.cache.Set(ctx, detailCacheKey(slug), detail, s.cacheTTL); err != nil {
			s.logger.Warn("detail cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	return detail, nil
}

func detailCacheKey(slug string) string {
	return "detail:" + slug
}
