// Package orchestrator sequences store calls to satisfy a route's data
// dependencies: resolve the class, load its children, fan out per-student
// card fetches.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/dto"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/models"
	"github.com/ArbathAbdurrahman/ngajiqu-gateway/internal/store"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

// Phase names one step of the class-detail load sequence.
type Phase string

const (
	PhaseInit            Phase = "init"
	PhaseResolvingClass  Phase = "resolving_class"
	PhaseClassReady      Phase = "class_ready"
	PhaseClassError      Phase = "class_error"
	PhaseLoadingChildren Phase = "loading_children"
	PhaseChildrenReady   Phase = "children_ready"
)

// ClassDetailLoader drives the class-detail load for one session's stores.
type ClassDetailLoader struct {
	set    *store.Set
	logger *zap.Logger
}

// NewClassDetailLoader constructs a loader over a session store set.
func NewClassDetailLoader(set *store.Set, logger *zap.Logger) *ClassDetailLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassDetailLoader{set: set, logger: logger}
}

// Load runs the full sequence for one route slug and reports the phases it
// passed through. Class resolution failure is fatal; child failures
// degrade the result instead of blocking it. The loader always reaches
// PhaseChildrenReady once the class resolved, even when the child step
// itself panics.
func (l *ClassDetailLoader) Load(ctx context.Context, token, slug string) (*dto.ClassDetail, []Phase, error) {
	phases := []Phase{PhaseInit}

	kelas, resolved, err := l.resolve(ctx, token, slug, &phases)
	if err != nil {
		return nil, phases, err
	}
	if resolved {
		phases = append(phases, PhaseClassReady)
	}

	phases = append(phases, PhaseLoadingChildren)
	detail := &dto.ClassDetail{Kelas: *kelas}
	l.loadChildren(ctx, token, detail)
	phases = append(phases, PhaseChildrenReady)
	return detail, phases, nil
}

// resolve returns the class for the slug, skipping the lookup when the
// session's selected class already matches. The boolean reports whether a
// network resolution happened.
func (l *ClassDetailLoader) resolve(ctx context.Context, token, slug string, phases *[]Phase) (*models.Kelas, bool, error) {
	if selected := l.set.Selection.Kelas(); selected != nil && selected.Slug == slug {
		return selected, false, nil
	}

	*phases = append(*phases, PhaseResolvingClass)
	kelas, err := l.set.Kelas.GetBySlug(ctx, token, slug)
	if err != nil {
		*phases = append(*phases, PhaseClassError)
		return nil, false, err
	}
	return kelas, true, nil
}

// loadChildren fills activities, students and per-student cards into the
// detail. It never returns an error: list failures degrade the payload,
// and every spawned goroutine recovers its own panics so the route still
// renders whichever child blew up.
func (l *ClassDetailLoader) loadChildren(ctx context.Context, token string, detail *dto.ClassDetail) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("class detail child load panicked", zap.Any("panic", r))
			detail.Degraded = true
		}
	}()

	var (
		wg        sync.WaitGroup
		aktErr    error
		santriErr error
		santri    []models.Santri
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("aktivitas load panicked", zap.String("slug", detail.Kelas.Slug), zap.Any("panic", r))
				aktErr = fmt.Errorf("aktivitas load panicked: %v", r)
			}
		}()
		_, aktErr = l.set.Aktivitas.List(ctx, token, detail.Kelas.Slug)
	}()
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("santri load panicked", zap.String("slug", detail.Kelas.Slug), zap.Any("panic", r))
				santriErr = fmt.Errorf("santri load panicked: %v", r)
			}
		}()
		santri, santriErr = l.set.Santri.ListSantri(ctx, token, detail.Kelas.ID)
	}()
	wg.Wait()

	if aktErr != nil {
		l.logger.Warn("aktivitas load failed", zap.String("slug", detail.Kelas.Slug), zap.Error(aktErr))
		detail.Degraded = true
	} else {
		detail.Aktivitas = l.set.Aktivitas.Items()
	}
	if santriErr != nil {
		l.logger.Warn("santri load failed", zap.String("slug", detail.Kelas.Slug), zap.Error(santriErr))
		detail.Degraded = true
		return
	}

	detail.Outcomes = l.loadKartuBatch(ctx, token, santri)
	for _, outcome := range detail.Outcomes {
		if !outcome.OK {
			detail.Degraded = true
		}
	}

	detail.Santri = make([]dto.SantriWithKartu, 0, len(santri))
	for _, student := range santri {
		entry := dto.SantriWithKartu{
			Santri: student,
			Kartu:  l.set.Santri.CardsFor(student.ID),
			Latest: l.set.Santri.LatestCardFor(student.ID),
		}
		detail.Santri = append(detail.Santri, entry)
	}
}

// loadKartuBatch fetches every student's cards concurrently and waits for
// all of them to settle. One student's failure never blocks the rest; it
// is recorded in the typed outcome list instead of surfacing.
func (l *ClassDetailLoader) loadKartuBatch(ctx context.Context, token string, santri []models.Santri) []dto.KartuOutcome {
	if len(santri) == 0 {
		return nil
	}

	outcomes := make([]dto.KartuOutcome, len(santri))
	var wg sync.WaitGroup
	for i, student := range santri {
		wg.Add(1)
		go func(i int, santriID int64) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					l.logger.Error("kartu load panicked",
						zap.Int64("santri_id", santriID),
						zap.Any("panic", r))
					outcomes[i] = dto.KartuOutcome{SantriID: santriID, Error: "kartu load failed"}
				}
			}()
			_, err := l.set.Santri.ListKartu(ctx, token, santriID)
			outcome := dto.KartuOutcome{SantriID: santriID, OK: err == nil}
			if err != nil {
				outcome.Error = appErrors.FromError(err).Message
				l.logger.Warn("kartu load failed",
					zap.Int64("santri_id", santriID),
					zap.Error(err))
			}
			outcomes[i] = outcome
		}(i, student.ID)
	}
	wg.Wait()
	return outcomes
}
