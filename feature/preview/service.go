package preview

import (
	"context"

	"content-sync/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service computes import plans for the preview endpoints.
type Service struct {
	spec   *reconcile.Spec
	logger *zap.Logger
	group  singleflight.Group
}

// NewService creates a preview service planning with spec.
func NewService(spec *reconcile.Spec, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{spec: spec, logger: logger}
}

// Plan builds a fresh plan. Concurrent callers share one planning run, which is
// detached from the cancellation of whichever request started it.
func (s *Service) Plan(ctx context.Context) (*reconcile.ImportPlan, error) {
	runCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do("plan", func() (any, error) {
		return reconcile.BuildPlan(runCtx, s.spec)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Preview plan shared between requests")
	}
	return v.(*reconcile.ImportPlan), nil
}
