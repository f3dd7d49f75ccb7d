package httpapi

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/favorite"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/league"
	"github.com/riskibarqy/scoreboard-wall/internal/domain/snapshot"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/logging"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/metrics"
	"github.com/riskibarqy/scoreboard-wall/internal/platform/resilience"
	"github.com/riskibarqy/scoreboard-wall/internal/usecase"
)

// SnapshotReader is the read side of the snapshot publisher.
type SnapshotReader interface {
	Snapshot() snapshot.Snapshot
	Status() usecase.PublisherStatus
}

// BreakerReporter exposes upstream circuit breaker states keyed by endpoint.
type BreakerReporter interface {
	BreakerStates() map[string]resilience.CircuitState
}

type Handler struct {
	snapshots  SnapshotReader
	registry   *league.Registry
	favorites  favorite.Set
	feedHealth *metrics.FeedHealth
	breakers   BreakerReporter
	logger     *logging.Logger
	validator  *validator.Validate
}

// NewHandler builds the HTTP handlers. feedHealth and breakers are optional.
func NewHandler(
	snapshots SnapshotReader,
	registry *league.Registry,
	favorites favorite.Set,
	feedHealth *metrics.FeedHealth,
	breakers BreakerReporter,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		snapshots:  snapshots,
		registry:   registry,
		favorites:  favorites,
		feedHealth: feedHealth,
		breakers:   breakers,
		logger:     logger.Named("httpapi"),
		validator:  validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
