package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/leoz-tozenx/elastic-rum-demo/internal/api/entity"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgerror"
	"github.com/leoz-tozenx/elastic-rum-demo/internal/pkg/pkgtelemetry"
)

// DefaultDelay simulates the processing time of /api/data.
const DefaultDelay = 200 * time.Millisecond

const greetingMessage = "Hello from Backend!"

type Clock interface {
	Now() time.Time
}

type Dependency struct {
	Sink  pkgtelemetry.Sink
	Clock Clock
	Delay time.Duration
}

type Usecase struct {
	sink  pkgtelemetry.Sink
	clock Clock
	delay time.Duration
}

func New(dep Dependency) *Usecase {
	sink := dep.Sink
	if sink == nil {
		sink = pkgtelemetry.Noop{}
	}

	clock := dep.Clock
	if clock == nil {
		clock = realClock{}
	}

	delay := dep.Delay
	if delay < 0 {
		delay = 0
	}

	return &Usecase{sink: sink, clock: clock, delay: delay}
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// Data does the simulated work inside a "process-data" span and returns the
// greeting. It stops early when ctx is done.
func (u *Usecase) Data(ctx context.Context) (entity.Greeting, error) {
	ctx, span := u.sink.StartSpan(ctx, "process-data", pkgtelemetry.TypeApp)
	defer span.End()

	if u.delay > 0 {
		timer := time.NewTimer(u.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			span.RecordError(ctx.Err())
			slog.WarnContext(ctx, "process-data canceled", "because", ctx.Err())
			return entity.Greeting{}, pkgerror.FromContext(ctx)
		case <-timer.C:
		}
	}

	return entity.Greeting{
		Message:   greetingMessage,
		Timestamp: u.clock.Now(),
	}, nil
}

// Fail simulates a backend failure: the error is captured on the sink and
// returned so the client sees it verbatim.
func (u *Usecase) Fail(ctx context.Context) error {
	err := entity.ErrDatabaseConnection
	u.sink.CaptureError(ctx, err)
	slog.ErrorContext(ctx, "simulated backend failure", "error", err)

	return pkgerror.NewInternal(err.Error(), err)
}
