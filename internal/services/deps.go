package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sampahku/internal/repository"
)

// Deps carries what every domain service is built from
type Deps struct {
	Repos  *repository.Repositories
	Cache  Cache
	Events EventPublisher
	Logger *zap.Logger
	// Now is the server clock; dates such as submittedDate come from it
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = NoopPublisher
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// publish sends an event; a failure is logged because the write already committed
func (d Deps) publish(ctx context.Context, name string, payload interface{}) {
	if err := d.Events.Publish(ctx, name, payload); err != nil {
		d.Logger.Warn("Failed to publish event", zap.String("event", name), zap.Error(err))
	}
}

func (d Deps) today() string {
	return d.Now().Format(dateLayout)
}

const dateLayout = "2006-01-02"
