package dlq

import (
	"context"
	"fmt"

	"github.com/cabezayunke/sagas-playground/internal/app"
	"github.com/cabezayunke/sagas-playground/internal/config"
)

// New builds the queue selected by cfg.DLQ.Backend, pulling only the
// infrastructure that backend actually needs from the factory.
func New(ctx context.Context, cfg *config.Config, infra *app.Factory) (Queue, error) {
	switch cfg.DLQ.Backend {
	case "memory":
		return NewMemoryQueue(), nil
	case "postgres":
		pool, err := infra.Postgres(ctx)
		if err != nil {
			return nil, fmt.Errorf("postgres DLQ backend: %w", err)
		}
		return NewPostgresQueue(pool), nil
	case "kafka":
		producer := infra.KafkaProducer()
		return NewKafkaQueue(producer), nil
	default:
		return nil, fmt.Errorf("unknown DLQ backend %q", cfg.DLQ.Backend)
	}
}
