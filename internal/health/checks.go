package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/pos-terminal/internal/config"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/hellofresh/health-go/v5"
	"github.com/redis/go-redis/v9"
)

type Endpoints struct {
	DB          *sql.DB
	RedisClient *redis.Client
	Backend     backend.Client
}

// NewHealthHandler registers a check for the store backend and for each
// optional dependency that was actually configured.
func NewHealthHandler(cfg *config.Config, endpoints *Endpoints) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "backend",
			Timeout:   5 * time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				if endpoints.Backend == nil {
					return fmt.Errorf("backend client is not initialized")
				}
				if err := endpoints.Backend.Ping(ctx); err != nil {
					return fmt.Errorf("failed to reach store backend: %w", err)
				}
				return nil
			},
		},
	}

	if endpoints.DB != nil {
		checks = append(checks, health.Config{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				return endpoints.DB.PingContext(ctx)
			},
		})
	}

	// cache misses fall through to the backend, so redis is never fatal
	if endpoints.RedisClient != nil {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				return endpoints.RedisClient.Ping(ctx).Err()
			},
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{

			Name:    cfg.OTel.ServiceName,
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
