package usecase

import (
	"context"

	"ratio-analytics-website/internal/domain"
)

type healthUsecase struct {
	delivery string
	ping     func(ctx context.Context) error
}

// NewHealthUsecase reports the delivery mode and whether ping reaches the
// rate limit store. A nil ping means the in-memory store.
func NewHealthUsecase(delivery string, ping func(ctx context.Context) error) domain.HealthUsecase {
	return &healthUsecase{
		delivery: delivery,
		ping:     ping,
	}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	store := "memory"
	if u.ping != nil && u.ping(ctx) == nil {
		store = "redis"
	}
	return map[string]string{
		"status":           "ok",
		"delivery":         u.delivery,
		"rate_limit_store": store,
	}
}
