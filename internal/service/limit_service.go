package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimitService enforces the per-user hourly generation limit. A limit of zero
// means unlimited.
type LimitService struct {
	mu       sync.Mutex
	limiters map[int64]*userLimiter
}

type userLimiter struct {
	perHour int
	limiter *rate.Limiter
}

func NewLimitService() *LimitService {
	return &LimitService{limiters: make(map[int64]*userLimiter)}
}

// Allow reports whether the user may start another generation now and, when
// allowed, consumes one slot.
func (s *LimitService) Allow(userID int64, perHour int) bool {
	if perHour <= 0 {
		return true
	}

	s.mu.Lock()
	entry, ok := s.limiters[userID]
	if !ok || entry.perHour != perHour {
		entry = &userLimiter{
			perHour: perHour,
			limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), perHour),
		}
		s.limiters[userID] = entry
	}
	s.mu.Unlock()

	return entry.limiter.Allow()
}
