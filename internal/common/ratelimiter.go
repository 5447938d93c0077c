package common

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

var ErrRequestRejected = errors.New("rate limiter rejected a non vital request")

type Analysis struct {
	allowed bool          // If the request is allowed
	wait    time.Duration // The minimal time to wait before the request is allowed
}

// The one gate every call to the riot API goes through.
// Restrictions give a request budget over rolling windows, and the
// spacing limiter keeps a minimum time between two consecutive requests
type RateLimiter struct {
	mu                   sync.Mutex
	restrictions         []Restriction          // Restrictions to consider
	history              []time.Time            // History of requests
	duration             time.Duration          // Min duration to wait for all restrictions to be lifted
	pendingVitalRequests map[uuid.UUID]struct{} // Set of pending vital requests
	stopwatch            Stopwatch              // Running while riot asks us to back off
	spacing              *rate.Limiter
}

func NewRateLimiter(restrictions []Restriction, minSpacing time.Duration) *RateLimiter {
	rl := &RateLimiter{}
	// Restrictions are just a copy of the provided ones
	rl.restrictions = make([]Restriction, len(restrictions))
	copy(rl.restrictions, restrictions)
	// Duration
	for _, restriction := range restrictions {
		if restriction.Duration > rl.duration {
			rl.duration = restriction.Duration
		}
	}
	rl.pendingVitalRequests = make(map[uuid.UUID]struct{})
	rl.history = make([]time.Time, 0)
	if minSpacing > 0 {
		rl.spacing = rate.NewLimiter(rate.Every(minSpacing), 1)
	} else {
		rl.spacing = rate.NewLimiter(rate.Inf, 1)
	}

	return rl
}

// Wait until the request is allowed.
// A vital request blocks until the restrictions allow it or the context
// is done. A non vital request is rejected straight away if it cannot be
// served now, or if vital requests are already waiting
func (rl *RateLimiter) Wait(ctx context.Context, vital bool) error {

	// Give this request a unique identifier
	thisuuid := uuid.New()
	for {
		rl.mu.Lock()
		now := time.Now()
		// Trim history first
		rl.trim(now)
		// Check if the restrictions allow this request
		analysis := rl.analyse(now)
		if analysis.allowed {
			if vital || len(rl.pendingVitalRequests) == 0 {
				delete(rl.pendingVitalRequests, thisuuid)
				// Include this request in the history as it is allowed
				rl.history = append(rl.history, now)
				rl.mu.Unlock()
				break
			}
			// Request is not vital and the queue is not empty,
			// so we have to reject the request
			rl.mu.Unlock()
			log.Warn().Msg("Rejecting non vital request because restrictions allow it but vital queue is not empty")
			return ErrRequestRejected
		}
		if !vital {
			rl.mu.Unlock()
			log.Warn().Msg("Rejecting a non vital request because restrictions do not allow it")
			return ErrRequestRejected
		}

		// Request is vital and not allowed, so we need
		// to add it to the queue and sleep for some time
		rl.pendingVitalRequests[thisuuid] = struct{}{}
		rl.mu.Unlock()
		log.Debug().Msg(fmt.Sprintf("Vital request %s delayed %.2f seconds", thisuuid, analysis.wait.Seconds()))
		timer := time.NewTimer(analysis.wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			rl.mu.Lock()
			delete(rl.pendingVitalRequests, thisuuid)
			rl.mu.Unlock()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return rl.spacing.Wait(ctx)
}

// Riot answered with a 429, so nothing goes out for the provided time
func (rl *RateLimiter) ReceivedRateLimit(retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if retryAfter <= 0 {
		retryAfter = time.Second
	}
	rl.stopwatch.Timeout = retryAfter
	rl.stopwatch.Start()
	log.Warn().Msg(fmt.Sprintf("Rate limit received, backing off for %s", retryAfter))
}

// Trim the current history, leaving only the requests
// that are young enough to be affected by at least one restriction
func (rl *RateLimiter) trim(now time.Time) {
	// Find the index from which we need to keep the history.
	// Start searching at the end of the slice.
	// Times are stored in chronological order
	index := 0
	for i := len(rl.history) - 1; i >= 0; i-- {
		if now.Sub(rl.history[i]) >= rl.duration {
			index = i + 1
			break
		}
	}
	rl.history = rl.history[index:]
}

func (rl *RateLimiter) analyse(now time.Time) Analysis {

	// Merge the analyses of every restriction
	var wait time.Duration = 0
	allowed := true
	for _, restriction := range rl.restrictions {
		analysis := restriction.Analyse(rl.history, now)
		allowed = allowed && analysis.allowed
		if analysis.wait > wait {
			wait = analysis.wait
		}
	}

	// A 429 overrides whatever the restrictions say
	if stopped, remaining := rl.stopwatch.Stopped(); !stopped {
		allowed = false
		if remaining > wait {
			wait = remaining
		}
	}
	return Analysis{allowed, wait}
}
