package cooldown

import (
	"sync"
	"time"

	"chess-leaderboard-bot/internal/constants"

	"github.com/rs/zerolog"
)

// Gate throttles caller-triggered refreshes behind two independent
// thresholds: a global minimum interval between any two refreshes and a
// per-caller minimum interval. Both timestamps are updated atomically with
// the check so two near-simultaneous callers cannot both pass.
//
// State is in-memory only; a restart resets throttling on purpose.
type Gate struct {
	mu          sync.Mutex
	global      time.Time
	perCaller   map[string]time.Time
	globalEvery time.Duration
	callerEvery time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

func NewGate(logger zerolog.Logger) *Gate {
	return &Gate{
		perCaller:   map[string]time.Time{},
		globalEvery: constants.GlobalCooldown,
		callerEvery: constants.UserCooldown,
		now:         time.Now,
		logger:      logger,
	}
}

// TryAcquire reports whether the caller may trigger a refresh right now and,
// if so, records the trigger against both thresholds.
func (g *Gate) TryAcquire(callerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.global) < g.globalEvery {
		g.logger.Debug().Str("caller_id", callerID).Msg("refresh blocked by global cooldown")
		return false
	}
	if now.Sub(g.perCaller[callerID]) < g.callerEvery {
		g.logger.Debug().Str("caller_id", callerID).Msg("refresh blocked by caller cooldown")
		return false
	}

	g.global = now
	g.perCaller[callerID] = now
	return true
}
