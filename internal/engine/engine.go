package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tatianab/german-bridge/internal/models"
)

// DefaultPlayingDelay is how long the playing phase lasts before results open.
const DefaultPlayingDelay = 2 * time.Second

// ScheduleFunc runs cmd after delay and returns a function that cancels it.
type ScheduleFunc func(delay time.Duration, cmd Command) (cancel func())

// Engine owns the live session, persists it after every accepted command and
// schedules the end of the playing pause.
type Engine struct {
	mu      sync.Mutex
	session models.Session
	store   models.Store
	log     zerolog.Logger
	rng     *rand.Rand
	delay   time.Duration

	schedule ScheduleFunc
	cancel   func()
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithScheduler replaces the time.AfterFunc based scheduler. The scheduled
// command must eventually be passed back to Apply.
func WithScheduler(fn ScheduleFunc) Option {
	return func(e *Engine) { e.schedule = fn }
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

func WithPlayingDelay(d time.Duration) Option {
	return func(e *Engine) { e.delay = d }
}

// WithFormula sets the formula a fresh session starts with.
func WithFormula(f models.Formula) Option {
	return func(e *Engine) { e.session.Formula = f }
}

func NewEngine(store models.Store, opts ...Option) *Engine {
	if store == nil {
		store = models.NewMemoryStore()
	}
	e := &Engine{
		session: models.NewSession(models.Squared),
		store:   store,
		log:     zerolog.Nop(),
		rng:     rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
		delay:   DefaultPlayingDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.schedule == nil {
		e.schedule = e.afterFunc
	}
	return e
}

func (e *Engine) afterFunc(delay time.Duration, cmd Command) func() {
	t := time.AfterFunc(delay, func() {
		if err := e.Apply(context.Background(), cmd); err != nil && !errors.Is(err, ErrPersistence) {
			e.log.Error().Err(err).Str("command", cmd.Name()).Msg("scheduled command failed")
		}
	})
	return func() { t.Stop() }
}

// Session returns a copy of the live session.
func (e *Engine) Session() models.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// LegalBids lists the values the current bidder may call.
func (e *Engine) LegalBids() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.Phase != models.PhaseBidding {
		return nil
	}
	s := e.session.Clone()
	return BiddingOf(&s).LegalBids()
}

// Restore loads the saved session. Missing saves start a fresh setup; corrupt
// ones are discarded and also start fresh. A store that cannot be read at all
// yields a fresh setup and an error wrapping ErrPersistence.
func (e *Engine) Restore(ctx context.Context) error {
	snap, err := e.store.Load(ctx)
	if err != nil && !errors.Is(err, models.ErrCorruptSnapshot) {
		e.log.Warn().Err(err).Msg("failed to load saved game")
		return fmt.Errorf("%w: load: %v", ErrPersistence, err)
	}
	if snap == nil && err == nil {
		e.log.Info().Msg("no saved game found")
		return nil
	}

	var s models.Session
	if err == nil {
		s, err = models.FromSnapshot(*snap)
	}
	if err != nil {
		e.log.Warn().Err(err).Msg("discarding unreadable saved game")
		return nil
	}
	e.mu.Lock()
	s.Generation = e.session.Generation + 1
	e.session = s
	e.mu.Unlock()

	e.log.Info().
		Str("session", s.ID).
		Str("phase", s.Phase.String()).
		Int("round", s.Round.Number).
		Msg("restored saved game")

	if s.Phase == models.PhasePlaying {
		e.arm(s.Generation)
	}
	return nil
}

// Apply runs cmd against the live session. A rejected command leaves the
// session untouched and returns the reason. When the command is accepted but
// the store fails, the new state is kept and the returned error wraps
// ErrPersistence.
func (e *Engine) Apply(ctx context.Context, cmd Command) error {
	e.mu.Lock()
	prev := e.session
	next, err := Advance(prev, cmd, e.rng)
	if err != nil {
		e.mu.Unlock()
		e.log.Info().Err(err).Str("command", cmd.Name()).Str("phase", prev.Phase.String()).Msg("command rejected")
		return err
	}
	if _, ok := cmd.(EndPlaying); ok && next.Phase == prev.Phase {
		e.mu.Unlock()
		e.log.Debug().Str("phase", prev.Phase.String()).Msg("ignoring stale end of play")
		return nil
	}
	e.session = next

	if _, ok := cmd.(ResetSession); ok {
		e.disarmLocked()
	}
	armed := next.Phase == models.PhasePlaying &&
		(prev.Phase != models.PhasePlaying || prev.Generation != next.Generation)

	err = e.persistLocked(ctx, cmd)
	e.mu.Unlock()

	e.log.Debug().
		Str("command", cmd.Name()).
		Str("phase", next.Phase.String()).
		Int("round", next.Round.Number).
		Msg("command applied")

	if armed {
		e.arm(next.Generation)
	}
	return err
}

func (e *Engine) persistLocked(ctx context.Context, cmd Command) error {
	var err error
	if _, ok := cmd.(ResetSession); ok {
		err = e.store.Clear(ctx)
	} else {
		err = e.store.Save(ctx, e.session.ToSnapshot())
	}
	if err != nil {
		e.log.Warn().Err(err).Str("command", cmd.Name()).Msg("failed to persist game")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (e *Engine) arm(generation int) {
	cancel := e.schedule(e.delay, EndPlaying{Generation: generation})
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	e.mu.Unlock()
}

func (e *Engine) disarmLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Close cancels any pending scheduled transition.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.disarmLocked()
}
