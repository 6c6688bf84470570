package refresh

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Equat-ion/titles/internal/settings"
)

// Due reports whether an automatic refresh should run, given the time of
// the previous refresh and the configured frequency. A frequency of
// "never" is never due. A zero last time means no refresh has run yet.
func Due(last time.Time, freq settings.Frequency, now time.Time) bool {
	var period time.Duration
	switch freq {
	case settings.FreqDay:
		period = 24 * time.Hour
	case settings.FreqWeek:
		period = 7 * 24 * time.Hour
	case settings.FreqMonth:
		period = 30 * 24 * time.Hour
	default:
		return false
	}
	return !now.Before(last.Add(period))
}

// Scheduler periodically checks whether an automatic refresh is due and
// runs the registered callback when it is. A refresh missed while the
// process was not running fires on the first check after start.
type Scheduler struct {
	store    *settings.Store
	interval time.Duration
	onDue    func()
	stopCh   chan struct{}
	stopOnce sync.Once
	log      *zerolog.Logger
}

// NewScheduler creates a Scheduler that checks every interval and calls
// onDue when a refresh is due.
func NewScheduler(store *settings.Store, interval time.Duration, onDue func(), log *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		store:    store,
		interval: interval,
		onDue:    onDue,
		stopCh:   make(chan struct{}),
		log:      log,
	}
}

// Start launches the background goroutine. It checks immediately on
// startup and then on every tick until Stop is called.
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop signals the background goroutine to exit. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

func (s *Scheduler) loop() {
	s.check()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.check()
		case <-s.stopCh:
			s.log.Debug().Msg("refresh scheduler stopped")
			return
		}
	}
}

// check runs the callback and stamps the refresh time if one is due.
func (s *Scheduler) check() {
	freq := s.store.UpdateFrequency()
	last := s.store.LastUpdate()
	now := time.Now()

	if !Due(last, freq, now) {
		return
	}

	s.log.Info().
		Str("frequency", string(freq)).
		Time("last", last).
		Msg("starting automatic refresh")

	s.onDue()

	if err := s.store.SetLastUpdate(now); err != nil {
		s.log.Warn().Err(err).Msg("failed to record refresh time")
		return
	}
	s.log.Info().Msg("automatic refresh done")
}
