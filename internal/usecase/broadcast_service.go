package usecase

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/sourcegraph/conc"

	"github.com/matchpulse/matchpulse/internal/domain/match"
	"github.com/matchpulse/matchpulse/internal/domain/team"
	"github.com/matchpulse/matchpulse/internal/platform/id"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

const (
	EventConnected        = "connected"
	EventLiveUpdate       = "live-update"
	EventScanningInsight  = "scanning-insight"
	EventPredictionUpdate = "prediction-update"
)

// Event is one server-push message: an id, an event name, and a JSON payload.
type Event struct {
	ID   string
	Name string
	Data []byte
}

// EventSink receives broadcast events. The first send error permanently
// removes the sink; delivery is at-most-once, best-effort.
type EventSink interface {
	Send(event Event) error
}

type BroadcastConfig struct {
	LiveInterval       time.Duration
	PredictionInterval time.Duration
	ScanWindow         time.Duration
	PredictionWindow   time.Duration
}

// BroadcastService owns the subscriber set and the two periodic producers:
// live match state on the short cadence, prediction refreshes on the long
// one. Subscribers may pass a last-seen event id on reconnect; it is accepted
// and ignored, nothing is replayed.
type BroadcastService struct {
	matchRepo   match.Repository
	teamRepo    team.Repository
	predictions *PredictionService
	idGen       id.Generator
	cfg         BroadcastConfig
	logger      *logging.Logger
	now         func() time.Time

	mu   sync.RWMutex
	subs map[string]EventSink

	started  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

func NewBroadcastService(
	matchRepo match.Repository,
	teamRepo team.Repository,
	predictions *PredictionService,
	idGen id.Generator,
	cfg BroadcastConfig,
	logger *logging.Logger,
) *BroadcastService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewRandomGenerator()
	}
	if cfg.LiveInterval <= 0 {
		cfg.LiveInterval = 30 * time.Second
	}
	if cfg.PredictionInterval <= 0 {
		cfg.PredictionInterval = 60 * time.Second
	}
	if cfg.ScanWindow <= 0 {
		cfg.ScanWindow = 7 * 24 * time.Hour
	}
	if cfg.PredictionWindow <= 0 {
		cfg.PredictionWindow = 7 * 24 * time.Hour
	}

	return &BroadcastService{
		matchRepo:   matchRepo,
		teamRepo:    teamRepo,
		predictions: predictions,
		idGen:       idGen,
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
		subs:        make(map[string]EventSink),
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Register sends the connected handshake and then adds the subscriber to the
// fan-out set. The lastSeenID reconnect hint is accepted for protocol
// compatibility only.
func (s *BroadcastService) Register(sink EventSink, lastSeenID string) (string, error) {
	if sink == nil {
		return "", fmt.Errorf("%w: sink is required", ErrInvalidInput)
	}

	subID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate subscriber id: %w", err)
	}

	payload, err := sonic.Marshal(map[string]any{
		"message":   "Connected to analysis stream",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("encode handshake: %w", err)
	}

	// The handshake goes out before the sink joins the fan-out set, so a
	// ticking broadcast can never deliver a live update ahead of it.
	if err := sink.Send(Event{ID: s.nextEventID(), Name: EventConnected, Data: payload}); err != nil {
		return "", fmt.Errorf("send handshake: %w", err)
	}

	s.mu.Lock()
	s.subs[subID] = sink
	s.mu.Unlock()

	if lastSeenID != "" {
		s.logger.Debug("subscriber supplied last-seen event id, no replay performed",
			"subscriber_id", subID,
			"last_seen_id", lastSeenID,
		)
	}
	return subID, nil
}

func (s *BroadcastService) Unregister(subID string) {
	s.mu.Lock()
	delete(s.subs, subID)
	s.mu.Unlock()
}

// SubscriberCount reports the active set size, for health reporting.
func (s *BroadcastService) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Start launches the periodic producers. It returns immediately; Stop ends
// both tickers and waits for the producer goroutine to exit.
func (s *BroadcastService) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.done)

		liveTicker := time.NewTicker(s.cfg.LiveInterval)
		defer liveTicker.Stop()
		predictionTicker := time.NewTicker(s.cfg.PredictionInterval)
		defer predictionTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-liveTicker.C:
				s.BroadcastLive(ctx)
			case <-predictionTicker.C:
				s.BroadcastPredictions(ctx)
			}
		}
	}()
}

func (s *BroadcastService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	if s.started.Load() {
		<-s.done
	}
}

// BroadcastLive pushes one live-update per LIVE match and one
// scanning-insight per SCHEDULED match kicking off inside the scan window.
func (s *BroadcastService) BroadcastLive(ctx context.Context) {
	if s.SubscriberCount() == 0 {
		return
	}

	names := newTeamNameCache(s.teamRepo)

	live, err := s.matchRepo.ListByStatus(ctx, match.StatusLive)
	if err != nil {
		s.logger.WarnContext(ctx, "live broadcast skipped", "error", err)
		return
	}
	for _, item := range live {
		home, away, err := names.pair(ctx, item)
		if err != nil {
			s.logger.WarnContext(ctx, "live update skipped", "match_id", item.ID, "error", err)
			continue
		}
		payload, err := sonic.Marshal(map[string]any{
			"match_id":   item.ID,
			"home_team":  home,
			"away_team":  away,
			"home_score": scoreOrZero(item.HomeScore),
			"away_score": scoreOrZero(item.AwayScore),
			"status":     string(item.Status),
			"timestamp":  s.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "live update encode failed", "match_id", item.ID, "error", err)
			continue
		}
		s.broadcast(ctx, Event{ID: s.nextEventID(), Name: EventLiveUpdate, Data: payload})
	}

	scheduled, err := s.matchRepo.ListByStatus(ctx, match.StatusScheduled)
	if err != nil {
		s.logger.WarnContext(ctx, "scanning insight broadcast skipped", "error", err)
		return
	}
	now := s.now()
	for _, item := range scheduled {
		if !item.MatchDate.After(now) || item.MatchDate.After(now.Add(s.cfg.ScanWindow)) {
			continue
		}
		home, away, err := names.pair(ctx, item)
		if err != nil {
			s.logger.WarnContext(ctx, "scanning insight skipped", "match_id", item.ID, "error", err)
			continue
		}
		payload, err := sonic.Marshal(map[string]any{
			"match_id":   item.ID,
			"message":    fmt.Sprintf("Analyzing match %d: %s vs %s", item.ID, home, away),
			"match_date": item.MatchDate.UTC().Format(time.RFC3339),
			"timestamp":  s.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "scanning insight encode failed", "match_id", item.ID, "error", err)
			continue
		}
		s.broadcast(ctx, Event{ID: s.nextEventID(), Name: EventScanningInsight, Data: payload})
	}
}

// BroadcastPredictions pushes a refreshed prediction per match kicking off
// inside the near-term window.
func (s *BroadcastService) BroadcastPredictions(ctx context.Context) {
	if s.SubscriberCount() == 0 {
		return
	}

	now := s.now()
	upcoming, err := s.matchRepo.ListByDateRange(ctx, now, now.Add(s.cfg.PredictionWindow))
	if err != nil {
		s.logger.WarnContext(ctx, "prediction broadcast skipped", "error", err)
		return
	}

	names := newTeamNameCache(s.teamRepo)
	for _, item := range upcoming {
		pred, err := s.predictions.GetPrediction(ctx, item.ID)
		if err != nil {
			s.logger.WarnContext(ctx, "prediction broadcast row skipped",
				"match_id", item.ID,
				"error", err,
			)
			continue
		}
		home, away, err := names.pair(ctx, item)
		if err != nil {
			s.logger.WarnContext(ctx, "prediction update skipped", "match_id", item.ID, "error", err)
			continue
		}
		payload, err := sonic.Marshal(map[string]any{
			"match_id":             item.ID,
			"home_team":            home,
			"away_team":            away,
			"home_win_probability": pred.HomeWinProbability,
			"draw_probability":     pred.DrawProbability,
			"away_win_probability": pred.AwayWinProbability,
			"predicted_home_score": pred.PredictedHomeScore,
			"predicted_away_score": pred.PredictedAwayScore,
			"confidence_score":     pred.ConfidenceScore,
			"timestamp":            s.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			s.logger.WarnContext(ctx, "prediction update encode failed", "match_id", item.ID, "error", err)
			continue
		}
		s.broadcast(ctx, Event{ID: s.nextEventID(), Name: EventPredictionUpdate, Data: payload})
	}
}

// broadcast fans the event out to a snapshot of the subscriber set. Each
// send runs independently; a failing subscriber is pruned without disturbing
// the rest of the fan-out.
func (s *BroadcastService) broadcast(ctx context.Context, event Event) {
	type target struct {
		id   string
		sink EventSink
	}

	s.mu.RLock()
	targets := make([]target, 0, len(s.subs))
	for subID, sink := range s.subs {
		targets = append(targets, target{id: subID, sink: sink})
	}
	s.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var wg conc.WaitGroup
	for _, t := range targets {
		t := t
		wg.Go(func() {
			if err := t.sink.Send(event); err != nil {
				s.Unregister(t.id)
				s.logger.WarnContext(ctx, "subscriber pruned after failed send",
					"subscriber_id", t.id,
					"event", event.Name,
					"error", err,
				)
			}
		})
	}
	wg.Wait()
}

func (s *BroadcastService) nextEventID() string {
	return strconv.FormatInt(s.now().UnixMilli(), 10)
}

func scoreOrZero(score *int) int {
	if score == nil {
		return 0
	}
	return *score
}

// teamNameCache memoizes name lookups for the duration of one broadcast
// cycle so a match list does not hit the team repo twice per team.
type teamNameCache struct {
	repo  team.Repository
	names map[int64]string
}

func newTeamNameCache(repo team.Repository) *teamNameCache {
	return &teamNameCache{repo: repo, names: make(map[int64]string)}
}

func (c *teamNameCache) pair(ctx context.Context, item match.Match) (string, string, error) {
	home, err := c.name(ctx, item.HomeTeamID)
	if err != nil {
		return "", "", err
	}
	away, err := c.name(ctx, item.AwayTeamID)
	if err != nil {
		return "", "", err
	}
	return home, away, nil
}

func (c *teamNameCache) name(ctx context.Context, teamID int64) (string, error) {
	if name, ok := c.names[teamID]; ok {
		return name, nil
	}
	row, found, err := c.repo.GetByID(ctx, teamID)
	if err != nil {
		return "", fmt.Errorf("resolve team %d: %w", teamID, err)
	}
	if !found {
		return "", fmt.Errorf("%w: team %d", ErrNotFound, teamID)
	}
	c.names[teamID] = row.Name
	return row.Name, nil
}
