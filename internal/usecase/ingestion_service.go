package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/matchpulse/matchpulse/internal/domain/competition"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
)

const (
	ingestionStatusSuccess = "success"
	ingestionStatusSkipped = "skipped"
	ingestionStatusFailed  = "failed"
)

// IngestionTaskResult records the outcome of one competition/kind sync task.
type IngestionTaskResult struct {
	CompetitionID int64
	Kind          string
	Status        string
	Message       string
	Fetched       int
	Created       int
	Updated       int
	DurationMs    int64
}

type IngestionResult struct {
	SeasonID     int64
	Tasks        []IngestionTaskResult
	SuccessCount int
	SkippedCount int
	FailedCount  int
}

// IngestionService drives full sync runs: every competition, fixtures and
// standings, fanned out on a bounded worker pool. A run aborts before any
// provider traffic when no current season is configured.
type IngestionService struct {
	matches         *MatchService
	standings       *StandingsService
	competitionRepo competition.Repository
	seasonRepo      competition.SeasonRepository
	workerCount     int
	logger          *logging.Logger
}

func NewIngestionService(
	matches *MatchService,
	standings *StandingsService,
	competitionRepo competition.Repository,
	seasonRepo competition.SeasonRepository,
	workerCount int,
	logger *logging.Logger,
) *IngestionService {
	if workerCount < 1 {
		workerCount = 4
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &IngestionService{
		matches:         matches,
		standings:       standings,
		competitionRepo: competitionRepo,
		seasonRepo:      seasonRepo,
		workerCount:     workerCount,
		logger:          logger,
	}
}

// SyncFixtures runs the fixture pipeline for one competition against the
// current season.
func (s *IngestionService) SyncFixtures(ctx context.Context, competitionID int64) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncFixtures")
	defer span.End()

	season, err := s.currentSeason(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	return s.matches.SyncFixtures(ctx, competitionID, season.ID)
}

// SyncStandings runs the standings pipeline for one competition against the
// current season.
func (s *IngestionService) SyncStandings(ctx context.Context, competitionID int64) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncStandings")
	defer span.End()

	season, err := s.currentSeason(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	return s.standings.SyncStandings(ctx, competitionID, season.ID)
}

// SyncAll fans out fixtures and standings sync for every competition. Tasks
// run concurrently on a bounded pool; one failing competition does not stop
// the others.
func (s *IngestionService) SyncAll(ctx context.Context) (IngestionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncAll")
	defer span.End()

	season, err := s.currentSeason(ctx)
	if err != nil {
		return IngestionResult{}, err
	}

	competitions, err := s.competitionRepo.List(ctx)
	if err != nil {
		return IngestionResult{}, fmt.Errorf("list competitions: %w", err)
	}

	result := IngestionResult{SeasonID: season.ID}
	if len(competitions) == 0 {
		return result, nil
	}

	type task struct {
		competitionID int64
		kind          string
	}
	tasks := make([]task, 0, len(competitions)*2)
	for _, comp := range competitions {
		tasks = append(tasks,
			task{competitionID: comp.ID, kind: "fixtures"},
			task{competitionID: comp.ID, kind: "standings"},
		)
	}

	pool, err := ants.NewPool(s.workerCount)
	if err != nil {
		return IngestionResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan IngestionTaskResult, len(tasks))

	var successCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, item := range tasks {
		item := item
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := IngestionTaskResult{
				CompetitionID: item.competitionID,
				Kind:          item.kind,
			}

			var syncResult SyncResult
			var syncErr error
			switch item.kind {
			case "fixtures":
				syncResult, syncErr = s.matches.SyncFixtures(ctx, item.competitionID, season.ID)
			default:
				syncResult, syncErr = s.standings.SyncStandings(ctx, item.competitionID, season.ID)
			}

			row.Fetched = syncResult.Fetched
			row.Created = syncResult.Created
			row.Updated = syncResult.Updated
			row.DurationMs = time.Since(start).Milliseconds()
			switch {
			case syncErr != nil:
				row.Status = ingestionStatusFailed
				row.Message = syncErr.Error()
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "sync task failed",
					"competition_id", item.competitionID,
					"kind", item.kind,
					"error", syncErr,
				)
			case syncResult.Skipped:
				row.Status = ingestionStatusSkipped
				row.Message = "no provider mapping"
				skippedCount.Add(1)
			default:
				row.Status = ingestionStatusSuccess
				successCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return IngestionResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		if result.Tasks[i].CompetitionID != result.Tasks[j].CompetitionID {
			return result.Tasks[i].CompetitionID < result.Tasks[j].CompetitionID
		}
		return result.Tasks[i].Kind < result.Tasks[j].Kind
	})

	result.SuccessCount = int(successCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "full sync finished",
		"season_id", season.ID,
		"success", result.SuccessCount,
		"skipped", result.SkippedCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

// SyncLive folds the current in-play feed into every competition's matches.
func (s *IngestionService) SyncLive(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.SyncLive")
	defer span.End()

	competitions, err := s.competitionRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list competitions: %w", err)
	}

	for _, comp := range competitions {
		if _, err := s.matches.SyncLiveSnapshots(ctx, comp.ID); err != nil {
			s.logger.WarnContext(ctx, "live sync failed",
				"competition_id", comp.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (s *IngestionService) currentSeason(ctx context.Context) (competition.Season, error) {
	season, found, err := s.seasonRepo.GetCurrent(ctx)
	if err != nil {
		return competition.Season{}, fmt.Errorf("load current season: %w", err)
	}
	if !found {
		return competition.Season{}, fmt.Errorf("%w: sync aborted", ErrNoCurrentSeason)
	}
	return season, nil
}
