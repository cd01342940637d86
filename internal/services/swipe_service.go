package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/cache"
	"github.com/jobmatcher/backend/internal/models"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/scoring"
	"github.com/jobmatcher/backend/internal/utils"
)

const defaultFeedLimit = 20

type SwipeFeedItem struct {
	Job        *JobDTO  `json:"job"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Score      float64  `json:"score"`
}

type SwipeService interface {
	Feed(ctx context.Context, ident auth.Identity, q MatchQuery) ([]SwipeFeedItem, error)
	Swipe(ctx context.Context, ident auth.Identity, jobID, action string) (*models.JobSwipe, error)
	ListMine(ctx context.Context, ident auth.Identity) ([]models.JobSwipe, error)
}

type swipeService struct {
	jobs     pgrepo.JobRepository
	swipes   pgrepo.SwipeRepository
	cache    cache.Cache // optional
	cacheTTL time.Duration
	log      *logrus.Logger
}

func NewSwipeService(jobs pgrepo.JobRepository, swipes pgrepo.SwipeRepository, c cache.Cache, cacheTTL time.Duration, log *logrus.Logger) SwipeService {
	if log == nil {
		log = logrus.New()
	}
	return &swipeService{jobs: jobs, swipes: swipes, cache: c, cacheTTL: cacheTTL, log: log}
}

// Feed returns published jobs the candidate has not swiped yet, nearest
// first. Text similarity is deliberately left out here: the feed is for
// discovery, the match list is for ranking.
func (s *swipeService) Feed(ctx context.Context, ident auth.Identity, q MatchQuery) ([]SwipeFeedItem, error) {
	const op = "SwipeService.Feed"

	published, err := s.publishedJobs(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load jobs", err)
	}

	swiped, err := s.swipes.FindByCandidate(ctx, ident.Username)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load swipes", err)
	}
	seen := make(map[string]struct{}, len(swiped))
	for _, sw := range swiped {
		seen[sw.JobID] = struct{}{}
	}

	radius := q.radius()
	items := make([]SwipeFeedItem, 0, len(published))
	for i := range published {
		job := &published[i]
		if _, ok := seen[job.ID]; ok {
			continue
		}
		distance := scoring.HaversineKm(q.Lat, q.Lon, job.Lat, job.Lon)
		if distance != nil && *distance > radius {
			continue
		}
		items = append(items, SwipeFeedItem{
			Job:        ToJobDTO(job),
			DistanceKm: distance,
			Score:      scoring.ProximityScore(distance, radius),
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })

	limit := q.limit(defaultFeedLimit, maxCandidateMatchLimit)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *swipeService) Swipe(ctx context.Context, ident auth.Identity, jobID, action string) (*models.JobSwipe, error) {
	const op = "SwipeService.Swipe"

	if trim(jobID) == "" || trim(action) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "jobId e action sono obbligatori", nil)
	}
	parsed, ok := models.ParseSwipeAction(action)
	if !ok {
		return nil, utils.E(utils.CodeInvalidArgument, op, "action non valida (LIKE, DISLIKE)", nil)
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "Job non trovato", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	// non-published jobs are not swipeable, and for non-owners they do not
	// exist at all
	if job.Status != models.JobPublished {
		return nil, utils.E(utils.CodeNotFound, op, "Job non trovato", nil)
	}

	existing, err := s.swipes.FindByCandidateAndJob(ctx, ident.Username, jobID)
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInternal, op, "failed to load swipe", err)
		}
		swipe := &models.JobSwipe{
			ID:                uuid.NewString(),
			CandidateUsername: ident.Username,
			JobID:             jobID,
			Action:            parsed,
		}
		if err := s.swipes.Create(ctx, swipe); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to save swipe", err)
		}
		return swipe, nil
	}

	// re-swiping flips the action in place; created_at keeps the first
	// swipe's timestamp
	existing.Action = parsed
	if err := s.swipes.UpdateAction(ctx, existing); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "swipe modificato da un'altra richiesta", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to save swipe", err)
	}
	return existing, nil
}

func (s *swipeService) ListMine(ctx context.Context, ident auth.Identity) ([]models.JobSwipe, error) {
	const op = "SwipeService.ListMine"

	rows, err := s.swipes.FindByCandidate(ctx, ident.Username)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list swipes", err)
	}
	return rows, nil
}

func (s *swipeService) publishedJobs(ctx context.Context) ([]models.Job, error) {
	if s.cache != nil {
		var cached []models.Job
		hit, err := s.cache.GetJSON(ctx, cache.KeyPublishedJobs, &cached)
		if err != nil {
			s.log.WithError(err).Warn("feed cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	rows, err := s.jobs.FindByStatus(ctx, models.JobPublished)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.KeyPublishedJobs, rows, s.cacheTTL); err != nil {
			s.log.WithError(err).Warn("feed cache write failed")
		}
	}
	return rows, nil
}
