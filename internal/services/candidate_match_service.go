package services

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/models"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/scoring"
	"github.com/jobmatcher/backend/internal/utils"
)

const (
	defaultMatchRadiusKm = 25.0
	minMatchRadiusKm     = 1.0
	maxMatchRadiusKm     = 500.0

	defaultCandidateMatchLimit = 20
	maxCandidateMatchLimit     = 100

	proximityWeight = 0.35
	textWeight      = 0.65
)

type MatchQuery struct {
	Lat      *float64
	Lon      *float64
	RadiusKm *float64
	Limit    *int
}

func (q MatchQuery) radius() float64 {
	if q.RadiusKm == nil {
		return defaultMatchRadiusKm
	}
	return clampFloat(*q.RadiusKm, minMatchRadiusKm, maxMatchRadiusKm)
}

func (q MatchQuery) limit(def, max int) int {
	if q.Limit == nil {
		return def
	}
	return clampInt(*q.Limit, 1, max)
}

type MatchItem struct {
	Job        *JobDTO  `json:"job"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
}

type CandidateMatchService interface {
	Matches(ctx context.Context, ident auth.Identity, q MatchQuery) ([]MatchItem, error)
}

type candidateMatchService struct {
	cvs      pgrepo.CvFileRepository
	profiles pgrepo.CandidateProfileRepository
	jobs     pgrepo.JobRepository
	swipes   pgrepo.SwipeRepository
	log      *logrus.Logger
}

func NewCandidateMatchService(
	cvs pgrepo.CvFileRepository,
	profiles pgrepo.CandidateProfileRepository,
	jobs pgrepo.JobRepository,
	swipes pgrepo.SwipeRepository,
	log *logrus.Logger,
) CandidateMatchService {
	if log == nil {
		log = logrus.New()
	}
	return &candidateMatchService{cvs: cvs, profiles: profiles, jobs: jobs, swipes: swipes, log: log}
}

func (s *candidateMatchService) Matches(ctx context.Context, ident auth.Identity, q MatchQuery) ([]MatchItem, error) {
	const op = "CandidateMatchService.Matches"

	cv, err := s.resolveActiveParsedCv(ctx, ident.Username, op)
	if err != nil {
		return nil, err
	}

	var cvText string
	var cvEmbedding []float64
	if analysis, aerr := cv.Analysis(); aerr != nil {
		// a corrupt stored analysis degrades to keyword-less scoring,
		// which must leave a trace
		s.log.WithError(aerr).WithField("cv_id", cv.ID).Warn("stored cv analysis not decodable")
	} else if analysis != nil {
		cvText = analysis.Text
		cvEmbedding = analysis.EmbeddingVector()
	}
	cvTokens := scoring.Tokenize(cvText)

	likes, err := s.swipes.FindByCandidateAndAction(ctx, ident.Username, models.SwipeLike)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load swipes", err)
	}
	if len(likes) == 0 {
		return []MatchItem{}, nil
	}

	jobIDs := make([]string, 0, len(likes))
	for _, like := range likes {
		jobIDs = append(jobIDs, like.JobID)
	}
	jobRows, err := s.jobs.FindByIDs(ctx, jobIDs)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load jobs", err)
	}
	jobsByID := make(map[string]*models.Job, len(jobRows))
	for i := range jobRows {
		if jobRows[i].Status == models.JobPublished {
			jobsByID[jobRows[i].ID] = &jobRows[i]
		}
	}

	radius := q.radius()
	items := make([]MatchItem, 0, len(likes))

	// likes come back most recent first, so stable sort keeps that order
	// among equal scores
	for _, like := range likes {
		job, ok := jobsByID[like.JobID]
		if !ok {
			continue
		}

		distance := scoring.HaversineKm(q.Lat, q.Lon, job.Lat, job.Lon)
		if distance != nil && *distance > radius {
			continue
		}
		proximity := scoring.ProximityScore(distance, radius)

		jobTokens := scoring.Tokenize(job.SearchText())
		jobEmbedding := job.EmbeddingVector()

		useEmbedding := len(cvEmbedding) > 0 && len(jobEmbedding) > 0 && len(cvEmbedding) == len(jobEmbedding)
		var textScore float64
		if useEmbedding {
			textScore = scoring.Remap01(scoring.Cosine(cvEmbedding, jobEmbedding))
		} else {
			textScore = scoring.Jaccard(cvTokens, jobTokens)
		}

		var reasons []string
		if useEmbedding {
			reasons = append([]string{"vector_similarity"}, scoring.TopOverlap(cvTokens, jobTokens, 4)...)
		} else {
			reasons = scoring.TopOverlap(cvTokens, jobTokens, 5)
		}

		items = append(items, MatchItem{
			Job:        ToJobDTO(job),
			DistanceKm: distance,
			Score:      scoring.Round(proximityWeight*proximity+textWeight*textScore, 4),
			Reasons:    reasons,
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Score > items[j].Score })

	limit := q.limit(defaultCandidateMatchLimit, maxCandidateMatchLimit)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// resolveActiveParsedCv prefers the profile's active CV pointer and falls back
// to the most recently uploaded PARSED file. A stale pointer is an error, not
// a silent fallback.
func (s *candidateMatchService) resolveActiveParsedCv(ctx context.Context, username, op string) (*models.CvFile, error) {
	var activeID *string
	profile, err := s.profiles.FindByOwner(ctx, username)
	if err == nil {
		activeID = profile.ActiveCvFileID
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to load profile", err)
	}

	if activeID != nil && *activeID != "" {
		cv, err := s.cvs.FindByIDAndOwnerAndStatus(ctx, *activeID, username, models.CvParsed)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeInvalidArgument, op,
					"Il CV attivo non è disponibile o non è stato analizzato. Carica e analizza un CV.", nil)
			}
			return nil, utils.E(utils.CodeInternal, op, "failed to load cv", err)
		}
		return cv, nil
	}

	cv, err := s.cvs.FindFirstByOwnerAndStatus(ctx, username, models.CvParsed)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "Carica e analizza un CV prima di vedere i match", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load cv", err)
	}
	return cv, nil
}
