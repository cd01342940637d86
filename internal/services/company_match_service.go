package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/models"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/scoring"
	"github.com/jobmatcher/backend/internal/utils"
)

const (
	defaultCompanyMatchLimit = 50
	maxCompanyMatchLimit     = 200

	embeddingWeight = 0.75
	keywordWeight   = 0.25

	// what a like is worth when the candidate has no analyzed CV to score
	missingCvScore = 0.10
)

type CompanyMatchItem struct {
	JobID             string    `json:"job_id"`
	JobTitle          string    `json:"job_title"`
	CandidateUsername string    `json:"candidate_username"`
	Score             float64   `json:"score"`
	Reasons           []string  `json:"reasons"`
	LikedAt           time.Time `json:"liked_at"`
}

type CompanyMatchService interface {
	Matches(ctx context.Context, ident auth.Identity, limit *int) ([]CompanyMatchItem, error)
}

type companyMatchService struct {
	cvs    pgrepo.CvFileRepository
	jobs   pgrepo.JobRepository
	swipes pgrepo.SwipeRepository
	log    *logrus.Logger
}

func NewCompanyMatchService(
	cvs pgrepo.CvFileRepository,
	jobs pgrepo.JobRepository,
	swipes pgrepo.SwipeRepository,
	log *logrus.Logger,
) CompanyMatchService {
	if log == nil {
		log = logrus.New()
	}
	return &companyMatchService{cvs: cvs, jobs: jobs, swipes: swipes, log: log}
}

func (s *companyMatchService) Matches(ctx context.Context, ident auth.Identity, limitArg *int) ([]CompanyMatchItem, error) {
	const op = "CompanyMatchService.Matches"

	limit := defaultCompanyMatchLimit
	if limitArg != nil {
		limit = clampInt(*limitArg, 1, maxCompanyMatchLimit)
	}

	myJobs, err := s.jobs.FindByOwnerAndStatus(ctx, ident.Username, models.JobPublished)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load jobs", err)
	}
	if len(myJobs) == 0 {
		return []CompanyMatchItem{}, nil
	}

	jobsByID := make(map[string]*models.Job, len(myJobs))
	jobIDs := make([]string, 0, len(myJobs))
	for i := range myJobs {
		jobsByID[myJobs[i].ID] = &myJobs[i]
		jobIDs = append(jobIDs, myJobs[i].ID)
	}

	likes, err := s.swipes.FindByJobIDsAndAction(ctx, jobIDs, models.SwipeLike)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load swipes", err)
	}

	items := make([]CompanyMatchItem, 0, len(likes))
	for _, like := range likes {
		job, ok := jobsByID[like.JobID]
		if !ok {
			continue
		}
		items = append(items, s.scoreLike(ctx, job, &like))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].LikedAt.After(items[j].LikedAt)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *companyMatchService) scoreLike(ctx context.Context, job *models.Job, like *models.JobSwipe) CompanyMatchItem {
	item := CompanyMatchItem{
		JobID:             job.ID,
		JobTitle:          job.Title,
		CandidateUsername: like.CandidateUsername,
		LikedAt:           like.CreatedAt,
	}

	// a liking candidate without an analyzed CV still surfaces, with a
	// floor score marking the gap
	cv, err := s.cvs.FindFirstByOwnerAndStatus(ctx, like.CandidateUsername, models.CvParsed)
	if err != nil {
		item.Score = missingCvScore
		item.Reasons = []string{"cv_unavailable"}
		return item
	}

	var cvText string
	var cvEmbedding []float64
	if analysis, aerr := cv.Analysis(); aerr != nil {
		s.log.WithError(aerr).WithField("cv_id", cv.ID).Warn("stored cv analysis not decodable")
	} else if analysis != nil {
		cvText = analysis.Text
		cvEmbedding = analysis.EmbeddingVector()
	}
	cvTokens := scoring.Tokenize(cvText)
	jobTokens := scoring.Tokenize(job.SearchText())
	jobEmbedding := job.EmbeddingVector()

	keywordScore := scoring.Jaccard(cvTokens, jobTokens)

	score := keywordScore
	if len(cvEmbedding) > 0 && len(jobEmbedding) > 0 && len(cvEmbedding) == len(jobEmbedding) {
		embScore := scoring.Remap01(scoring.Cosine(cvEmbedding, jobEmbedding))
		score = embeddingWeight*embScore + keywordWeight*keywordScore
	}
	item.Score = scoring.Round(score, 4)

	item.Reasons = scoring.TopOverlap(cvTokens, jobTokens, 5)
	if len(item.Reasons) == 0 {
		item.Reasons = []string{"textual_match"}
	}
	return item
}
