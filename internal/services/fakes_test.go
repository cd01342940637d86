package services

import (
	"context"
	"sort"
	"time"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/providers/ai"
	"github.com/jobmatcher/backend/internal/utils"
)

// In-memory repository fakes. They preserve the ordering contracts of the
// real queries (most recent first) so the ranking tests exercise the same
// input shape the services see in production.

type fakeCvRepo struct {
	files     []*models.CvFile
	createErr error
	updateErr error
	updates   int
}

func (r *fakeCvRepo) Create(_ context.Context, cv *models.CvFile) error {
	if r.createErr != nil {
		return r.createErr
	}
	cv.Version = 1
	r.files = append(r.files, cv)
	return nil
}

func (r *fakeCvRepo) Update(_ context.Context, cv *models.CvFile) error {
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	cv.Version++
	return nil
}

func (r *fakeCvRepo) FindByID(_ context.Context, id string) (*models.CvFile, error) {
	for _, f := range r.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeCvRepo) FindByIDAndOwner(_ context.Context, id, owner string) (*models.CvFile, error) {
	for _, f := range r.files {
		if f.ID == id && f.OwnerUsername == owner {
			return f, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeCvRepo) FindByIDAndOwnerAndStatus(_ context.Context, id, owner string, status models.CvProcessingStatus) (*models.CvFile, error) {
	for _, f := range r.files {
		if f.ID == id && f.OwnerUsername == owner && f.Status == status {
			return f, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeCvRepo) FindByOwner(_ context.Context, owner string) ([]models.CvFile, error) {
	var out []models.CvFile
	for _, f := range r.files {
		if f.OwnerUsername == owner {
			out = append(out, *f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (r *fakeCvRepo) FindFirstByOwnerAndStatus(_ context.Context, owner string, status models.CvProcessingStatus) (*models.CvFile, error) {
	var best *models.CvFile
	for _, f := range r.files {
		if f.OwnerUsername != owner || f.Status != status {
			continue
		}
		if best == nil || f.UploadedAt.After(best.UploadedAt) {
			best = f
		}
	}
	if best == nil {
		return nil, utils.ErrNotFound
	}
	return best, nil
}

func (r *fakeCvRepo) FindAll(_ context.Context) ([]models.CvFile, error) {
	out := make([]models.CvFile, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, *f)
	}
	return out, nil
}

type fakeJobRepo struct {
	jobs      []*models.Job
	updateErr error
}

func (r *fakeJobRepo) Create(_ context.Context, j *models.Job) error {
	j.Version = 1
	r.jobs = append(r.jobs, j)
	return nil
}

func (r *fakeJobRepo) Update(_ context.Context, j *models.Job) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	j.Version++
	return nil
}

func (r *fakeJobRepo) FindByID(_ context.Context, id string) (*models.Job, error) {
	for _, j := range r.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeJobRepo) FindByIDAndOwner(_ context.Context, id, owner string) (*models.Job, error) {
	for _, j := range r.jobs {
		if j.ID == id && j.OwnerUsername == owner {
			return j, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeJobRepo) FindByIDs(_ context.Context, ids []string) ([]models.Job, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []models.Job
	for _, j := range r.jobs {
		if _, ok := want[j.ID]; ok {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) FindByOwner(_ context.Context, owner string) ([]models.Job, error) {
	var out []models.Job
	for _, j := range r.jobs {
		if j.OwnerUsername == owner {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) FindByStatus(_ context.Context, status models.JobStatus) ([]models.Job, error) {
	var out []models.Job
	for _, j := range r.jobs {
		if j.Status == status {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) FindByOwnerAndStatus(_ context.Context, owner string, status models.JobStatus) ([]models.Job, error) {
	var out []models.Job
	for _, j := range r.jobs {
		if j.OwnerUsername == owner && j.Status == status {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) FindAll(_ context.Context) ([]models.Job, error) {
	out := make([]models.Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	return out, nil
}

type fakeSwipeRepo struct {
	swipes        []*models.JobSwipe
	byJobsQueries int
}

func (r *fakeSwipeRepo) Create(_ context.Context, s *models.JobSwipe) error {
	s.Version = 1
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	r.swipes = append(r.swipes, s)
	return nil
}

func (r *fakeSwipeRepo) UpdateAction(_ context.Context, s *models.JobSwipe) error {
	s.Version++
	return nil
}

func (r *fakeSwipeRepo) FindByCandidateAndJob(_ context.Context, candidate, jobID string) (*models.JobSwipe, error) {
	for _, s := range r.swipes {
		if s.CandidateUsername == candidate && s.JobID == jobID {
			return s, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeSwipeRepo) FindByCandidate(_ context.Context, candidate string) ([]models.JobSwipe, error) {
	var out []models.JobSwipe
	for _, s := range r.swipes {
		if s.CandidateUsername == candidate {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSwipeRepo) FindByCandidateAndAction(_ context.Context, candidate string, action models.SwipeAction) ([]models.JobSwipe, error) {
	var out []models.JobSwipe
	for _, s := range r.swipes {
		if s.CandidateUsername == candidate && s.Action == action {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSwipeRepo) FindByJobIDsAndAction(_ context.Context, jobIDs []string, action models.SwipeAction) ([]models.JobSwipe, error) {
	r.byJobsQueries++
	want := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		want[id] = struct{}{}
	}
	var out []models.JobSwipe
	for _, s := range r.swipes {
		if _, ok := want[s.JobID]; ok && s.Action == action {
			out = append(out, *s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeCandidateProfileRepo struct {
	profiles map[string]*models.CandidateProfile
}

func (r *fakeCandidateProfileRepo) Create(_ context.Context, p *models.CandidateProfile) error {
	if r.profiles == nil {
		r.profiles = map[string]*models.CandidateProfile{}
	}
	p.Version = 1
	r.profiles[p.OwnerUsername] = p
	return nil
}

func (r *fakeCandidateProfileRepo) Update(_ context.Context, p *models.CandidateProfile) error {
	p.Version++
	r.profiles[p.OwnerUsername] = p
	return nil
}

func (r *fakeCandidateProfileRepo) FindByOwner(_ context.Context, owner string) (*models.CandidateProfile, error) {
	if p, ok := r.profiles[owner]; ok {
		return p, nil
	}
	return nil, utils.ErrNotFound
}

type fakeCompanyProfileRepo struct {
	profiles map[string]*models.CompanyProfile
}

func (r *fakeCompanyProfileRepo) Create(_ context.Context, p *models.CompanyProfile) error {
	if r.profiles == nil {
		r.profiles = map[string]*models.CompanyProfile{}
	}
	p.Version = 1
	r.profiles[p.OwnerUsername] = p
	return nil
}

func (r *fakeCompanyProfileRepo) Update(_ context.Context, p *models.CompanyProfile) error {
	p.Version++
	r.profiles[p.OwnerUsername] = p
	return nil
}

func (r *fakeCompanyProfileRepo) FindByOwner(_ context.Context, owner string) (*models.CompanyProfile, error) {
	if p, ok := r.profiles[owner]; ok {
		return p, nil
	}
	return nil, utils.ErrNotFound
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	if r.users == nil {
		r.users = map[string]*models.User{}
	}
	r.users[u.Username] = u
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, utils.ErrNotFound
}

type fakeStorage struct {
	blobs   map[string][]byte
	saveErr error
	loadErr error
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{blobs: map[string][]byte{}}
}

func (s *fakeStorage) Save(_ context.Context, name string, data []byte) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.blobs[name] = data
	return name, nil
}

func (s *fakeStorage) Load(_ context.Context, name string) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	b, ok := s.blobs[name]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return b, nil
}

func (s *fakeStorage) Delete(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	delete(s.blobs, name)
	return nil
}

type fakeParser struct {
	resp  *ai.ParseResponse
	err   error
	calls int
}

func (p *fakeParser) ParseResource(_ context.Context, _ []byte, _ string, _ string) (*ai.ParseResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func (p *fakeParser) ParseText(_ context.Context, _ string) (*ai.ParseResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

type fakeEmbedder struct {
	resp  *ai.EmbedResponse
	err   error
	calls int
}

func (e *fakeEmbedder) EmbedText(_ context.Context, _ string) (*ai.EmbedResponse, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.resp, nil
}

type fakeProfileSetter struct {
	owner  string
	cvID   string
	skills []string
	calls  int
	err    error
}

func (f *fakeProfileSetter) GetMe(context.Context, auth.Identity) (*models.CandidateProfile, error) {
	panic("not used")
}

func (f *fakeProfileSetter) UpsertMe(context.Context, auth.Identity, CandidateProfileUpsert) (*models.CandidateProfile, error) {
	panic("not used")
}

func (f *fakeProfileSetter) SetActiveCv(_ context.Context, owner, cvID string, skills []string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.owner = owner
	f.cvID = cvID
	f.skills = skills
	return nil
}
