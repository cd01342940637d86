package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/providers/ai"
	pgrepo "github.com/jobmatcher/backend/internal/repositories/postgres"
	"github.com/jobmatcher/backend/internal/storage"
	"github.com/jobmatcher/backend/internal/utils"
)

type CvUploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

// CvAnalysisView exposes the analysis alongside the processing state, so a
// client can render both a PARSED result and the FAILED error message.
type CvAnalysisView struct {
	CvID         string             `json:"cv_id"`
	Status       string             `json:"status"`
	AnalyzedAt   *time.Time         `json:"analyzed_at,omitempty"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Analysis     *models.CvAnalysis `json:"analysis,omitempty"`
}

type CvService interface {
	Upload(ctx context.Context, ident auth.Identity, in CvUploadInput) (*models.CvFile, error)
	Analyze(ctx context.Context, ident auth.Identity, cvID string, force bool) (*models.CvAnalysis, error)
	ListMine(ctx context.Context, ident auth.Identity) ([]models.CvFile, error)
	GetMine(ctx context.Context, ident auth.Identity, cvID string) (*models.CvFile, error)
	Download(ctx context.Context, ident auth.Identity, cvID string) (*models.CvFile, []byte, error)
	GetAnalysis(ctx context.Context, ident auth.Identity, cvID string) (*CvAnalysisView, error)

	// ParseText feeds raw text through the parser without touching storage,
	// for troubleshooting the AI pipeline.
	ParseText(ctx context.Context, text string) (*ai.ParseResponse, error)
}

type cvService struct {
	cvs          pgrepo.CvFileRepository
	profiles     CandidateProfileService
	store        storage.Storage
	parser       ai.CvParser
	maxSizeBytes int64
	allowedTypes []string
	log          *logrus.Logger
}

func NewCvService(
	cvs pgrepo.CvFileRepository,
	profiles CandidateProfileService,
	store storage.Storage,
	parser ai.CvParser,
	maxSizeBytes int64,
	allowedTypes []string,
	log *logrus.Logger,
) CvService {
	if log == nil {
		log = logrus.New()
	}
	return &cvService{
		cvs:          cvs,
		profiles:     profiles,
		store:        store,
		parser:       parser,
		maxSizeBytes: maxSizeBytes,
		allowedTypes: allowedTypes,
		log:          log,
	}
}

func (s *cvService) Upload(ctx context.Context, ident auth.Identity, in CvUploadInput) (*models.CvFile, error) {
	const op = "CvService.Upload"

	if len(in.Content) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "File mancante", nil)
	}

	// the declared size never shrinks what was actually received
	size := in.Size
	if n := int64(len(in.Content)); n > size {
		size = n
	}
	if s.maxSizeBytes > 0 && size > s.maxSizeBytes {
		return nil, utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("File troppo grande: %d", size), nil)
	}

	contentType := trim(in.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ext := fileExt(in.Filename)
	if !s.typeAllowed(contentType) && !extAllowed(ext) {
		if ext != "" {
			return nil, utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("Tipo file non consentito: .%s", ext), nil)
		}
		return nil, utils.E(utils.CodeInvalidArgument, op, fmt.Sprintf("Tipo file non consentito: %s", contentType), nil)
	}

	storedName := uuid.NewString()
	if ext != "" {
		storedName += "." + ext
	}
	path, err := s.store.Save(ctx, storedName, in.Content)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "errore durante il salvataggio del file", err)
	}

	filename := trim(in.Filename)
	if filename == "" {
		filename = "cv"
	}
	cv := &models.CvFile{
		ID:               uuid.NewString(),
		OwnerUsername:    ident.Username,
		OriginalFilename: filename,
		ContentType:      contentType,
		SizeBytes:        size,
		StoragePath:      path,
		Status:           models.CvUploaded,
	}
	if err := s.cvs.Create(ctx, cv); err != nil {
		// the stored blob must not outlive a failed insert
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			s.log.WithError(delErr).WithField("path", path).Warn("orphan cv blob not removed")
		}
		return nil, utils.E(utils.CodeInternal, op, "errore durante il salvataggio del CV", err)
	}
	return cv, nil
}

func (s *cvService) Analyze(ctx context.Context, ident auth.Identity, cvID string, force bool) (*models.CvAnalysis, error) {
	const op = "CvService.Analyze"

	cv, err := s.loadForIdentity(ctx, ident, cvID, op)
	if err != nil {
		return nil, err
	}

	if !force && cv.Status == models.CvParsing {
		return nil, utils.E(utils.CodeConflict, op, "CV già in analisi", nil)
	}
	if !force && cv.Status == models.CvParsed && cv.HasAnalysis() {
		analysis, err := cv.Analysis()
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "analisi salvata non decodificabile", err)
		}
		return analysis, nil
	}

	cv.Status = models.CvParsing
	cv.ErrorMessage = ""
	if err := s.cvs.Update(ctx, cv); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "CV già in analisi", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update cv", err)
	}

	content, err := s.store.Load(ctx, cv.StoragePath)
	if err != nil {
		return nil, s.failAnalysis(ctx, cv, op, err)
	}

	resp, err := s.parser.ParseResource(ctx, content, cv.OriginalFilename, cv.ContentType)
	if err != nil {
		return nil, s.failAnalysis(ctx, cv, op, err)
	}

	analysis := &models.CvAnalysis{
		Text:      resp.Text,
		Sections:  resp.Sections,
		Embedding: resp.Embedding,
		ModelUsed: resp.ModelUsed,
	}
	if err := cv.SetAnalysis(analysis); err != nil {
		return nil, s.failAnalysis(ctx, cv, op, err)
	}
	now := time.Now().UTC()
	cv.AnalyzedAt = &now
	cv.Status = models.CvParsed
	cv.ErrorMessage = ""
	if err := s.cvs.Update(ctx, cv); err != nil {
		return nil, s.failAnalysis(ctx, cv, op, err)
	}

	// the freshly analyzed CV becomes the active one; losing this write only
	// degrades match quality, it does not undo the analysis
	if err := s.profiles.SetActiveCv(ctx, cv.OwnerUsername, cv.ID, analysis.SkillList()); err != nil {
		s.log.WithError(err).WithField("cv_id", cv.ID).Warn("active cv update failed")
	}

	return analysis, nil
}

// failAnalysis records the failure on the file (best-effort) and classifies
// the cause: an unreachable AI service is retryable, everything else reads as
// a problem with the document itself.
func (s *cvService) failAnalysis(ctx context.Context, cv *models.CvFile, op string, cause error) error {
	cv.Status = models.CvFailed
	cv.ErrorMessage = utils.Truncate(cause.Error(), 500)
	if err := s.cvs.Update(ctx, cv); err != nil {
		s.log.WithError(err).WithField("cv_id", cv.ID).Warn("cv failure not recorded")
	}

	if ai.IsTransport(cause) {
		return utils.E(utils.CodeUnavailable, op, "Servizio AI non disponibile", cause)
	}
	return utils.E(utils.CodeInvalidArgument, op, "Impossibile analizzare CV: "+utils.Truncate(cause.Error(), 200), cause)
}

func (s *cvService) ListMine(ctx context.Context, ident auth.Identity) ([]models.CvFile, error) {
	const op = "CvService.ListMine"

	var (
		rows []models.CvFile
		err  error
	)
	if ident.CanAccessAll() {
		rows, err = s.cvs.FindAll(ctx)
	} else {
		rows, err = s.cvs.FindByOwner(ctx, ident.Username)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list cvs", err)
	}
	return rows, nil
}

func (s *cvService) GetMine(ctx context.Context, ident auth.Identity, cvID string) (*models.CvFile, error) {
	const op = "CvService.GetMine"
	return s.loadForIdentity(ctx, ident, cvID, op)
}

func (s *cvService) Download(ctx context.Context, ident auth.Identity, cvID string) (*models.CvFile, []byte, error) {
	const op = "CvService.Download"

	cv, err := s.loadForIdentity(ctx, ident, cvID, op)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.store.Load(ctx, cv.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, utils.E(utils.CodeNotFound, op, "File non trovato", err)
		}
		return nil, nil, utils.E(utils.CodeInternal, op, "errore durante la lettura del file", err)
	}
	return cv, content, nil
}

func (s *cvService) GetAnalysis(ctx context.Context, ident auth.Identity, cvID string) (*CvAnalysisView, error) {
	const op = "CvService.GetAnalysis"

	cv, err := s.loadForIdentity(ctx, ident, cvID, op)
	if err != nil {
		return nil, err
	}

	view := &CvAnalysisView{
		CvID:         cv.ID,
		Status:       string(cv.Status),
		AnalyzedAt:   cv.AnalyzedAt,
		ErrorMessage: cv.ErrorMessage,
	}
	if cv.HasAnalysis() {
		analysis, err := cv.Analysis()
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "analisi salvata non decodificabile", err)
		}
		view.Analysis = analysis
	}
	return view, nil
}

func (s *cvService) ParseText(ctx context.Context, text string) (*ai.ParseResponse, error) {
	const op = "CvService.ParseText"

	if trim(text) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "testo mancante", nil)
	}
	resp, err := s.parser.ParseText(ctx, text)
	if err != nil {
		if ai.IsTransport(err) {
			return nil, utils.E(utils.CodeUnavailable, op, "Servizio AI non disponibile", err)
		}
		return nil, utils.E(utils.CodeInvalidArgument, op, "Impossibile analizzare il testo: "+utils.Truncate(err.Error(), 200), err)
	}
	return resp, nil
}

func (s *cvService) loadForIdentity(ctx context.Context, ident auth.Identity, cvID, op string) (*models.CvFile, error) {
	var (
		cv  *models.CvFile
		err error
	)
	if ident.CanAccessAll() {
		cv, err = s.cvs.FindByID(ctx, cvID)
	} else {
		cv, err = s.cvs.FindByIDAndOwner(ctx, cvID, ident.Username)
	}
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "CV non trovato", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load cv", err)
	}
	return cv, nil
}

func (s *cvService) typeAllowed(contentType string) bool {
	if len(s.allowedTypes) == 0 {
		return true
	}
	base := contentType
	if i := strings.Index(base, ";"); i >= 0 {
		base = base[:i]
	}
	base = strings.ToLower(trim(base))
	for _, t := range s.allowedTypes {
		if strings.ToLower(trim(t)) == base {
			return true
		}
	}
	return false
}

func extAllowed(ext string) bool {
	return ext == "pdf" || ext == "docx"
}

func fileExt(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return strings.ToLower(ext)
}
