package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/models"
	"github.com/jobmatcher/backend/internal/providers/ai"
	"github.com/jobmatcher/backend/internal/utils"
)

var candidateIdent = auth.Identity{Username: "mario", Roles: []string{auth.RoleCandidate}}

type cvFixture struct {
	svc      CvService
	cvs      *fakeCvRepo
	storage  *fakeStorage
	parser   *fakeParser
	profiles *fakeProfileSetter
}

func newCvFixture() *cvFixture {
	f := &cvFixture{
		cvs:      &fakeCvRepo{},
		storage:  newFakeStorage(),
		parser:   &fakeParser{},
		profiles: &fakeProfileSetter{},
	}
	f.svc = NewCvService(f.cvs, f.profiles, f.storage, f.parser,
		1024, []string{"application/pdf"}, nil)
	return f
}

func pdfUpload(content []byte) CvUploadInput {
	return CvUploadInput{
		Filename:    "cv.pdf",
		ContentType: "application/pdf",
		Content:     content,
	}
}

func TestUploadMissingFile(t *testing.T) {
	f := newCvFixture()

	_, err := f.svc.Upload(context.Background(), candidateIdent, pdfUpload(nil))

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "File mancante")
	// nothing must be written before validation passes
	assert.Empty(t, f.storage.blobs)
	assert.Empty(t, f.cvs.files)
}

func TestUploadTooLarge(t *testing.T) {
	f := newCvFixture()

	_, err := f.svc.Upload(context.Background(), candidateIdent, pdfUpload(make([]byte, 2048)))

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "File troppo grande: 2048")
	assert.Empty(t, f.storage.blobs)
}

func TestUploadDeclaredSizeCannotShrinkContent(t *testing.T) {
	f := newCvFixture()

	in := pdfUpload(make([]byte, 2048))
	in.Size = 10

	_, err := f.svc.Upload(context.Background(), candidateIdent, in)

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "File troppo grande: 2048")
	assert.Empty(t, f.storage.blobs)
}

func TestUploadDisallowedType(t *testing.T) {
	f := newCvFixture()

	_, err := f.svc.Upload(context.Background(), candidateIdent, CvUploadInput{
		Filename:    "cv.exe",
		ContentType: "application/x-msdownload",
		Content:     []byte("MZ"),
	})

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "Tipo file non consentito")
	assert.Empty(t, f.storage.blobs)
}

func TestUploadAllowedByExtensionAlone(t *testing.T) {
	f := newCvFixture()

	// declared type is off but the extension is a known document format
	cv, err := f.svc.Upload(context.Background(), candidateIdent, CvUploadInput{
		Filename:    "cv.docx",
		ContentType: "application/octet-stream",
		Content:     []byte("PK..."),
	})

	require.NoError(t, err)
	assert.Equal(t, models.CvUploaded, cv.Status)
}

func TestUploadPersists(t *testing.T) {
	f := newCvFixture()

	cv, err := f.svc.Upload(context.Background(), candidateIdent, pdfUpload([]byte("%PDF-1.4")))

	require.NoError(t, err)
	assert.Equal(t, "mario", cv.OwnerUsername)
	assert.Equal(t, models.CvUploaded, cv.Status)
	assert.Equal(t, int64(8), cv.SizeBytes)
	require.Len(t, f.cvs.files, 1)
	assert.Contains(t, f.storage.blobs, cv.StoragePath)
}

func TestUploadDbFailureRemovesBlob(t *testing.T) {
	f := newCvFixture()
	f.cvs.createErr = errors.New("db down")

	_, err := f.svc.Upload(context.Background(), candidateIdent, pdfUpload([]byte("%PDF-1.4")))

	require.Error(t, err)
	assert.Empty(t, f.storage.blobs)
	assert.Len(t, f.storage.deleted, 1)
}

func seedUploadedCv(f *cvFixture, status models.CvProcessingStatus) *models.CvFile {
	cv := &models.CvFile{
		ID:               "cv-1",
		OwnerUsername:    "mario",
		OriginalFilename: "cv.pdf",
		ContentType:      "application/pdf",
		StoragePath:      "blob-1",
		Status:           status,
		UploadedAt:       time.Now().UTC(),
	}
	f.cvs.files = append(f.cvs.files, cv)
	f.storage.blobs["blob-1"] = []byte("%PDF-1.4")
	return cv
}

func parsedResponse() *ai.ParseResponse {
	return &ai.ParseResponse{
		Text:      "java spring kotlin developer",
		Sections:  map[string]any{"skills": []any{"java", "spring"}},
		Embedding: []float64{0.1, 0.2},
		ModelUsed: "test-embedder",
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvUploaded)
	f.parser.resp = parsedResponse()

	analysis, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, false)

	require.NoError(t, err)
	assert.Equal(t, "java spring kotlin developer", analysis.Text)
	assert.Equal(t, models.CvParsed, cv.Status)
	require.NotNil(t, cv.AnalyzedAt)
	assert.True(t, cv.HasAnalysis())
	assert.Empty(t, cv.ErrorMessage)

	// the parsed CV becomes the active one and its skills are mirrored
	assert.Equal(t, 1, f.profiles.calls)
	assert.Equal(t, "mario", f.profiles.owner)
	assert.Equal(t, cv.ID, f.profiles.cvID)
	assert.Equal(t, []string{"java", "spring"}, f.profiles.skills)
}

func TestAnalyzeReturnsCachedResult(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvParsed)
	require.NoError(t, cv.SetAnalysis(&models.CvAnalysis{Text: "cached"}))
	now := time.Now().UTC()
	cv.AnalyzedAt = &now

	analysis, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, false)

	require.NoError(t, err)
	assert.Equal(t, "cached", analysis.Text)
	assert.Zero(t, f.parser.calls)
}

func TestAnalyzeForceReparses(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvParsed)
	require.NoError(t, cv.SetAnalysis(&models.CvAnalysis{Text: "stale"}))
	now := time.Now().UTC()
	cv.AnalyzedAt = &now
	f.parser.resp = parsedResponse()

	analysis, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, true)

	require.NoError(t, err)
	assert.Equal(t, 1, f.parser.calls)
	assert.Equal(t, "java spring kotlin developer", analysis.Text)
}

func TestAnalyzeConflictWhileParsing(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvParsing)

	_, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, false)

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
	assert.Contains(t, err.Error(), "CV già in analisi")
	assert.Zero(t, f.parser.calls)
}

func TestAnalyzeOptimisticLoserGetsConflict(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvUploaded)
	f.cvs.updateErr = utils.ErrConflict

	_, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, false)

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeConflict))
	assert.Zero(t, f.parser.calls)
}

func TestAnalyzeTransportFailure(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvUploaded)
	f.parser.err = &ai.TransportError{Err: errors.New("connection refused")}

	_, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, false)

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
	assert.Contains(t, err.Error(), "Servizio AI non disponibile")
	// retryable: the file is marked FAILED, not stuck in PARSING
	assert.Equal(t, models.CvFailed, cv.Status)
	assert.NotEmpty(t, cv.ErrorMessage)
	assert.Zero(t, f.profiles.calls)
}

func TestAnalyzeRejectedDocument(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvUploaded)
	f.parser.err = &ai.APIError{StatusCode: 422, Body: "unreadable document"}

	_, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, false)

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	assert.Contains(t, err.Error(), "Impossibile analizzare CV")
	assert.Equal(t, models.CvFailed, cv.Status)
}

func TestAnalyzeFailedCvIsRetryable(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvFailed)
	cv.ErrorMessage = "previous failure"
	f.parser.resp = parsedResponse()

	_, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, false)

	require.NoError(t, err)
	assert.Equal(t, models.CvParsed, cv.Status)
	assert.Empty(t, cv.ErrorMessage)
}

func TestAnalyzeNotFoundForOtherOwner(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvUploaded)

	other := auth.Identity{Username: "luigi", Roles: []string{auth.RoleCandidate}}
	_, err := f.svc.Analyze(context.Background(), other, cv.ID, false)

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestAnalyzeAdminCanReachAnyCv(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvUploaded)
	f.parser.resp = parsedResponse()

	admin := auth.Identity{Username: "root", Roles: []string{auth.RoleAdmin}}
	_, err := f.svc.Analyze(context.Background(), admin, cv.ID, false)

	require.NoError(t, err)
}

func TestAnalyzeActiveCvFailureDoesNotFailAnalysis(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvUploaded)
	f.parser.resp = parsedResponse()
	f.profiles.err = errors.New("profile store down")

	_, err := f.svc.Analyze(context.Background(), candidateIdent, cv.ID, false)

	require.NoError(t, err)
	assert.Equal(t, models.CvParsed, cv.Status)
}

func TestDownload(t *testing.T) {
	f := newCvFixture()
	cv := seedUploadedCv(f, models.CvUploaded)

	got, content, err := f.svc.Download(context.Background(), candidateIdent, cv.ID)

	require.NoError(t, err)
	assert.Equal(t, cv.ID, got.ID)
	assert.Equal(t, []byte("%PDF-1.4"), content)
}

func TestParseTextRequiresText(t *testing.T) {
	f := newCvFixture()

	_, err := f.svc.ParseText(context.Background(), "   ")

	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
