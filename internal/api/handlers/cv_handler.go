package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/services"
)

type CvHandler struct {
	svc services.CvService
	log *logrus.Logger
}

func NewCvHandler(svc services.CvService, log *logrus.Logger) *CvHandler {
	return &CvHandler{svc: svc, log: log}
}

func (h *CvHandler) Upload(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File mancante"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File mancante"})
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File non leggibile"})
		return
	}

	// trust content sniffing over the client-declared type
	contentType := fh.Header.Get("Content-Type")
	if detected := mimetype.Detect(content); detected != nil && detected.String() != "application/octet-stream" {
		contentType = detected.String()
	}

	cv, err := h.svc.Upload(c.Request.Context(), ident, services.CvUploadInput{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Content:     content,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, cv)
}

func (h *CvHandler) Analyze(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	analysis, err := h.svc.Analyze(c.Request.Context(), ident, c.Param("cvId"), boolQuery(c, "force"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *CvHandler) List(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListMine(c.Request.Context(), ident)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *CvHandler) Get(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	cv, err := h.svc.GetMine(c.Request.Context(), ident, c.Param("cvId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, cv)
}

func (h *CvHandler) Download(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	cv, content, err := h.svc.Download(c.Request.Context(), ident, c.Param("cvId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cv.OriginalFilename))
	c.Data(http.StatusOK, cv.ContentType, content)
}

func (h *CvHandler) GetAnalysis(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	view, err := h.svc.GetAnalysis(c.Request.Context(), ident, c.Param("cvId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type parseTextRequest struct {
	Text string `json:"text"`
}

// ParseTextDebug is a dev/admin-only probe of the parsing pipeline.
func (h *CvHandler) ParseTextDebug(c *gin.Context) {
	var req parseTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body non valido"})
		return
	}
	resp, err := h.svc.ParseText(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
