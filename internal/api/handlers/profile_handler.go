package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/services"
)

type ProfileHandler struct {
	candidates services.CandidateProfileService
	companies  services.CompanyProfileService
	log        *logrus.Logger
}

func NewProfileHandler(candidates services.CandidateProfileService, companies services.CompanyProfileService, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{candidates: candidates, companies: companies, log: log}
}

func (h *ProfileHandler) GetCandidateMe(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	profile, err := h.candidates.GetMe(c.Request.Context(), ident)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpsertCandidateMe(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req services.CandidateProfileUpsert
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body non valido"})
		return
	}
	profile, err := h.candidates.UpsertMe(c.Request.Context(), ident, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetCompanyMe(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	profile, err := h.companies.GetMe(c.Request.Context(), ident)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpsertCompanyMe(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req services.CompanyProfileUpsert
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body non valido"})
		return
	}
	profile, err := h.companies.UpsertMe(c.Request.Context(), ident, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
