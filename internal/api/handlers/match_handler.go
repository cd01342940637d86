package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/services"
)

type MatchHandler struct {
	candidate services.CandidateMatchService
	company   services.CompanyMatchService
	log       *logrus.Logger
}

func NewMatchHandler(candidate services.CandidateMatchService, company services.CompanyMatchService, log *logrus.Logger) *MatchHandler {
	return &MatchHandler{candidate: candidate, company: company, log: log}
}

func (h *MatchHandler) CandidateMatches(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	q := services.MatchQuery{
		Lat:      floatQuery(c, "lat"),
		Lon:      floatQuery(c, "lon"),
		RadiusKm: floatQuery(c, "radiusKm"),
		Limit:    intQuery(c, "limit"),
	}
	items, err := h.candidate.Matches(c.Request.Context(), ident, q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *MatchHandler) CompanyMatches(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	items, err := h.company.Matches(c.Request.Context(), ident, intQuery(c, "limit"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
