package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/services"
)

type SwipeHandler struct {
	svc services.SwipeService
	log *logrus.Logger
}

func NewSwipeHandler(svc services.SwipeService, log *logrus.Logger) *SwipeHandler {
	return &SwipeHandler{svc: svc, log: log}
}

func (h *SwipeHandler) Feed(c *gin.Context) {
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
	items, err := h.svc.Feed(c.Request.Context(), ident, q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type swipeRequest struct {
	JobID  string `json:"jobId"`
	Action string `json:"action"`
}

func (h *SwipeHandler) Swipe(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body non valido"})
		return
	}
	swipe, err := h.svc.Swipe(c.Request.Context(), ident, req.JobID, req.Action)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, swipe)
}

func (h *SwipeHandler) List(c *gin.Context) {
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
