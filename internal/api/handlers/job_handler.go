package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/services"
)

type JobHandler struct {
	svc services.JobService
	log *logrus.Logger
}

func NewJobHandler(svc services.JobService, log *logrus.Logger) *JobHandler {
	return &JobHandler{svc: svc, log: log}
}

func (h *JobHandler) Create(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req services.JobCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body non valido"})
		return
	}
	job, err := h.svc.Create(c.Request.Context(), ident, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) ListPublished(c *gin.Context) {
	jobs, err := h.svc.ListPublished(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) ListMine(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	jobs, err := h.svc.ListMine(c.Request.Context(), ident)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) Get(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	job, err := h.svc.GetByID(c.Request.Context(), ident, c.Param("jobId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) GetMine(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	job, err := h.svc.GetMineByID(c.Request.Context(), ident, c.Param("jobId"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type jobStatusRequest struct {
	Status string `json:"status"`
}

func (h *JobHandler) UpdateStatus(c *gin.Context) {
	ident, ok := requireIdentity(c)
	if !ok {
		return
	}
	var req jobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body non valido"})
		return
	}
	job, err := h.svc.UpdateStatus(c.Request.Context(), ident, c.Param("jobId"), req.Status)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
