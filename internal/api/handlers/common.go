package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/api/middleware"
	"github.com/jobmatcher/backend/internal/auth"
	"github.com/jobmatcher/backend/internal/utils"
)

func writeError(c *gin.Context, log *logrus.Logger, err error) {
	status := utils.HTTPStatus(err)

	msg := "errore interno"
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" && status != http.StatusInternalServerError {
		msg = ae.Message
	}
	if status >= http.StatusInternalServerError && log != nil {
		log.WithError(err).Error("request failed")
	}

	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

func requireIdentity(c *gin.Context) (auth.Identity, bool) {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token mancante"})
		return auth.Identity{}, false
	}
	return ident, true
}

func floatQuery(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func intQuery(c *gin.Context, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func boolQuery(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
