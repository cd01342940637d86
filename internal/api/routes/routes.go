package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jobmatcher/backend/internal/api/handlers"
	"github.com/jobmatcher/backend/internal/api/middleware"
	"github.com/jobmatcher/backend/internal/auth"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Cv      *handlers.CvHandler
	Job     *handlers.JobHandler
	Match   *handlers.MatchHandler
	Swipe   *handlers.SwipeHandler
	Profile *handlers.ProfileHandler
}

func Register(r *gin.Engine, h Handlers, jwtSecret string, log *logrus.Logger) {
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}

	secured := api.Group("")
	secured.Use(middleware.JWTAuth(jwtSecret))

	cv := secured.Group("/cv", middleware.RequireRole(auth.RoleCandidate))
	{
		cv.POST("", h.Cv.Upload)
		cv.GET("", h.Cv.List)
		cv.GET("/:cvId", h.Cv.Get)
		cv.GET("/:cvId/file", h.Cv.Download)
		cv.GET("/:cvId/analysis", h.Cv.GetAnalysis)
		cv.POST("/:cvId/analyze", h.Cv.Analyze)
	}
	secured.POST("/cv-debug/parse-text", middleware.RequireRole(auth.RoleAdmin, auth.RoleDev), h.Cv.ParseTextDebug)

	jobs := secured.Group("/jobs")
	{
		jobs.GET("", h.Job.ListPublished)
		jobs.GET("/:jobId", h.Job.Get)
		jobs.POST("", middleware.RequireRole(auth.RoleCompany), h.Job.Create)
		jobs.GET("/mine", middleware.RequireRole(auth.RoleCompany), h.Job.ListMine)
		jobs.GET("/mine/:jobId", middleware.RequireRole(auth.RoleCompany), h.Job.GetMine)
		jobs.PATCH("/:jobId/status", middleware.RequireRole(auth.RoleCompany), h.Job.UpdateStatus)
	}

	candidates := secured.Group("/candidates/me", middleware.RequireRole(auth.RoleCandidate))
	{
		candidates.GET("/profile", h.Profile.GetCandidateMe)
		candidates.PUT("/profile", h.Profile.UpsertCandidateMe)
		candidates.GET("/swipes", h.Swipe.List)
		candidates.POST("/swipes", h.Swipe.Swipe)
		candidates.GET("/swipe-feed", h.Swipe.Feed)
		candidates.GET("/matches", h.Match.CandidateMatches)
	}

	company := secured.Group("/company/me", middleware.RequireRole(auth.RoleCompany))
	{
		company.GET("/profile", h.Profile.GetCompanyMe)
		company.PUT("/profile", h.Profile.UpsertCompanyMe)
		company.GET("/matches", h.Match.CompanyMatches)
	}
}
