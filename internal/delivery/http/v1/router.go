package v1

import (
	"net/http"
	"time"

	"ratio-analytics-website/config"
	"ratio-analytics-website/internal/contactform"
	"ratio-analytics-website/internal/delivery/http/middleware"
	"ratio-analytics-website/internal/delivery/http/response"
	"ratio-analytics-website/internal/domain"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactUC domain.ContactUsecase
	HealthUC  domain.HealthUsecase
	// ContactTransport overrides in-process delivery of the contact page
	ContactTransport contactform.Transport
	Config           *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()
	r.SetHTMLTemplate(loadTemplates())

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger()) // Use standard Gin logger
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	formLimiter := middleware.RateLimitMiddleware(middleware.ContactRateLimitConfig(cfg.RateLimitContactThreshold, window))

	v1 := r.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, "System operational", deps.HealthUC.Check(c.Request.Context()))
	})

	// Public routes
	NewContactHandler(v1, deps.ContactUC, formLimiter)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Server-rendered pages
	contactTransport, newsletterTransport := UsecaseTransports(deps.ContactUC)
	if deps.ContactTransport != nil {
		contactTransport = deps.ContactTransport
	}

	pages := r.Group("")
	pages.Use(middleware.CSRFMiddleware(cfg.IsProduction()))
	NewPageHandler(pages, PageConfig{
		MessageMaxLength: cfg.MessageMaxLength,
		SubmitTimeout:    cfg.SubmitTimeout,
		NoticeDuration:   cfg.NoticeDuration,
	}, contactTransport, newsletterTransport, formLimiter)

	return r
}
