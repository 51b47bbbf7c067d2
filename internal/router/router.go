package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	authH "github.com/carebook/clinic-api/internal/handler/auth"
	clinicianH "github.com/carebook/clinic-api/internal/handler/clinician"
	healthH "github.com/carebook/clinic-api/internal/handler/health"
	patientH "github.com/carebook/clinic-api/internal/handler/patient"
	reportH "github.com/carebook/clinic-api/internal/handler/report"
	schedulingH "github.com/carebook/clinic-api/internal/handler/scheduling"
	specializationH "github.com/carebook/clinic-api/internal/handler/specialization"
	"github.com/carebook/clinic-api/internal/middleware"
	"github.com/carebook/clinic-api/internal/model"
)

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	CORS      middleware.CORSConfig
}

type Handlers struct {
	Auth           *authH.Handler
	Specialization *specializationH.Handler
	Clinician      *clinicianH.Handler
	Patient        *patientH.Handler
	Scheduling     *schedulingH.Handler
	Report         *reportH.Handler
	Health         *healthH.Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(auth *middleware.AuthMiddleware, handlers Handlers, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  initRouterMetrics("http"),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.CORS(config.CORS),
		rateLimiter.RateLimit(),
	)

	return r
}

// Setup mounts all routes. Each capability is exposed exactly once, on the
// role group that owns it.
func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	r.handlers.Health.RegisterRoutes(api)
	r.handlers.Auth.RegisterRoutes(api)

	authed := api.Group("")
	authed.Use(r.auth.Authenticate())
	r.handlers.Specialization.RegisterRoutes(authed)

	patients := authed.Group("")
	patients.Use(r.auth.RequireRole(model.RolePatient))
	r.handlers.Scheduling.RegisterPatientRoutes(patients)

	clinicians := authed.Group("/clinician")
	clinicians.Use(r.auth.RequireRole(model.RoleClinician))
	r.handlers.Scheduling.RegisterClinicianRoutes(clinicians)

	admin := authed.Group("/admin")
	admin.Use(r.auth.RequireRole(model.RoleAdmin))
	r.handlers.Specialization.RegisterAdminRoutes(admin)
	r.handlers.Clinician.RegisterAdminRoutes(admin)
	r.handlers.Patient.RegisterAdminRoutes(admin)
	r.handlers.Scheduling.RegisterAdminRoutes(admin)
	r.handlers.Report.RegisterAdminRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
