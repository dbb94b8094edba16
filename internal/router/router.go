package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/medisched/medisched-api/internal/handler"
	"github.com/medisched/medisched-api/internal/middleware"
	"github.com/medisched/medisched-api/internal/model"
	"github.com/medisched/medisched-api/pkg/logger"
)

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         AuthHandler
	doctorH       DoctorHandler
	availabilityH DoctorHandler
	appointmentH  AppointmentHandler
	h             *handler.Handler
	metrics       *routerMetrics
}

// AuthHandler registers unauthenticated routes.
type AuthHandler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// DoctorHandler splits public discovery routes from doctor self-service.
type DoctorHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
	RegisterDoctorRoutes(*gin.RouterGroup)
}

// AppointmentHandler splits the patient and doctor booking surfaces.
type AppointmentHandler interface {
	RegisterPatientRoutes(*gin.RouterGroup)
	RegisterDoctorRoutes(*gin.RouterGroup)
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

type Config struct {
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	RequestTimeout   time.Duration
	MetricsPrefix    string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH AuthHandler,
	doctorH DoctorHandler,
	availabilityH DoctorHandler,
	appointmentH AppointmentHandler,
	h *handler.Handler,
	l *logger.Logger,
	registry *prometheus.Registry,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerCustomValidators()

	engine := gin.New()
	metrics := initRouterMetrics(config.MetricsPrefix, registry)

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		doctorH:       doctorH,
		availabilityH: availabilityH,
		appointmentH:  appointmentH,
		h:             h,
		metrics:       metrics,
	}

	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(l),
		r.metricsMiddleware(),
		middleware.Timeout(timeout),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes
	r.authH.RegisterRoutes(api)
	r.doctorH.RegisterPublicRoutes(api)
	r.availabilityH.RegisterPublicRoutes(api)

	// Doctor self-service
	doctorOnly := api.Group("")
	doctorOnly.Use(r.auth.Authenticate(), r.auth.RequireKind(model.PrincipalKindDoctor))
	r.doctorH.RegisterDoctorRoutes(doctorOnly)
	r.availabilityH.RegisterDoctorRoutes(doctorOnly)
	r.appointmentH.RegisterDoctorRoutes(doctorOnly)

	// Patient booking surface
	patientOnly := api.Group("")
	patientOnly.Use(r.auth.Authenticate(), r.auth.RequireKind(model.PrincipalKindPatient))
	r.appointmentH.RegisterPatientRoutes(patientOnly)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func registerCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("futuredate", func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			if !ok {
				return false
			}
			return t.After(time.Now())
		})
	}
}

func initRouterMetrics(prefix string, registry *prometheus.Registry) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
	}
	if registry != nil {
		registry.MustRegister(m.requestDuration, m.requestTotal)
	}
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
