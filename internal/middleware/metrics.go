package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentconnect_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// CacheHits counts cache-aside hits by key prefix.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentconnect_cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"resource"})

	// CacheMisses counts cache-aside misses by key prefix.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentconnect_cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"resource"})

	// RateLimitRejections counts requests rejected by the Redis rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studentconnect_rate_limit_rejections_total",
		Help: "Total number of rate limited requests",
	}, []string{"resource"})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler that records HTTP metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
