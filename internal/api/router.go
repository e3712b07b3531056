// Package api provides the HTTP API for camelguard.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/camelguard/camelguard/internal/config"
	"github.com/camelguard/camelguard/internal/orchestrator"
	"github.com/camelguard/camelguard/internal/repository"
	"github.com/camelguard/camelguard/pkg/opa"
)

// scopeKey is the gin context key for storing auth scopes.
const scopeKey = "auth_scopes"

// RouterDeps holds dependencies for router initialization.
type RouterDeps struct {
	System       *orchestrator.System
	Executions   repository.ExecutionRepository
	PolicyEngine *opa.Engine
	// StopRateLimiter is set by NewRouter. Call it during graceful shutdown to stop
	// the rate limiter's background cleanup goroutine.
	StopRateLimiter func()
}

// NewRouter creates and configures the HTTP router.
func NewRouter(cfg *config.Config, deps *RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	// Safe default: do not trust any proxy headers (X-Forwarded-For, etc.)
	// Production should configure trusted proxy CIDRs explicitly.
	r.SetTrustedProxies(nil)
	r.Use(gin.Recovery())
	r.Use(securityHeadersMiddleware())
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20) // 1MB
		c.Next()
	})
	r.Use(corsMiddleware(cfg.Server.CORSOrigins))

	// Create handlers with dependencies
	var h *Handlers
	if deps != nil && deps.System != nil && deps.Executions != nil {
		h = NewHandlers(deps.System, deps.Executions)
	}

	// Health check
	r.GET("/health", healthCheck)
	r.GET("/ready", makeReadinessCheck(deps))

	// API v1
	rl := newRateLimiter(100, time.Minute)
	// Wire Stop() into deps so callers can halt the cleanup goroutine on shutdown.
	if deps != nil {
		deps.StopRateLimiter = rl.Stop
	}
	v1 := r.Group("/api/v1")
	// Middleware order: Auth → Rate Limiting so that:
	// 1. Unauthenticated requests are rejected before consuming rate limit budget.
	// 2. Rate limits key on bearer identity rather than IP (set after auth validates token).
	v1.Use(bearerTokenMiddleware(cfg.Auth.BearerToken))
	v1.Use(rateLimitMiddleware(rl))
	{
		// The CaMeL entry point: plan + interpret one user query end to end.
		if h != nil {
			v1.POST("/execute", h.Execute)

			executions := v1.Group("/executions")
			{
				executions.GET("", h.ListExecutions)
				executions.GET("/:id", h.GetExecution)
				executions.GET("/:id/audit", h.GetExecutionAudit)
			}

			v1.GET("/tools/conflicts", h.ListToolConflicts)
		} else {
			v1.POST("/execute", executeUnavailable)
		}

		// SDK webhook endpoints (for agent middleware callbacks)
		sdk := v1.Group("/sdk")
		{
			sdk.POST("/pre-invoke", makePreInvokeHook(deps))
			sdk.POST("/post-invoke", postInvokeHook)
			sdk.POST("/error", errorHook)
		}
	}

	return r
}

// rateLimiter implements a simple in-memory sliding window rate limiter per
// caller key (bearer identity when a token is present, client IP otherwise).
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string][]time.Time
	limit    int
	window   time.Duration
	done     chan struct{}
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Stop terminates the cleanup goroutine.
func (rl *rateLimiter) Stop() {
	close(rl.done)
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	timestamps := rl.visitors[key]
	valid := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.visitors[key] = valid
		return false
	}

	rl.visitors[key] = append(valid, now)
	return true
}

func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			cutoff := now.Add(-rl.window)
			for key, timestamps := range rl.visitors {
				valid := make([]time.Time, 0, len(timestamps))
				for _, ts := range timestamps {
					if ts.After(cutoff) {
						valid = append(valid, ts)
					}
				}
				if len(valid) == 0 {
					delete(rl.visitors, key)
				} else {
					rl.visitors[key] = valid
				}
			}
			rl.mu.Unlock()
		}
	}
}

// securityHeadersMiddleware adds security response headers to all responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

func rateLimitMiddleware(rl *rateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Key on bearer token identity when present — more accurate for authenticated APIs
		// and allows per-identity rate limits rather than per-IP (which breaks behind NAT).
		key := c.ClientIP()
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token := strings.TrimPrefix(auth, "Bearer ")
			if len(token) >= 8 {
				// Use last 8 chars as key suffix to avoid storing full tokens in memory.
				key = "bearer:" + token[len(token)-8:]
			}
		}

		if !rl.allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// Middleware

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		wildcard := false
		for _, o := range allowedOrigins {
			if o == "*" {
				allowed = true
				wildcard = true
				break
			}
			if o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if wildcard {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Access-Control-Max-Age", "86400")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func bearerTokenMiddleware(token string) gin.HandlerFunc {
	if token == "" {
		log.Warn().Msg("AUTH_BEARER_TOKEN is not configured — all API requests will be rejected")
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		}
	}
	if len(token) < 32 {
		log.Warn().Int("token_len", len(token)).
			Msg("AUTH_BEARER_TOKEN is shorter than 32 chars — consider using a stronger token")
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		provided := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		// Bearer token grants full read+write access — store synthetic scope set.
		c.Set(scopeKey, []string{"read:executions", "write:executions"})
		c.Next()
	}
}

// Health endpoints

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func makeReadinessCheck(deps *RouterDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		ready := true

		if deps == nil || deps.System == nil {
			checks["orchestrator"] = "unavailable"
			ready = false
		} else {
			checks["orchestrator"] = "ok"
		}

		if deps == nil || deps.Executions == nil {
			checks["database"] = "unavailable"
			ready = false
		} else {
			checks["database"] = "ok"
		}

		if deps == nil || deps.PolicyEngine == nil {
			checks["policy_engine"] = "not_configured"
		} else if !deps.PolicyEngine.Ready() {
			checks["policy_engine"] = "no_policies_loaded"
		} else {
			checks["policy_engine"] = "ok"
		}

		status := http.StatusOK
		statusStr := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			statusStr = "degraded"
		}

		c.JSON(status, gin.H{
			"status":    statusStr,
			"checks":    checks,
			"timestamp": time.Now().UTC(),
		})
	}
}

// executeUnavailable responds when the server is running without a wired
// orchestrator.System (e.g. a config-validation-only deployment).
func executeUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "orchestrator not configured"})
}

// SDK webhook handlers

// makePreInvokeHook returns a handler that evaluates the request against OPA policies.
// Fail-closed: if no policy engine is configured, all requests are denied.
func makePreInvokeHook(deps *RouterDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Fail-closed if policy engine not available
		if deps == nil || deps.PolicyEngine == nil {
			c.JSON(http.StatusForbidden, gin.H{
				"allow":   false,
				"reasons": []string{"policy engine not configured — denying by default"},
			})
			return
		}

		// Limit request body to 1MB to prevent memory exhaustion via large payloads
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20)

		// Parse the SDK pre-invoke request body
		var input opa.EvaluationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"allow":   false,
				"reasons": []string{"invalid request body"},
			})
			return
		}

		// Evaluate against OPA policies
		decision, err := deps.PolicyEngine.Evaluate(c.Request.Context(), "default", &input)
		if err != nil {
			log.Error().Err(err).Msg("policy evaluation failed")
			c.JSON(http.StatusForbidden, gin.H{
				"allow":   false,
				"reasons": []string{"policy evaluation failed — denying by default"},
			})
			return
		}

		c.JSON(http.StatusOK, decision)
	}
}

func postInvokeHook(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{"status": "acknowledged"})
}

func errorHook(c *gin.Context) {
	c.JSON(http.StatusAccepted, gin.H{"status": "acknowledged"})
}
