// Package middleware provides the HTTP middleware chain for the API:
// authentication, tracing, rate limiting, validation and body limits.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// caps on header-sourced identifiers before they reach span attributes
const (
	maxRequestIDLength = 128
	maxCompanyIDLength = 64
)

var companyIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// TracingConfig configures the otelgin span per request.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "cashflow-backend",
		Enabled:     true,
	}
}

// TracingWithConfig opens a span per request via otelgin. Attribute
// enrichment happens in SpanErrorMarker, which runs inside the span
// after the handler and the auth middleware have populated the context.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanErrorMarker finalizes the request span: it attaches the request,
// company and user identity, and marks 4xx/5xx responses as errors.
// Register it after TracingWithConfig.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		span.SetAttributes(spanIdentityAttrs(c)...)

		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}

func spanIdentityAttrs(c *gin.Context) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if id := requestIDForSpan(c); id != "" {
		attrs = append(attrs, attribute.String("request_id", id))
	}
	if id := companyIDForSpan(c); id != "" {
		attrs = append(attrs, attribute.String("company_id", id))
	}
	if id := c.GetString(JWTUserIDKey); id != "" {
		attrs = append(attrs, attribute.String("user_id", id))
	}
	return attrs
}

// requestIDForSpan prefers the ID minted by the RequestID middleware;
// a caller-supplied header is truncated so oversized values cannot
// bloat the trace
func requestIDForSpan(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	headerID := c.GetHeader("X-Request-ID")
	if len(headerID) > maxRequestIDLength {
		return headerID[:maxRequestIDLength]
	}
	return headerID
}

// companyIDForSpan trusts the JWT claim; the X-Company-ID fallback for
// unauthenticated requests must look like a UUID to keep arbitrary
// header data out of trace attributes
func companyIDForSpan(c *gin.Context) string {
	if id := c.GetString(JWTCompanyIDKey); id != "" {
		return id
	}
	headerID := c.GetHeader("X-Company-ID")
	if headerID != "" && len(headerID) <= maxCompanyIDLength && companyIDPattern.MatchString(headerID) {
		return headerID
	}
	return ""
}
