package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// installTestTracer points the global tracer provider at an in-memory
// recorder for the duration of the test.
func installTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	return recorder
}

func attrValue(attrs []attribute.KeyValue, key attribute.Key) (string, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value.Emit(), true
		}
	}
	return "", false
}

func TestTracingWithConfig(t *testing.T) {
	t.Run("disabled config records no spans", func(t *testing.T) {
		recorder := installTestTracer(t)

		router := gin.New()
		router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/ping", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, recorder.Ended())
	})

	t.Run("records one span per request", func(t *testing.T) {
		recorder := installTestTracer(t)

		router := gin.New()
		router.Use(TracingWithConfig(DefaultTracingConfig()))
		router.GET("/invoices/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/invoices/42", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Contains(t, spans[0].Name(), "/invoices/:id")
	})
}

func TestSpanErrorMarker(t *testing.T) {
	newRouter := func(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
		recorder := installTestTracer(t)
		router := gin.New()
		router.Use(TracingWithConfig(DefaultTracingConfig()))
		router.Use(SpanErrorMarker())
		return router, recorder
	}

	t.Run("successful responses leave the span status alone", func(t *testing.T) {
		router, recorder := newRouter(t)
		router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ok", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	})

	t.Run("client errors mark the span", func(t *testing.T) {
		router, recorder := newRouter(t)
		router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/missing", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "Not Found", spans[0].Status().Description)

		status, ok := attrValue(spans[0].Attributes(), "http.status_code")
		require.True(t, ok)
		assert.Equal(t, "404", status)
	})

	t.Run("identity set by earlier middleware lands on the span", func(t *testing.T) {
		router, recorder := newRouter(t)
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-1")
			c.Set(JWTCompanyIDKey, "0b906e00-5ad8-4d20-b048-6773b01f1b5c")
			c.Set(JWTUserIDKey, "user-7")
			c.Next()
		})
		router.GET("/projections", func(c *gin.Context) { c.Status(http.StatusOK) })

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/projections", nil))

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		attrs := spans[0].Attributes()

		requestID, _ := attrValue(attrs, "request_id")
		assert.Equal(t, "req-1", requestID)
		companyID, _ := attrValue(attrs, "company_id")
		assert.Equal(t, "0b906e00-5ad8-4d20-b048-6773b01f1b5c", companyID)
		userID, _ := attrValue(attrs, "user_id")
		assert.Equal(t, "user-7", userID)
	})

	t.Run("malformed company header never reaches the span", func(t *testing.T) {
		router, recorder := newRouter(t)
		router.GET("/open", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/open", nil)
		req.Header.Set("X-Company-ID", "'; DROP TABLE companies;--")
		router.ServeHTTP(httptest.NewRecorder(), req)

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		_, ok := attrValue(spans[0].Attributes(), "company_id")
		assert.False(t, ok)
	})
}

func TestRequestIDForSpan(t *testing.T) {
	t.Run("context value wins over the header", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.Header.Set("X-Request-ID", "from-header")
		c.Set("request_id", "from-context")

		assert.Equal(t, "from-context", requestIDForSpan(c))
	})

	t.Run("oversized header is truncated", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		c.Request.Header.Set("X-Request-ID", strings.Repeat("x", 300))

		assert.Len(t, requestIDForSpan(c), maxRequestIDLength)
	})
}

func TestCompanyIDForSpan(t *testing.T) {
	newCtx := func(header string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/", nil)
		if header != "" {
			c.Request.Header.Set("X-Company-ID", header)
		}
		return c
	}

	t.Run("authenticated claim is trusted as-is", func(t *testing.T) {
		c := newCtx("")
		c.Set(JWTCompanyIDKey, "acme-co")
		assert.Equal(t, "acme-co", companyIDForSpan(c))
	})

	t.Run("valid UUID header is accepted", func(t *testing.T) {
		c := newCtx("0b906e00-5ad8-4d20-b048-6773b01f1b5c")
		assert.Equal(t, "0b906e00-5ad8-4d20-b048-6773b01f1b5c", companyIDForSpan(c))
	})

	t.Run("non-UUID header is rejected", func(t *testing.T) {
		assert.Empty(t, companyIDForSpan(newCtx("not-a-uuid")))
	})

	t.Run("oversized header is rejected", func(t *testing.T) {
		assert.Empty(t, companyIDForSpan(newCtx(strings.Repeat("a", maxCompanyIDLength+1))))
	})
}
