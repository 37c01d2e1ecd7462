package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandlerGetSystemInfo(t *testing.T) {
	h := NewSystemHandler()
	c, w := newHandlerContext()

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	info, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, serviceName, info["name"])
	assert.Equal(t, serviceVersion, info["version"])
	assert.NotEmpty(t, info["go_version"])
	assert.NotEmpty(t, info["uptime"])

	_, err := time.Parse(time.RFC3339, info["started_at"].(string))
	assert.NoError(t, err, "started_at must be RFC3339")
}

func TestSystemHandlerPing(t *testing.T) {
	h := NewSystemHandler()
	c, w := newHandlerContext()

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	payload, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pong", payload["message"])

	_, err := time.Parse(time.RFC3339, payload["timestamp"].(string))
	assert.NoError(t, err, "timestamp must be RFC3339")
}
