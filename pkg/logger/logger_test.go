package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log := New("chatty")
	assert.Equal(t, "info", log.GetLevel().String())
}

func TestWithContext_AddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", &buf)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithRole(ctx, "navigator")
	log.WithContext(ctx).Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "navigator", entry["role"])
	assert.Contains(t, entry, "timestamp")
}

func TestHTTPRequest_LevelFollowsStatus(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", &buf)

	log.HTTPRequest(context.Background(), "GET", "/api/v1/patients/p-404", "test", "127.0.0.1", 404, 3, nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, float64(404), entry["status_code"])
	assert.Equal(t, "/api/v1/patients/p-404", entry["path"])
}

func TestContextHelpers_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Empty(t, RoleFromContext(context.Background()))
}

func TestPerformance_DebugOnly(t *testing.T) {
	var buf bytes.Buffer
	NewWithOutput("info", &buf).Performance("calendar.month", 2*time.Millisecond, nil)
	assert.Empty(t, buf.String())

	log := NewWithOutput("debug", &buf)
	log.Performance("calendar.month", 1500*time.Microsecond, map[string]interface{}{"month": "2024-11"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "calendar.month", entry["operation"])
	assert.Equal(t, 1.5, entry["duration_ms"])
	assert.Equal(t, true, entry["performance"])
	assert.Equal(t, map[string]interface{}{"month": "2024-11"}, entry["details"])
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	NewWithOutput("info", &buf).WithComponent("fixtures").Info("Fixtures loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fixtures", entry["component"])
}
