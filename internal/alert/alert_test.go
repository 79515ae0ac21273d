package alert

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/forewarn/pkg/types"
)

func testAlert() types.Alert {
	return types.Alert{
		Level:     types.AlertError,
		MachineID: "machine-7",
		Message:   "anomaly detected",
		Timestamp: time.Now(),
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsoleSink_Send(t *testing.T) {
	sink := NewConsoleSink()
	assert.Equal(t, "console", sink.Name())

	ctx := context.Background()
	for _, level := range []types.AlertLevel{types.AlertError, types.AlertWarning, types.AlertInfo} {
		a := testAlert()
		a.Level = level
		err := sink.Send(ctx, a)
		assert.NoError(t, err)
	}
}

func TestFileSink_Send(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	assert.Equal(t, "file", sink.Name())

	ctx := context.Background()
	require.NoError(t, sink.Send(ctx, testAlert()))
	require.NoError(t, sink.Send(ctx, testAlert()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var got types.Alert
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "machine-7", got.MachineID)
	assert.Equal(t, types.AlertError, got.Level)
}

func TestFileSink_UnwritablePath(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "missing", "alerts.jsonl"))
	assert.Error(t, err)
}

func TestWebhookSink_Send_Success(t *testing.T) {
	var received []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	sink := NewWebhookSink(ts.URL)
	assert.Equal(t, "webhook", sink.Name())

	require.NoError(t, sink.Send(context.Background(), testAlert()))

	var got types.Alert
	require.NoError(t, json.Unmarshal(received, &got))
	assert.Equal(t, "machine-7", got.MachineID)
}

func TestWebhookSink_Send_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	sink := NewWebhookSink(ts.URL)
	err := sink.Send(context.Background(), testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestWebhookSink_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	sink := NewWebhookSink(ts.URL)
	ctx := context.Background()
	for i := 0; i < webhookFailsToTrip; i++ {
		require.Error(t, sink.Send(ctx, testAlert()))
	}
	require.Equal(t, webhookFailsToTrip, hits)

	// The breaker is open now: the next send fails without touching the server.
	require.Error(t, sink.Send(ctx, testAlert()))
	assert.Equal(t, webhookFailsToTrip, hits)
}

func TestNewDispatcher_UnknownSinkType(t *testing.T) {
	_, err := NewDispatcher([]types.AlertConfig{{Type: "carrier-pigeon"}}, quietLogger())
	assert.Error(t, err)
}

func TestNewDispatcher_WebhookRequiresURL(t *testing.T) {
	_, err := NewDispatcher([]types.AlertConfig{{Type: types.AlertWebhook}}, quietLogger())
	assert.Error(t, err)
}

func TestDispatcher_SinkFailureDoesNotStopOthers(t *testing.T) {
	// Webhook pointed at a closed port fails; the file sink after it must
	// still receive the alert.
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer dead.Close()

	path := filepath.Join(t.TempDir(), "alerts.jsonl")
	d, err := NewDispatcher([]types.AlertConfig{
		{Type: types.AlertWebhook, URL: dead.URL},
		{Type: types.AlertFile, Path: path},
	}, quietLogger())
	require.NoError(t, err)

	d.Dispatch(context.Background(), testAlert())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "anomaly detected")
}
