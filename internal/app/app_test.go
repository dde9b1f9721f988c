package app

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	apperrors "github.com/Ang3l-dev/Ang3l-Dash/internal/errors"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/services"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/shared/testutil"
	ws "github.com/Ang3l-dev/Ang3l-Dash/internal/websocket"
)

const (
	testEmail    = "anna@example.com"
	testPassword = "s3cret"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	users := `[{"email": "` + testEmail + `", "password": "` + testPassword + `"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte(users), 0600))

	cfg := config.Default()
	cfg.Paths = config.PathsConfig{ExecutableDir: dir}
	cfg.Workflow.ExpectedExports = 1
	cfg.Storage.Backend = "none"
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) (*Application, *httptest.Server) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	a, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)

	srv := httptest.NewServer(a.Router)
	t.Cleanup(func() {
		srv.Close()
		a.WebSocketHub.Stop()
		a.OTelProviders.Shutdown(context.Background())
	})
	return a, srv
}

func get(t *testing.T, url string, login bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if login {
		req.SetBasicAuth(testEmail, testPassword)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func basicCredentials(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	return m
}

func postExports(t *testing.T, url string, exports map[string][]byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("as_of", "2024-01-05"))
	for name, data := range exports {
		fw, err := mw.CreateFormFile("exports", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetBasicAuth(testEmail, testPassword)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthEndpointsArePublic(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp := get(t, srv.URL+"/api/health", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, services.StatusOK, decodeBody(t, resp)["status"])

	resp = get(t, srv.URL+"/api/health/ready", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, services.StatusReady, decodeBody(t, resp)["status"])

	resp = get(t, srv.URL+"/api/version", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "none", decodeBody(t, resp)["storage_backend"])
}

func TestReadinessWithoutUsers(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.Paths.ExecutableDir, "users.json")))
	_, srv := newTestApp(t, cfg)

	resp := get(t, srv.URL+"/api/health/ready", false)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = get(t, srv.URL+"/api/me", true)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPIRequiresLogin(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp := get(t, srv.URL+"/api/me", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic realm=")
	assert.Equal(t, apperrors.TypeUnauthorized, decodeBody(t, resp)["type"])

	resp = get(t, srv.URL+"/api/me", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testEmail, decodeBody(t, resp)["email"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp := get(t, srv.URL+"/api/nope", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.TypeNotFound, decodeBody(t, resp)["type"])
}

func TestMergeAndDownload(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))

	resp := postExports(t, srv.URL+"/api/wip/merge", map[string][]byte{
		"wip_1.txt": testutil.ExportFile(
			testutil.WipLine("W-1", "M-1", "100,00"),
			testutil.WipLine("W-2", "M-2", "50,00")),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "merge", body["workflow"])
	assert.Equal(t, testEmail, body["user"])
	assert.Equal(t, "2024-01-05", body["as_of"])
	assert.EqualValues(t, 2, body["records"])

	link, ok := body["downloads"].(map[string]any)[config.UnifiedWorkbookName].(string)
	require.True(t, ok)

	resp = get(t, srv.URL+link, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = get(t, srv.URL+link, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, services.ContentTypeXLSX, resp.Header.Get("Content-Type"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx is a zip archive")
}

func TestMergeRejectsIncompleteBatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workflow.ExpectedExports = 2
	_, srv := newTestApp(t, cfg)

	resp := postExports(t, srv.URL+"/api/wip/merge", map[string][]byte{
		"wip_1.txt": testutil.ExportFile(testutil.WipLine("W-1", "M-1", "1")),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.TypeInput, decodeBody(t, resp)["type"])
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))
	get(t, srv.URL+"/api/health", false)

	resp := get(t, srv.URL+config.MetricsEndpoint, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http_requests")
}

func TestWebSocketFeed(t *testing.T) {
	_, srv := newTestApp(t, testConfig(t))
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + config.WebSocketEndpoint

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	header := http.Header{}
	header.Set("Authorization", "Basic "+basicCredentials(testEmail, testPassword))
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	var hello ws.Envelope
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, ws.TypeConnection, hello.Type)

	postExports(t, srv.URL+"/api/wip/merge", map[string][]byte{
		"wip_1.txt": testutil.ExportFile(testutil.WipLine("W-1", "M-1", "1")),
	})

	var seen []string
	for len(seen) < 2 {
		var env ws.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		seen = append(seen, env.Type)
	}
	assert.Equal(t, []string{services.EventWorkflowStarted, services.EventWorkflowCompleted}, seen)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	logger, _ := testutil.NewTestLogger(t)
	a, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	a.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
