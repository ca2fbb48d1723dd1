package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vdl/internal/artifact"
	"github.com/your-org/vdl/internal/download"
	"github.com/your-org/vdl/internal/ingest"
	"github.com/your-org/vdl/internal/web"
	"github.com/your-org/vdl/pkg/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine  *gin.Engine
	workDir string
}

func newTestServer(t *testing.T, fetch ingest.FetcherFunc) *testServer {
	t.Helper()
	workDir := t.TempDir()
	ws, err := artifact.NewWorkspace(workDir, func() string { return "vid_1700000000.mp4" })
	require.NoError(t, err)

	svc := download.NewService(ws, ingest.NewPool(2, 0), fetch, "best")
	h := NewDownloadHandler(svc)

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.GET("/", NewPageHandler("").Home)
	r.POST("/download", h.Download)
	return &testServer{engine: r, workDir: workDir}
}

func (s *testServer) postForm(values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// artifactFiles lists every file left anywhere under the work dir.
func (s *testServer) artifactFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(s.workDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != s.workDir {
			files = append(files, path)
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

func TestDownload(t *testing.T) {
	t.Run("streams artifact then deletes it", func(t *testing.T) {
		var written string
		srv := newTestServer(t, func(ctx context.Context, req ingest.Request) error {
			written = req.Output
			return os.WriteFile(req.Output, []byte{0x00, 0x01, 0x02}, 0o644)
		})

		w := srv.postForm(url.Values{"url": {"https://example.com/video123"}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []byte{0x00, 0x01, 0x02}, w.Body.Bytes())
		assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
		assert.Equal(t, "3", w.Header().Get("Content-Length"))
		assert.Equal(t, `attachment; filename="vid_1700000000.mp4"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "vid_1700000000.mp4", filepath.Base(written))
		assert.NoFileExists(t, written)
		assert.Empty(t, srv.artifactFiles(t))
	})

	t.Run("extractor error passes message through", func(t *testing.T) {
		srv := newTestServer(t, func(ctx context.Context, req ingest.Request) error {
			return &ingest.ExtractionError{Message: "Unsupported URL"}
		})

		w := srv.postForm(url.Values{"url": {"not-a-url"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"detail": "Unsupported URL"}`, w.Body.String())
		assert.Empty(t, srv.artifactFiles(t))
	})

	t.Run("extractor success without a file", func(t *testing.T) {
		srv := newTestServer(t, func(ctx context.Context, req ingest.Request) error {
			return nil
		})

		w := srv.postForm(url.Values{"url": {"https://example.com/video123"}})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to download video.", decodeDetail(t, w))
		assert.Empty(t, srv.artifactFiles(t))
	})

	t.Run("missing url", func(t *testing.T) {
		called := false
		srv := newTestServer(t, func(ctx context.Context, req ingest.Request) error {
			called = true
			return nil
		})

		for _, values := range []url.Values{{}, {"url": {"   "}}} {
			w := srv.postForm(values)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			assert.Equal(t, "url is required", decodeDetail(t, w))
		}
		assert.False(t, called)
	})

	t.Run("json body", func(t *testing.T) {
		var gotURL string
		srv := newTestServer(t, func(ctx context.Context, req ingest.Request) error {
			gotURL = req.URL
			return os.WriteFile(req.Output, []byte("ok"), 0o644)
		})

		req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(`{"url":"https://example.com/v"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		srv.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
		assert.Equal(t, "https://example.com/v", gotURL)
	})

	t.Run("repeated requests are independent", func(t *testing.T) {
		var outputs []string
		srv := newTestServer(t, func(ctx context.Context, req ingest.Request) error {
			outputs = append(outputs, req.Output)
			return os.WriteFile(req.Output, []byte("x"), 0o644)
		})

		for i := 0; i < 2; i++ {
			w := srv.postForm(url.Values{"url": {"https://example.com/video123"}})
			require.Equal(t, http.StatusOK, w.Code)
		}

		require.Len(t, outputs, 2)
		assert.NotEqual(t, outputs[0], outputs[1])
		assert.Empty(t, srv.artifactFiles(t))
	})
}

func TestHome(t *testing.T) {
	srv := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<form")
	assert.Contains(t, w.Body.String(), `name="url"`)
}
