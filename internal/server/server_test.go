package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/vaibh/v2srt/internal/pipeline"
	"github.com/vaibh/v2srt/internal/queue"
	"github.com/vaibh/v2srt/internal/storage"
	"github.com/vaibh/v2srt/internal/translate"
)

func newTestServer(t *testing.T) (*Server, *queue.WorkerPool) {
	t.Helper()
	dir := t.TempDir()

	history, err := storage.NewHistory(filepath.Join(dir, "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { history.Close() })

	// Workers are never started: submitted jobs stay queued, which is all
	// these handler tests need.
	factory := func(progress func(line string)) *pipeline.Pipeline {
		return pipeline.New(nil, nil, translate.Noop{}, nil, dir)
	}
	pool := queue.NewWorkerPool(1, factory, history, nil, nil)

	return New(pool, history, dir, dir, 10), pool
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	app := srv.App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	app := srv.App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/nope", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func multipartVideo(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake video bytes"))
	w.Close()
	return body, w.FormDataContentType()
}

func TestSubmitRejectsMissingFile(t *testing.T) {
	srv, _ := newTestServer(t)
	app := srv.App()

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/jobs", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSubmitRejectsUnsupportedFormat(t *testing.T) {
	srv, _ := newTestServer(t)
	app := srv.App()

	body, contentType := multipartVideo(t, "file", "notes.txt")
	req := httptest.NewRequest(http.MethodPost, "/jobs", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestSubmitQueuesJob(t *testing.T) {
	srv, pool := newTestServer(t)
	app := srv.App()

	body, contentType := multipartVideo(t, "file", "movie.mp4")
	req := httptest.NewRequest(http.MethodPost, "/jobs", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	var decoded struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("bad response %s: %v", raw, err)
	}
	if decoded.Status != queue.StatusQueued {
		t.Errorf("status = %s, want QUEUED", decoded.Status)
	}

	job, ok := pool.Get(decoded.JobID)
	if !ok {
		t.Fatal("job not registered in pool")
	}
	if job.Name != "movie.mp4" {
		t.Errorf("job name = %q, want original filename", job.Name)
	}

	// Status endpoint sees the queued job.
	statusResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/"+decoded.JobID, nil))
	if err != nil {
		t.Fatal(err)
	}
	if statusResp.StatusCode != http.StatusOK {
		t.Errorf("status endpoint = %d, want 200", statusResp.StatusCode)
	}

	// Subtitles are not available until the job completes.
	subResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/"+decoded.JobID+"/subtitles", nil))
	if err != nil {
		t.Fatal(err)
	}
	if subResp.StatusCode != http.StatusConflict {
		t.Errorf("subtitles endpoint = %d, want 409", subResp.StatusCode)
	}
}

func TestRunsEndpointEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	app := srv.App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/runs", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
