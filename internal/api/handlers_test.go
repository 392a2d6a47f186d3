package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bobarin/narrate/internal/manager"
	"github.com/bobarin/narrate/internal/models"
	"github.com/bobarin/narrate/internal/queue"
	"github.com/bobarin/narrate/internal/services"
	"github.com/bobarin/narrate/internal/store"
	"github.com/bobarin/narrate/internal/voices"
	"github.com/bobarin/narrate/internal/worker"
	"github.com/google/uuid"
)

type fakeBackend struct{}

func (f *fakeBackend) Synthesize(ctx context.Context, text string, vs services.VoiceSettings) (*services.SynthesisResult, error) {
	return &services.SynthesisResult{
		AudioData:  []byte("<" + text + ">"),
		DurationMs: 250,
		Format:     services.FormatMP3,
	}, nil
}

type fakeEncoder struct{}

func (f *fakeEncoder) Encode(ctx context.Context, input io.Reader, opts services.EncodeOptions, onEvent func(services.EncodeEvent)) ([]byte, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, err
	}
	if onEvent != nil {
		onEvent(services.EncodeEvent{Type: services.EncodeEventStart})
		onEvent(services.EncodeEvent{Type: services.EncodeEventProgress, Percent: 100})
		onEvent(services.EncodeEvent{Type: services.EncodeEventEnd})
	}
	return data, nil
}

// newTestServer wires the full stack behind an httptest server: real store,
// queue, manager and worker, with fake synthesis and encoding.
func newTestServer(t *testing.T, cfg RouterConfig) *httptest.Server {
	t.Helper()

	st := store.New(time.Hour)
	q := queue.New()
	catalog := voices.NewCatalog()
	m := manager.New(st, q, catalog)

	w := worker.New(st, q, catalog, &fakeBackend{}, &fakeEncoder{}, worker.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx, 2)
	t.Cleanup(cancel)

	srv := httptest.NewServer(NewRouter(NewHandler(m), cfg))
	t.Cleanup(srv.Close)
	return srv
}

func postSpeech(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/speech", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatal(err)
	}
}

func TestCreateSpeech(t *testing.T) {
	srv := newTestServer(t, RouterConfig{})

	resp := postSpeech(t, srv, `{"text":"Hello world.","voice_id":"fem-soft","speed":1.0,"pitch":0,"emotion":"neutro"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var created models.SubmitResponse
	decodeJSON(t, resp, &created)
	if created.JobID == uuid.Nil {
		t.Error("no job id in response")
	}
	if created.Status != models.JobStatusQueued {
		t.Errorf("status = %q, want queued", created.Status)
	}
}

func TestCreateSpeechRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, RouterConfig{})

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"text":`},
		{"empty text", `{"text":"","voice_id":"fem-soft"}`},
		{"unknown voice", `{"text":"hi","voice_id":"nope"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postSpeech(t, srv, tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			var body map[string]string
			decodeJSON(t, resp, &body)
			if body["error"] == "" {
				t.Error("400 responses must carry an error message")
			}
		})
	}
}

func TestGetSpeechNotFound(t *testing.T) {
	srv := newTestServer(t, RouterConfig{})

	resp, err := http.Get(srv.URL + "/v1/speech/" + uuid.NewString())
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/speech/not-a-uuid")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed id: status = %d, want 400", resp.StatusCode)
	}
}

// TestSpeechLifecycle walks the whole flow: submit, poll until completed,
// download the MP3 with the right headers.
func TestSpeechLifecycle(t *testing.T) {
	srv := newTestServer(t, RouterConfig{})

	resp := postSpeech(t, srv, `{"text":"Hello world.","voice_id":"fem-soft","speed":1.0,"pitch":0,"emotion":"neutro"}`)
	var created models.SubmitResponse
	decodeJSON(t, resp, &created)

	statusURL := srv.URL + "/v1/speech/" + created.JobID.String()

	var view models.StatusView
	deadline := time.Now().Add(5 * time.Second)
	for {
		r, err := http.Get(statusURL)
		if err != nil {
			t.Fatal(err)
		}
		decodeJSON(t, r, &view)
		if view.Status == models.JobStatusCompleted {
			break
		}
		if view.Status == models.JobStatusFailed {
			t.Fatalf("job failed: %v", view.Error)
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck in %s", view.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if view.Progress != 100 {
		t.Errorf("completed progress = %d, want 100", view.Progress)
	}
	if !view.DownloadAvailable {
		t.Error("completed job must report download_available")
	}
	if view.DurationSec == nil || *view.DurationSec <= 0 {
		t.Errorf("duration_sec = %v, want > 0", view.DurationSec)
	}

	dl, err := http.Get(statusURL + "/audio")
	if err != nil {
		t.Fatal(err)
	}
	defer dl.Body.Close()
	if dl.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d, want 200", dl.StatusCode)
	}
	if ct := dl.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}
	if cd := dl.Header.Get("Content-Disposition"); !strings.Contains(cd, created.JobID.String()) {
		t.Errorf("Content-Disposition = %q, want filename with job id", cd)
	}
	audio, err := io.ReadAll(dl.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(audio, []byte("<Hello world.>")) {
		t.Errorf("audio body = %q", audio)
	}
	if cl := dl.Header.Get("Content-Length"); cl != strconv.Itoa(len(audio)) {
		t.Errorf("Content-Length = %q, body is %d bytes", cl, len(audio))
	}
}

func TestDownloadSpeechNotReady(t *testing.T) {
	// No worker running, so the job stays queued forever
	st := store.New(time.Hour)
	q := queue.New()
	m := manager.New(st, q, voices.NewCatalog())
	srv := httptest.NewServer(NewRouter(NewHandler(m), RouterConfig{}))
	defer srv.Close()

	id, err := m.Submit(models.SynthesisRequest{Text: "waiting", VoiceID: "fem-soft"})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(srv.URL + "/v1/speech/" + id.String() + "/audio")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/speech/" + uuid.NewString() + "/audio")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", resp.StatusCode)
	}
}

func TestListVoices(t *testing.T) {
	srv := newTestServer(t, RouterConfig{})

	resp, err := http.Get(srv.URL + "/v1/voices")
	if err != nil {
		t.Fatal(err)
	}
	var body struct {
		Voices []models.VoiceView `json:"voices"`
	}
	decodeJSON(t, resp, &body)
	if len(body.Voices) == 0 {
		t.Fatal("no voices listed")
	}
}

func TestAPIKeyAuth(t *testing.T) {
	srv := newTestServer(t, RouterConfig{BackendAPIKey: "secret-key"})

	// Health stays public
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	// /v1 without a key
	resp, err = http.Get(srv.URL + "/v1/voices")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", resp.StatusCode)
	}

	// Wrong key
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/v1/voices", nil)
	req.Header.Set("X-API-Key", "wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", resp.StatusCode)
	}

	// X-API-Key header
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/v1/voices", nil)
	req.Header.Set("X-API-Key", "secret-key")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", resp.StatusCode)
	}

	// Bearer fallback
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/v1/voices", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bearer key: status = %d, want 200", resp.StatusCode)
	}
}
