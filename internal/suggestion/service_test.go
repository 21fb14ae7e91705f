package suggestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/grocerly/backend/internal/ollama"
)

// fakeOllama counts calls per endpoint and serves canned answers
type fakeOllama struct {
	tagsCalls     atomic.Int32
	generateCalls atomic.Int32

	tagsStatus     int
	tagsBody       string
	generateStatus int
	generateBody   string

	mu          sync.Mutex
	lastRequest ollama.GenerateRequest
}

func (f *fakeOllama) last() ollama.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRequest
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/tags":
		f.tagsCalls.Add(1)
		if f.tagsStatus != 0 {
			w.WriteHeader(f.tagsStatus)
		}
		fmt.Fprint(w, f.tagsBody)
	case "/api/generate":
		f.generateCalls.Add(1)
		var req ollama.GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.lastRequest = req
		f.mu.Unlock()
		if f.generateStatus != 0 {
			w.WriteHeader(f.generateStatus)
		}
		fmt.Fprint(w, f.generateBody)
	default:
		http.NotFound(w, r)
	}
}

func generateBody(t *testing.T, inner string) string {
	t.Helper()
	data, err := json.Marshal(ollama.GenerateResponse{Model: "llama3.2", Response: inner, Done: true})
	require.NoError(t, err)
	return string(data)
}

func newTestService(t *testing.T, fake *fakeOllama) (*Service, *bytes.Buffer) {
	t.Helper()
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	client, err := ollama.NewClient(ts.URL, 5*time.Second, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	return NewService(client, "llama3.2", log.New(&buf, "", 0)), &buf
}

const breadResponse = `{"suggestions":[{"name":"Bread","category":"pantry","reason":"complementary","priority":"medium"}]}`

func TestService_GenerateSuggestions(t *testing.T) {
	t.Run("should return validated suggestions", func(t *testing.T) {
		fake := &fakeOllama{tagsBody: `{"models":[{"name":"llama3.2"}]}`}
		fake.generateBody = generateBody(t, breadResponse)
		svc, logs := newTestService(t, fake)

		result := svc.GenerateSuggestions(context.Background(), []string{"milk", "eggs"})

		require.Len(t, result.Suggestions, 1)
		assert.Equal(t, Suggestion{Name: "Bread", Category: "pantry", Reason: "complementary", Priority: PriorityMedium}, result.Suggestions[0])
		assert.True(t, result.Diagnostic.OK())
		assert.Empty(t, logs.String())

		assert.Equal(t, int32(1), fake.tagsCalls.Load())
		assert.Equal(t, int32(1), fake.generateCalls.Load())
		sent := fake.last()
		assert.Equal(t, "llama3.2", sent.Model)
		assert.False(t, sent.Stream)
		assert.Equal(t, "json", sent.Format)
		assert.Equal(t, BuildPrompt([]string{"milk", "eggs"}), sent.Prompt)
	})

	t.Run("should handle an empty item list", func(t *testing.T) {
		fake := &fakeOllama{tagsBody: `{}`}
		fake.generateBody = generateBody(t, breadResponse)
		svc, _ := newTestService(t, fake)

		result := svc.GenerateSuggestions(context.Background(), nil)
		assert.Len(t, result.Suggestions, 1)
	})

	t.Run("should short-circuit when the service is down", func(t *testing.T) {
		fake := &fakeOllama{}
		ts := httptest.NewServer(fake)
		client, err := ollama.NewClient(ts.URL, time.Second, nil)
		require.NoError(t, err)
		ts.Close()

		var buf bytes.Buffer
		svc := NewService(client, "llama3.2", log.New(&buf, "", 0))
		result := svc.GenerateSuggestions(context.Background(), []string{"milk"})

		assert.NotNil(t, result.Suggestions)
		assert.Empty(t, result.Suggestions)
		assert.Equal(t, DiagnosticServiceUnavailable, result.Diagnostic.Kind)
		assert.Equal(t, int32(0), fake.generateCalls.Load())
		assert.Contains(t, buf.String(), "Ollama service is not running")
	})

	t.Run("should short-circuit when the listing endpoint answers with an error status", func(t *testing.T) {
		fake := &fakeOllama{
			tagsStatus:     http.StatusServiceUnavailable,
			generateStatus: http.StatusServiceUnavailable,
		}
		svc, logs := newTestService(t, fake)

		result := svc.GenerateSuggestions(context.Background(), []string{"milk"})

		assert.NotNil(t, result.Suggestions)
		assert.Empty(t, result.Suggestions)
		assert.Equal(t, DiagnosticServiceUnavailable, result.Diagnostic.Kind)
		assert.Equal(t, int32(1), fake.tagsCalls.Load())
		assert.Equal(t, int32(0), fake.generateCalls.Load())
		assert.Contains(t, logs.String(), "Ollama service is not running")
	})

	t.Run("should list models once when the model is missing", func(t *testing.T) {
		fake := &fakeOllama{
			tagsBody:       `{"models":[{"name":"mistral:latest"},{"name":"phi3:mini"}]}`,
			generateStatus: http.StatusNotFound,
			generateBody:   `{"error":"model \"llama3.2\" not found, try pulling it first"}`,
		}
		svc, logs := newTestService(t, fake)

		result := svc.GenerateSuggestions(context.Background(), []string{"milk"})

		assert.Empty(t, result.Suggestions)
		assert.Equal(t, DiagnosticModelNotFound, result.Diagnostic.Kind)
		assert.Equal(t, []string{"mistral:latest", "phi3:mini"}, result.Diagnostic.Models)
		// one probe plus exactly one listing
		assert.Equal(t, int32(2), fake.tagsCalls.Load())
		assert.Equal(t, int32(1), fake.generateCalls.Load())
		assert.Contains(t, logs.String(), "mistral:latest\nphi3:mini")
		assert.Contains(t, logs.String(), "OLLAMA_MODEL")
	})

	t.Run("should report when no models are installed", func(t *testing.T) {
		fake := &fakeOllama{tagsBody: `{}`, generateStatus: http.StatusNotFound}
		svc, _ := newTestService(t, fake)

		result := svc.GenerateSuggestions(context.Background(), []string{"milk"})
		assert.Equal(t, DiagnosticModelNotFound, result.Diagnostic.Kind)
		assert.Contains(t, result.Diagnostic.Message, "(none installed)")
	})

	t.Run("should drop non-json model output", func(t *testing.T) {
		fake := &fakeOllama{tagsBody: `{}`}
		fake.generateBody = generateBody(t, `Here are some ideas: bread, jam`)
		svc, _ := newTestService(t, fake)

		result := svc.GenerateSuggestions(context.Background(), []string{"milk"})
		assert.Empty(t, result.Suggestions)
		assert.Equal(t, DiagnosticMalformedResponse, result.Diagnostic.Kind)
		assert.Equal(t, int32(1), fake.tagsCalls.Load())
	})

	t.Run("should reject the whole set on a schema violation", func(t *testing.T) {
		inner := []string{
			`{"suggestions":[{"name":"Bread","category":"pantry","reason":"complementary","priority":"medium"},{"name":"Jam","category":"pantry","reason":"complementary","priority":"urgent"}]}`,
			`{"suggestions":[{"name":"Bread","category":"pantry","reason":"complementary","priority":"medium","quantity":0}]}`,
		}
		for _, body := range inner {
			fake := &fakeOllama{tagsBody: `{}`}
			fake.generateBody = generateBody(t, body)
			svc, _ := newTestService(t, fake)

			result := svc.GenerateSuggestions(context.Background(), []string{"milk"})
			assert.Empty(t, result.Suggestions)
			assert.Equal(t, DiagnosticMalformedResponse, result.Diagnostic.Kind)

			var vErr *ValidationError
			assert.ErrorAs(t, result.Diagnostic.Err, &vErr)
		}
	})

	t.Run("should drop an undecodable envelope", func(t *testing.T) {
		fake := &fakeOllama{tagsBody: `{}`, generateBody: `<html>bad gateway</html>`}
		svc, _ := newTestService(t, fake)

		result := svc.GenerateSuggestions(context.Background(), []string{"milk"})
		assert.Empty(t, result.Suggestions)
		assert.Equal(t, DiagnosticMalformedResponse, result.Diagnostic.Kind)
	})

	t.Run("should report other failures as transport errors", func(t *testing.T) {
		fake := &fakeOllama{tagsBody: `{}`, generateStatus: http.StatusInternalServerError, generateBody: `boom`}
		svc, logs := newTestService(t, fake)

		result := svc.GenerateSuggestions(context.Background(), []string{"milk"})
		assert.Empty(t, result.Suggestions)
		assert.Equal(t, DiagnosticTransport, result.Diagnostic.Kind)
		assert.Contains(t, logs.String(), "Error connecting to Ollama")
		assert.Contains(t, logs.String(), "boom")
		// no model listing outside the not-found branch
		assert.Equal(t, int32(1), fake.tagsCalls.Load())
	})
}

type panickingClient struct{}

func (panickingClient) IsAvailable(context.Context) bool { return true }
func (panickingClient) ListModels(context.Context) []string {
	return nil
}
func (panickingClient) Generate(context.Context, ollama.GenerateRequest) (*ollama.GenerateResponse, error) {
	panic("nil map write")
}

func TestService_GenerateSuggestionsNeverPanics(t *testing.T) {
	var buf bytes.Buffer
	svc := NewService(panickingClient{}, "llama3.2", log.New(&buf, "", 0))

	var result Result
	assert.NotPanics(t, func() {
		result = svc.GenerateSuggestions(context.Background(), []string{"milk"})
	})
	assert.NotNil(t, result.Suggestions)
	assert.Empty(t, result.Suggestions)
	assert.Equal(t, DiagnosticTransport, result.Diagnostic.Kind)
	assert.Contains(t, buf.String(), "nil map write")
}

func TestService_Suggest(t *testing.T) {
	fake := &fakeOllama{tagsBody: `{}`}
	fake.generateBody = generateBody(t, breadResponse)
	svc, _ := newTestService(t, fake)

	got := svc.Suggest(context.Background(), []string{"milk"})
	require.Len(t, got, 1)
	assert.Equal(t, "Bread", got[0].Name)
	assert.Equal(t, "llama3.2", svc.Model())
}
