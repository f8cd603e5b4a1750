package synth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/book-expert/speak/internal/synth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest captures the query a test server received.
type recordedRequest struct {
	path  string
	query map[string]string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeBackend) record(request *http.Request) recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	query := map[string]string{}
	for key := range request.URL.Query() {
		query[key] = request.URL.Query().Get(key)
	}

	rec := recordedRequest{path: request.URL.Path, query: query}
	f.requests = append(f.requests, rec)

	return rec
}

// echoHandler answers every chunk with "<idx>:<q>|" so tests can check ordering.
func (f *fakeBackend) echoHandler(t *testing.T) http.HandlerFunc {
	t.Helper()

	return func(responseWriter http.ResponseWriter, request *http.Request) {
		rec := f.record(request)

		responseWriter.Header().Set("Content-Type", "audio/mpeg")
		_, err := responseWriter.Write([]byte(rec.query["idx"] + ":" + rec.query["q"] + "|"))
		if err != nil {
			t.Errorf("Failed to write response: %v", err)
		}
	}
}

func newTestClient(t *testing.T, handler http.Handler, maxChunkChars int, slow bool) *synth.GoogleClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return synth.NewGoogleClient(server.URL+"/", 5*time.Second, maxChunkChars, slow)
}

func TestGoogleClient_Synthesize_SingleChunk(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	client := newTestClient(t, backend.echoHandler(t), 0, false)

	audioData, err := client.Synthesize(context.Background(), "नमस्ते", "hi")
	require.NoError(t, err)
	assert.Equal(t, "0:नमस्ते|", string(audioData))

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, "/translate_tts", req.path)
	assert.Equal(t, "नमस्ते", req.query["q"])
	assert.Equal(t, "hi", req.query["tl"])
	assert.Equal(t, "tw-ob", req.query["client"])
	assert.Equal(t, "UTF-8", req.query["ie"])
	assert.Equal(t, "1", req.query["ttsspeed"])
	assert.Equal(t, "1", req.query["total"])
	assert.Equal(t, "0", req.query["idx"])
	assert.Equal(t, "6", req.query["textlen"])
}

func TestGoogleClient_Synthesize_MultipleChunksInOrder(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	client := newTestClient(t, backend.echoHandler(t), 10, false)

	audioData, err := client.Synthesize(context.Background(), "one two three four", "en")
	require.NoError(t, err)
	assert.Equal(t, "0:one two|1:three four|", string(audioData))

	require.Len(t, backend.requests, 2)

	for _, req := range backend.requests {
		assert.Equal(t, "2", req.query["total"])
		assert.Equal(t, "en", req.query["tl"])
	}
}

func TestGoogleClient_Synthesize_Slow(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	client := newTestClient(t, backend.echoHandler(t), 0, true)

	_, err := client.Synthesize(context.Background(), "hello", "en")
	require.NoError(t, err)

	require.Len(t, backend.requests, 1)
	assert.Equal(t, "0.3", backend.requests[0].query["ttsspeed"])
}

func TestGoogleClient_Synthesize_InputErrors(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	client := newTestClient(t, backend.echoHandler(t), 0, false)

	_, err := client.Synthesize(context.Background(), "  \n ", "hi")
	require.ErrorIs(t, err, synth.ErrTextEmpty)

	_, err = client.Synthesize(context.Background(), "नमस्ते", "")
	require.ErrorIs(t, err, synth.ErrLanguageEmpty)

	assert.Empty(t, backend.requests)
}

func TestGoogleClient_Synthesize_ResponseErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		status      int
		contentType string
		body        string
		expected    error
	}{
		{
			name:        "bad request",
			status:      http.StatusBadRequest,
			contentType: "text/html",
			body:        "unsupported language",
			expected:    synth.ErrBackendStatus,
		},
		{
			name:        "html instead of audio",
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        "<html></html>",
			expected:    synth.ErrUnexpectedContentType,
		},
		{
			name:        "empty audio",
			status:      http.StatusOK,
			contentType: "audio/mpeg",
			body:        "",
			expected:    synth.ErrEmptyAudio,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(responseWriter http.ResponseWriter, _ *http.Request) {
				responseWriter.Header().Set("Content-Type", testCase.contentType)
				responseWriter.WriteHeader(testCase.status)
				_, _ = responseWriter.Write([]byte(testCase.body))
			})

			client := newTestClient(t, handler, 0, false)

			_, err := client.Synthesize(context.Background(), "hello", "xx")
			require.ErrorIs(t, err, testCase.expected)
			assert.Contains(t, err.Error(), "chunk 1/1")
		})
	}
}

func TestGoogleClient_Synthesize_BackendUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := synth.NewGoogleClient(url, time.Second, 0, false)

	_, err := client.Synthesize(context.Background(), "hello", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
}

func TestGoogleClient_Synthesize_CanceledContext(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	client := newTestClient(t, backend.echoHandler(t), 0, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Synthesize(ctx, "hello", "en")
	require.ErrorIs(t, err, context.Canceled)
}
