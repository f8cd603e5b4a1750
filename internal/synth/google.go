// Package synth provides the speech synthesis backends speak can talk to.
package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/book-expert/speak/internal/text"
)

// API endpoints and query parameters.
const (
	apiTranslateTTS = "/translate_tts"
	clientName      = "tw-ob"
	inputEncoding   = "UTF-8"
	speedNormal     = "1"
	speedSlow       = "0.3"
)

// HTTP headers.
const (
	headerAccept      = "Accept"
	headerUserAgent   = "User-Agent"
	contentTypePrefix = "audio/"
	acceptMPEG        = "audio/mpeg"
	userAgent         = "Mozilla/5.0 (compatible; speak/1.0)"
)

// Error formats.
const (
	errFmtSendRequest     = "failed to send request to TTS backend at %s: %w"
	errFmtChunkFailed     = "chunk %d/%d failed: %w"
	errFmtBackendStatus   = "%w: %s, body: %s"
	errFmtUnexpectedCType = "%w: expected audio/*, got %q"
	maxErrorBodyBytes     = 512
)

var (
	// ErrTextEmpty is returned when there is nothing to synthesize.
	ErrTextEmpty = errors.New("text cannot be empty")
	// ErrLanguageEmpty is returned when no language code is given.
	ErrLanguageEmpty = errors.New("language cannot be empty")
	// ErrBackendStatus is returned when the backend answers with a non-OK status.
	ErrBackendStatus = errors.New("TTS backend returned non-OK status")
	// ErrUnexpectedContentType is returned when the backend answers with something other than audio.
	ErrUnexpectedContentType = errors.New("unexpected content type")
	// ErrEmptyAudio is returned when the backend answers with an empty body.
	ErrEmptyAudio = errors.New("received empty audio data")
)

// GoogleClient synthesizes speech through the Google Translate text-to-speech
// endpoint, the same service gTTS uses. Long text is split into chunks the
// endpoint accepts and the MP3 responses are concatenated in order.
type GoogleClient struct {
	httpClient *http.Client
	tokenizer  *text.Tokenizer
	baseURL    string
	slow       bool
}

// NewGoogleClient creates a client for the endpoint at baseURL (for example
// "https://translate.google.com"). A zero timeout means requests never time out.
func NewGoogleClient(baseURL string, timeout time.Duration, maxChunkChars int, slow bool) *GoogleClient {
	return &GoogleClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokenizer: text.NewTokenizer(maxChunkChars),
		slow:      slow,
	}
}

// Synthesize implements core.Synthesizer.
func (c *GoogleClient) Synthesize(ctx context.Context, input, lang string) ([]byte, error) {
	chunks := c.tokenizer.Split(input)
	if len(chunks) == 0 {
		return nil, ErrTextEmpty
	}

	if lang == "" {
		return nil, ErrLanguageEmpty
	}

	var audio bytes.Buffer

	for idx, chunk := range chunks {
		data, err := c.fetchChunk(ctx, chunk, lang, idx, len(chunks))
		if err != nil {
			return nil, fmt.Errorf(errFmtChunkFailed, idx+1, len(chunks), err)
		}

		audio.Write(data)
	}

	return audio.Bytes(), nil
}

func (c *GoogleClient) fetchChunk(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.chunkURL(chunk, lang, idx, total),
		http.NoBody,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerAccept, acceptMPEG)
	httpReq.Header.Set(headerUserAgent, userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(errFmtSendRequest, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return nil, fmt.Errorf(errFmtBackendStatus, ErrBackendStatus, resp.Status, strings.TrimSpace(string(body)))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, contentTypePrefix) {
		return nil, fmt.Errorf(errFmtUnexpectedCType, ErrUnexpectedContentType, contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	return data, nil
}

func (c *GoogleClient) chunkURL(chunk, lang string, idx, total int) string {
	speed := speedNormal
	if c.slow {
		speed = speedSlow
	}

	query := url.Values{}
	query.Set("ie", inputEncoding)
	query.Set("client", clientName)
	query.Set("q", chunk)
	query.Set("tl", lang)
	query.Set("ttsspeed", speed)
	query.Set("total", strconv.Itoa(total))
	query.Set("idx", strconv.Itoa(idx))
	query.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	return c.baseURL + apiTranslateTTS + "?" + query.Encode()
}
