package synth

import (
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/speak/internal/config"
	"github.com/book-expert/speak/internal/core"
)

// Backend names accepted in synthesis.backend.
const (
	BackendGoogle = "google"
	BackendHtgo   = "htgo"
)

// ErrUnknownBackend is returned for a backend name New does not recognise.
var ErrUnknownBackend = errors.New("unknown synthesis backend")

// New builds the synthesizer selected by cfg.Backend.
func New(cfg config.SynthesisConfig) (core.Synthesizer, error) {
	switch cfg.Backend {
	case BackendGoogle, "":
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

		return NewGoogleClient(cfg.BaseURL, timeout, cfg.MaxChunkChars, cfg.Slow), nil
	case BackendHtgo:
		return NewHtgoSynthesizer(""), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
