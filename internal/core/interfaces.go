// Package core defines the interfaces the speak pipeline is assembled from.
package core

import (
	"context"

	"github.com/book-expert/speak/internal/audio"
)

// Synthesizer turns text in the given language into encoded (MP3) speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Decoder turns encoded audio into a playback-ready clip.
type Decoder interface {
	Decode(data []byte) (*audio.Clip, error)
}

// AudioStore persists a clip at its configured location and returns the path written.
type AudioStore interface {
	Save(clip *audio.Clip) (string, error)
}

// Player plays a clip and blocks until playback has finished.
type Player interface {
	Play(ctx context.Context, clip *audio.Clip) error
}

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// Archiver copies a saved clip somewhere beyond the local output path and returns
// the key it was stored under.
type Archiver interface {
	Archive(ctx context.Context, clip *audio.Clip) (string, error)
}
