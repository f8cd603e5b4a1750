// Package archive copies saved clips to a NATS object store bucket and
// announces them with an AudioChunkCreatedEvent.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/book-expert/speak/internal/audio"
	"github.com/book-expert/speak/internal/core"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const audioKeySuffix = ".mp3"

// ErrNoAudio is returned when a clip has no encoded stream to archive.
var ErrNoAudio = errors.New("clip has no encoded audio to archive")

// Publisher is the subset of *nats.Conn the archiver needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Archiver implements core.Archiver.
type Archiver struct {
	store     core.ObjectStore
	publisher Publisher
	subject   string
	log       *logger.Logger
}

// New creates an archiver uploading into store and announcing on subject.
func New(store core.ObjectStore, publisher Publisher, subject string, log *logger.Logger) *Archiver {
	return &Archiver{
		store:     store,
		publisher: publisher,
		subject:   subject,
		log:       log,
	}
}

// Archive uploads the clip's MP3 stream under a fresh key and publishes the event.
func (a *Archiver) Archive(ctx context.Context, clip *audio.Clip) (string, error) {
	if clip == nil || len(clip.Encoded) == 0 {
		return "", ErrNoAudio
	}

	audioKey := uuid.NewString() + audioKeySuffix

	err := a.store.Upload(ctx, audioKey, clip.Encoded)
	if err != nil {
		return "", fmt.Errorf("failed to archive audio: %w", err)
	}

	event := &events.AudioChunkCreatedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now(),
			WorkflowID: uuid.NewString(),
			EventID:    uuid.NewString(),
		},
		AudioKey:   audioKey,
		PageNumber: 1,
		TotalPages: 1,
	}

	err = a.publish(event)
	if err != nil {
		return audioKey, err
	}

	a.log.Info("Archived audio as %s and announced it on %s", audioKey, a.subject)

	return audioKey, nil
}

func (a *Archiver) publish(event *events.AudioChunkCreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audio created event: %w", err)
	}

	err = a.publisher.Publish(a.subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish audio created event: %w", err)
	}

	return nil
}

// Compile-time check that a NATS connection can publish for the archiver.
var _ Publisher = (*nats.Conn)(nil)
