// Package audio decodes the synthesis backend's MP3 stream into an in-memory
// clip that can be played back and exported to disk.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// Format represents the container written by Clip.Export.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
)

// Limits for a decoded stream to be considered sane.
const (
	maxSampleRate = 192000
	maxChannels   = 8
)

const filePermissions = 0o600

// Error messages and formats.
const (
	errFmtSampleRateRange = "%w: sample rate %d must be between 1 and %d Hz"
	errFmtChannelsRange   = "%w: channel count %d must be between 1 and %d"
	errFmtExport          = "failed to export %s audio to %s: %w"
)

var (
	// ErrDecode is returned when the encoded bytes are not a readable MP3 stream.
	ErrDecode = errors.New("failed to decode audio")
	// ErrEmptyAudio is returned when there is nothing to decode or nothing was decoded.
	ErrEmptyAudio = errors.New("audio is empty")
	// ErrInvalidFormat is returned when a decoded stream reports an implausible format.
	ErrInvalidFormat = errors.New("invalid audio format")
)

// Clip is a decoded, playback-ready piece of audio. Encoded keeps the MP3 stream
// it was decoded from; Samples holds every decoded frame.
type Clip struct {
	Encoded []byte
	Format  beep.Format
	Samples *beep.Buffer
}

// Decode reads an MP3 stream fully into memory.
func Decode(data []byte) (*Clip, error) {
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer streamer.Close()

	formatErr := validateFormat(format)
	if formatErr != nil {
		return nil, formatErr
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)

	streamErr := streamer.Err()
	if streamErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, streamErr)
	}

	if buffer.Len() == 0 {
		return nil, fmt.Errorf("%w: no samples decoded", ErrEmptyAudio)
	}

	return &Clip{
		Encoded: data,
		Format:  format,
		Samples: buffer,
	}, nil
}

// MP3Decoder adapts Decode to the pipeline's decoder interface.
type MP3Decoder struct{}

// Decode implements core.Decoder.
func (MP3Decoder) Decode(data []byte) (*Clip, error) {
	return Decode(data)
}

// Streamer returns a fresh streamer over every decoded sample.
func (c *Clip) Streamer() beep.StreamSeeker {
	return c.Samples.Streamer(0, c.Samples.Len())
}

// Duration reports the playback length, or zero for a clip without samples.
func (c *Clip) Duration() time.Duration {
	if c.Samples == nil {
		return 0
	}

	return c.Format.SampleRate.D(c.Samples.Len())
}

// FormatForPath picks the export format from the file extension. Anything that
// is not .wav is written as MP3.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), "."+string(FormatWAV)) {
		return FormatWAV
	}

	return FormatMP3
}

// Export writes the clip to path, replacing any existing file. MP3 output is
// the original encoded stream; WAV output is 16-bit PCM of the decoded samples.
func (c *Clip) Export(path string) error {
	format := FormatForPath(path)

	var err error

	switch format {
	case FormatWAV:
		err = c.exportWAV(path)
	default:
		err = c.exportMP3(path)
	}

	if err != nil {
		return fmt.Errorf(errFmtExport, format, path, err)
	}

	return nil
}

func (c *Clip) exportMP3(path string) error {
	if len(c.Encoded) == 0 {
		return ErrEmptyAudio
	}

	return os.WriteFile(path, c.Encoded, filePermissions)
}

func (c *Clip) exportWAV(path string) (err error) {
	if c.Samples == nil || c.Samples.Len() == 0 {
		return ErrEmptyAudio
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePermissions)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := file.Close()
		if err == nil {
			err = closeErr
		}
	}()

	return wav.Encode(file, c.Streamer(), c.Format)
}

func validateFormat(format beep.Format) error {
	sampleRate := int(format.SampleRate)
	if sampleRate <= 0 || sampleRate > maxSampleRate {
		return fmt.Errorf(errFmtSampleRateRange, ErrInvalidFormat, sampleRate, maxSampleRate)
	}

	if format.NumChannels <= 0 || format.NumChannels > maxChannels {
		return fmt.Errorf(errFmtChannelsRange, ErrInvalidFormat, format.NumChannels, maxChannels)
	}

	return nil
}
