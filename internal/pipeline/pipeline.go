// Package pipeline runs the synthesize, decode, save and play sequence behind
// speak's single operation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/book-expert/logger"
	"github.com/book-expert/speak/internal/core"
	"github.com/book-expert/speak/internal/fsutil"
	"github.com/book-expert/speak/internal/storage"
)

// DefaultLanguage is used when Run is called without a language code.
const DefaultLanguage = "hi"

// Console lines printed when a permission failure is contained.
const (
	consoleFmtPermissionError = "Permission error: %v\n"
	consolePermissionHint     = "Try running the program as an administrator or checking the permissions of the directory."
)

// Log formats.
const (
	logFmtSynthesized      = "Synthesized %s of %s audio for %d characters"
	logFmtDecoded          = "Decoded %s of audio at %d Hz, %d channels"
	logFmtSaved            = "Saved audio to %s"
	logFmtPlayed           = "Played %s"
	logFmtPermissionDenied = "Permission denied during %s: %v"
	logFmtStepFailed       = "Step %s failed: %v"
)

// Step names used in wrapped errors and log lines.
const (
	stepSynthesize = "synthesize"
	stepDecode     = "decode"
	stepSave       = "save"
	stepPlay       = "play"
	stepArchive    = "archive"
)

// Outcome tells the two successful results of Run apart.
type Outcome int

const (
	// OutcomeSaved means the audio was written to Result.Path and played.
	OutcomeSaved Outcome = iota + 1
	// OutcomePermissionDenied means a permission failure was contained; no path is reported.
	OutcomePermissionDenied
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomePermissionDenied:
		return "permission denied"
	default:
		return "unknown"
	}
}

// Result is what Run reports when it does not fail.
type Result struct {
	Outcome Outcome
	// Path is set for OutcomeSaved.
	Path string
	// ArchiveKey is set when an archiver is configured and accepted the clip.
	ArchiveKey string
	// Cause is the contained error for OutcomePermissionDenied.
	Cause error
}

// Saved reports whether the run produced a file.
func (r Result) Saved() bool {
	return r.Outcome == OutcomeSaved
}

// Pipeline wires a synthesizer, decoder, store and player together.
type Pipeline struct {
	synthesizer core.Synthesizer
	decoder     core.Decoder
	store       core.AudioStore
	player      core.Player
	archiver    core.Archiver
	console     io.Writer
	log         *logger.Logger
}

// New creates a pipeline. console receives the human-readable diagnostic lines.
func New(
	synthesizer core.Synthesizer,
	decoder core.Decoder,
	store core.AudioStore,
	player core.Player,
	console io.Writer,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		synthesizer: synthesizer,
		decoder:     decoder,
		store:       store,
		player:      player,
		console:     console,
		log:         log,
	}
}

// SetArchiver makes every successful run also hand the clip to archiver.
func (p *Pipeline) SetArchiver(archiver core.Archiver) {
	p.archiver = archiver
}

// Run converts text to speech, saves it to the store's fixed path, and plays it.
//
// A permission failure in any step up to and including playback is contained:
// two lines are printed to the console and Result.Outcome is
// OutcomePermissionDenied with a nil error. Every other failure is returned.
func (p *Pipeline) Run(ctx context.Context, text, lang string) (Result, error) {
	if lang == "" {
		lang = DefaultLanguage
	}

	encoded, err := p.synthesizer.Synthesize(ctx, text, lang)
	if err != nil {
		return p.fail(stepSynthesize, err)
	}

	p.log.Info(logFmtSynthesized, fsutil.FormatFileSize(int64(len(encoded))), lang, len(text))

	clip, err := p.decoder.Decode(encoded)
	if err != nil {
		return p.fail(stepDecode, err)
	}

	p.log.Info(logFmtDecoded, fsutil.FormatDuration(clip.Duration()), int(clip.Format.SampleRate), clip.Format.NumChannels)

	path, err := p.store.Save(clip)
	if err != nil {
		return p.fail(stepSave, err)
	}

	p.log.Info(logFmtSaved, path)

	err = p.player.Play(ctx, clip)
	if err != nil {
		return p.fail(stepPlay, err)
	}

	p.log.Info(logFmtPlayed, path)

	result := Result{Outcome: OutcomeSaved, Path: path}

	if p.archiver != nil {
		key, archiveErr := p.archiver.Archive(ctx, clip)
		if archiveErr != nil {
			p.log.Error(logFmtStepFailed, stepArchive, archiveErr)

			return Result{}, fmt.Errorf("%s: %w", stepArchive, archiveErr)
		}

		result.ArchiveKey = key
	}

	return result, nil
}

// fail contains permission errors and wraps everything else with the step name.
func (p *Pipeline) fail(step string, err error) (Result, error) {
	if errors.Is(err, fs.ErrPermission) {
		site := storage.FailureSite(err)
		if site == "" {
			site = step
		}

		p.log.Error(logFmtPermissionDenied, site, err)
		fmt.Fprintf(p.console, consoleFmtPermissionError, err)
		fmt.Fprintln(p.console, consolePermissionHint)

		return Result{Outcome: OutcomePermissionDenied, Cause: err}, nil
	}

	p.log.Error(logFmtStepFailed, step, err)

	return Result{}, fmt.Errorf("%s: %w", step, err)
}
