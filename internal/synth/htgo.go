package synth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/speak/internal/fsutil"
	"github.com/google/uuid"
	htgotts "github.com/hegedustibor/htgo-tts"
)

const htgoScratchDir = "htgo"

// HtgoSynthesizer delegates synthesis to htgo-tts. The library only writes
// files, so each request gets a uniquely named scratch file that is read back
// and removed. Unique names also defeat the library's skip-if-exists cache.
type HtgoSynthesizer struct {
	folder string
}

// NewHtgoSynthesizer creates a synthesizer writing scratch files to folder.
// An empty folder selects a directory under the user cache dir.
func NewHtgoSynthesizer(folder string) *HtgoSynthesizer {
	if folder == "" {
		folder = filepath.Join(fsutil.GetCacheDir(), htgoScratchDir)
	}

	return &HtgoSynthesizer{folder: folder}
}

// Folder returns the scratch directory.
func (h *HtgoSynthesizer) Folder() string {
	return h.folder
}

// Synthesize implements core.Synthesizer.
func (h *HtgoSynthesizer) Synthesize(ctx context.Context, input, lang string) ([]byte, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrTextEmpty
	}

	if lang == "" {
		return nil, ErrLanguageEmpty
	}

	ctxErr := ctx.Err()
	if ctxErr != nil {
		return nil, ctxErr
	}

	dirErr := fsutil.EnsureDir(h.folder)
	if dirErr != nil {
		return nil, fmt.Errorf("failed to prepare htgo scratch directory: %w", dirErr)
	}

	speech := htgotts.Speech{Folder: h.folder, Language: lang}

	path, err := speech.CreateSpeechFile(input, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("htgo-tts synthesis failed: %w", err)
	}

	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read htgo-tts output: %w", err)
	}

	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	return data, nil
}
