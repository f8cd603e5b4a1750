package playback

import (
	"context"

	"github.com/book-expert/speak/internal/audio"
)

// Nop is a Player that returns immediately. It is used when playback is
// disabled in the configuration.
type Nop struct{}

// Play implements core.Player.
func (Nop) Play(ctx context.Context, _ *audio.Clip) error {
	return ctx.Err()
}
