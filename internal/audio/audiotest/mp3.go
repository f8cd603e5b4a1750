// Package audiotest builds small, valid audio streams for tests.
package audiotest

// MPEG-1 Layer III, no CRC, 128 kbit/s, 44.1 kHz, stereo, no padding.
var frameHeader = [4]byte{0xFF, 0xFB, 0x90, 0x04}

// FrameSize is the byte length of one generated frame: 144 * 128000 / 44100.
const FrameSize = 417

// SamplesPerFrame is the number of PCM frames one MPEG-1 Layer III frame decodes to.
const SamplesPerFrame = 1152

// SampleRate of the generated stream.
const SampleRate = 44100

// SilentMP3 returns frames consecutive silent MP3 frames. Side information and
// main data are all zero, so every frame decodes to digital silence.
func SilentMP3(frames int) []byte {
	data := make([]byte, 0, frames*FrameSize)

	for range frames {
		frame := make([]byte, FrameSize)
		copy(frame, frameHeader[:])
		data = append(data, frame...)
	}

	return data
}
