// ABOUTME: Decodes dictation recordings into PCM buffers
// ABOUTME: Dispatches on file extension to mp3, wav, ogg, flac and aiff decoders
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pedalscribe/pedalscribe/internal/audio"
)

// ErrUnsupportedFormat is returned for file extensions no decoder claims.
var ErrUnsupportedFormat = errors.New("decode: unsupported audio format")

// Load decodes an entire recording into memory. Dictation files are
// short, so whole-file decoding keeps the transport's position math
// trivial and never stalls the output device on disk reads.
func Load(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var buf *audio.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		buf, err = decodeMP3(f)
	case ".wav":
		buf, err = decodeWAV(f)
	case ".ogg", ".oga":
		buf, err = decodeVorbis(f)
	case ".flac":
		buf, err = decodeFLAC(f)
	case ".aiff", ".aif":
		buf, err = decodeAIFF(f)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return buf, nil
}

// intScale returns the normalization divisor for a signed PCM bit depth.
func intScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128
	case 16:
		return 32768
	case 24:
		return 8388608
	case 32:
		return 2147483648
	default:
		return 32768
	}
}
