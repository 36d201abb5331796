package view

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/ayoisaiah/studyblocks/internal/apperr"
)

const speakerBuffer = 10

var (
	errInvalidSoundFormat = &apperr.Error{
		Message: "sound file must be one of .mp3, .ogg, .flac or .wav",
	}
	errOpenSound = &apperr.Error{
		Message: "unable to open sound file %q",
	}
)

// decodeSound opens an audio file and decodes it according to its extension.
func decodeSound(path string) (beep.StreamSeekCloser, beep.Format, error) {
	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)

	f, err := os.Open(path)
	if err != nil {
		return nil, format, errOpenSound.Fmt(path).Wrap(err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg":
		stream, format, err = vorbis.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	default:
		_ = f.Close()
		return nil, format, errInvalidSoundFormat
	}

	if err != nil {
		_ = f.Close()
		return nil, format, errOpenSound.Fmt(path).Wrap(err)
	}

	return stream, format, nil
}

// playSound plays an audio file once and blocks until it has finished.
func playSound(path string) error {
	stream, format, err := decodeSound(path)
	if err != nil {
		return err
	}

	defer stream.Close()

	err = speaker.Init(
		format.SampleRate,
		format.SampleRate.N(time.Second/speakerBuffer),
	)
	if err != nil {
		return err
	}

	done := make(chan struct{})

	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		close(done)
	})))

	<-done

	return nil
}
