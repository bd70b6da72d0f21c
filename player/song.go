package player

import (
	"time"

	"github.com/pes18fan/ump/metadata"
)

// MetadataReader reads the tags and audio properties of a file.
type MetadataReader interface {
	Read(path string) (metadata.Info, error)
}

// Sound is a playable handle owned by the engine that created it.
type Sound interface {
	Start() error
	StopWithFade(d time.Duration) error
	Playing() bool
	Position() time.Duration
	Length() time.Duration
	Close() error
}

// SoundLoader creates sounds from files.
type SoundLoader interface {
	Load(path string) (Sound, error)
}

// SoundLoaderFunc adapts a function to a SoundLoader.
type SoundLoaderFunc func(path string) (Sound, error)

func (f SoundLoaderFunc) Load(path string) (Sound, error) {
	return f(path)
}

// Song pairs a file's metadata with the sound playing it.
// The sound is released when the song leaves the player.
type Song struct {
	Info  metadata.Info
	sound Sound
}

func (s *Song) release() error {
	if s.sound == nil {
		return nil
	}
	err := s.sound.Close()
	s.sound = nil
	return err
}
