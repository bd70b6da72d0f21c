// Package player keeps the loaded songs and which one of them is current.
//
// A Player is not safe for concurrent use; the UI drives it from one goroutine.
package player

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/samber/lo"

	"github.com/pes18fan/ump/metadata"
)

// Player is an append-ordered list of songs with a cursor on the current one.
type Player struct {
	reader MetadataReader
	loader SoundLoader

	songs   []*Song
	current int
	closed  bool

	// Fade applied when pausing or switching away from a song
	Fade time.Duration
	// Loop makes Next and Previous wrap around the ends of the queue
	Loop bool
}

// New creates an empty player. fade is used by Pause.
func New(reader MetadataReader, loader SoundLoader, fade time.Duration) *Player {
	return &Player{
		reader:  reader,
		loader:  loader,
		songs:   make([]*Song, 0),
		current: 0,
		Fade:    fade,
	}
}

// Load reads the file's metadata, creates its sound and appends the song.
// On failure nothing is added.
func (p *Player) Load(path string) error {
	if p.closed {
		return ErrClosed
	}

	info, err := p.reader.Read(path)
	if err != nil {
		return fmt.Errorf("failed to read metadata: %w", err)
	}

	sound, err := p.loader.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load sound: %w", err)
	}

	p.songs = append(p.songs, &Song{Info: info, sound: sound})
	log.Println("added", path, "at index", len(p.songs)-1)
	return nil
}

// Len returns the number of loaded songs.
func (p *Player) Len() int {
	return len(p.songs)
}

// CurrentIndex returns the cursor, which may be 0 on an empty player.
func (p *Player) CurrentIndex() int {
	return p.current
}

// Songs returns the metadata of every loaded song in order.
func (p *Player) Songs() []metadata.Info {
	return lo.Map(p.songs, func(s *Song, _ int) metadata.Info {
		return s.Info
	})
}

// SetCurrent moves the cursor. It doesn't touch playback.
func (p *Player) SetCurrent(index int) error {
	if p.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(p.songs) {
		return &RangeError{Index: index, Len: len(p.songs)}
	}
	p.current = index
	return nil
}

// currentSong validates the cursor at the point of access.
func (p *Player) currentSong() (*Song, error) {
	if p.closed {
		return nil, ErrClosed
	}
	if p.current < 0 || p.current >= len(p.songs) {
		return nil, &RangeError{Index: p.current, Len: len(p.songs)}
	}
	return p.songs[p.current], nil
}

// IsCurrent reports whether s is the sound of the current song.
func (p *Player) IsCurrent(s Sound) bool {
	song, err := p.currentSong()
	return err == nil && song.sound == s
}

// Current returns the metadata of the current song.
func (p *Player) Current() (metadata.Info, error) {
	song, err := p.currentSong()
	if err != nil {
		return metadata.Info{}, err
	}
	return song.Info, nil
}

// Resume starts playback of the current song.
func (p *Player) Resume() error {
	song, err := p.currentSong()
	if err != nil {
		return err
	}
	if err := song.sound.Start(); err != nil {
		return fmt.Errorf("failed to resume %s: %w", song.Info.Path, err)
	}
	log.Println("resumed", song.Info.Path)
	return nil
}

// Pause fades the current song out and stops it.
func (p *Player) Pause() error {
	song, err := p.currentSong()
	if err != nil {
		return err
	}
	if err := song.sound.StopWithFade(p.Fade); err != nil {
		return fmt.Errorf("failed to pause %s: %w", song.Info.Path, err)
	}
	log.Println("paused", song.Info.Path)
	return nil
}

// Playing reports whether the current song is audible.
func (p *Player) Playing() bool {
	song, err := p.currentSong()
	if err != nil {
		return false
	}
	return song.sound.Playing()
}

// Toggle pauses a playing song and resumes a paused one.
// It returns whether the song is playing afterwards.
func (p *Player) Toggle() (bool, error) {
	song, err := p.currentSong()
	if err != nil {
		return false, err
	}
	if song.sound.Playing() {
		return false, p.Pause()
	}
	return true, p.Resume()
}

// Progress returns the position and length of the current song.
func (p *Player) Progress() (time.Duration, time.Duration, error) {
	song, err := p.currentSong()
	if err != nil {
		return 0, 0, err
	}
	return song.sound.Position(), song.sound.Length(), nil
}

// Next moves to the following song. If the current one was playing, it is
// paused and the new one starts.
func (p *Player) Next() error {
	return p.step(1)
}

// Previous moves to the preceding song, like Next.
func (p *Player) Previous() error {
	return p.step(-1)
}

func (p *Player) step(delta int) error {
	song, err := p.currentSong()
	if err != nil {
		return err
	}

	target := p.current + delta
	switch {
	case target >= len(p.songs) && p.Loop:
		target = 0
	case target >= len(p.songs):
		return ErrEndOfQueue
	case target < 0 && p.Loop:
		target = len(p.songs) - 1
	case target < 0:
		return ErrStartOfQueue
	}

	wasPlaying := song.sound.Playing()
	if wasPlaying {
		if err := p.Pause(); err != nil {
			return err
		}
	}

	p.current = target
	if wasPlaying {
		return p.Resume()
	}
	return nil
}

// Remove releases the song at index and drops it from the list.
// The cursor keeps pointing at the same song where possible.
func (p *Player) Remove(index int) error {
	if p.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(p.songs) {
		return &RangeError{Index: index, Len: len(p.songs)}
	}

	song := p.songs[index]
	p.songs = append(p.songs[:index], p.songs[index+1:]...)

	if index < p.current || (p.current >= len(p.songs) && p.current > 0) {
		p.current--
	}

	if err := song.release(); err != nil {
		return fmt.Errorf("failed to release %s: %w", song.Info.Path, err)
	}
	log.Println("removed", song.Info.Path)
	return nil
}

// Close releases every song's sound. The player can't be used afterwards.
func (p *Player) Close() error {
	if p.closed {
		return ErrClosed
	}
	p.closed = true

	var errs []error
	for _, song := range p.songs {
		if err := song.release(); err != nil {
			errs = append(errs, fmt.Errorf("failed to release %s: %w", song.Info.Path, err))
		}
	}
	p.songs = nil
	p.current = 0

	log.Println("player closed")
	return errors.Join(errs...)
}
