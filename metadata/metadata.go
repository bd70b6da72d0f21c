// Package metadata reads tags and audio properties of music files.
package metadata

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/pes18fan/ump/audio"
)

var (
	ErrOpen         = errors.New("cannot open file")
	ErrNoTags       = errors.New("no tags found")
	ErrNoProperties = errors.New("cannot read audio properties")
)

// Tags holds the tag fields shown by the player.
// Any of them may be empty when the file doesn't carry them.
type Tags struct {
	Title   string
	Artist  string
	Album   string
	Genre   string
	Year    int
	Track   int
	Picture []byte // embedded cover art, raw jpeg/png
}

// Properties describes the audio stream rather than the tags.
type Properties struct {
	BitrateKbps  int // average over the audio data, tags excluded
	Length       time.Duration
	Channels     int
	SampleRateHz int
}

// Info combines Tags and Properties for a complete file description.
type Info struct {
	Path string
	Tags
	Properties
}

// LengthSecs returns the length rounded down to whole seconds.
func (i Info) LengthSecs() int {
	return int(i.Length / time.Second)
}

// DisplayTitle returns the title, or the file name if the title is empty.
func (i Info) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return baseName(i.Path)
}

// Reader reads Info from files on disk.
type Reader struct {
	// RequireTags makes Read fail on files without a readable tag.
	// Otherwise the title falls back to the file name.
	RequireTags bool
}

func NewReader(requireTags bool) *Reader {
	return &Reader{RequireTags: requireTags}
}

// Read returns the tags and audio properties of the file at path.
func (r *Reader) Read(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer f.Close()

	tags, err := ReadTags(f)
	if err != nil {
		if r.RequireTags {
			return Info{}, fmt.Errorf("%s: %w", path, err)
		}
		log.Println("failed to read tags from", path, ":", err)
		tags = Tags{Title: baseName(path)}
	} else {
		log.Println("read tags from", path)
	}

	props, err := ReadProperties(path)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}

	return Info{
		Path:       path,
		Tags:       tags,
		Properties: props,
	}, nil
}

// ReadTags parses whichever tag format the stream carries.
func ReadTags(rs io.ReadSeeker) (Tags, error) {
	m, err := tag.ReadFrom(rs)
	if err != nil {
		return Tags{}, fmt.Errorf("%w: %v", ErrNoTags, err)
	}
	return fromMetadata(m), nil
}

func fromMetadata(m tag.Metadata) Tags {
	t := Tags{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
		Genre:  strings.TrimSpace(m.Genre()),
		Year:   m.Year(),
	}
	t.Track, _ = m.Track()

	if pic := m.Picture(); pic != nil {
		t.Picture = pic.Data
	} else {
		log.Println("no artwork found")
	}
	return t
}

// ReadProperties decodes the stream header to find its format and length.
func ReadProperties(path string) (Properties, error) {
	streamer, format, err := audio.Open(path)
	if err != nil {
		return Properties{}, fmt.Errorf("%w: %v", ErrNoProperties, err)
	}
	defer streamer.Close()

	samples := streamer.Len()
	if samples <= 0 || format.SampleRate <= 0 {
		return Properties{}, fmt.Errorf("%w: empty audio stream", ErrNoProperties)
	}
	length := format.SampleRate.D(samples)

	props := Properties{
		Length:       length,
		Channels:     format.NumChannels,
		SampleRateHz: int(format.SampleRate),
	}

	if f, err := os.Open(path); err == nil {
		n, err := audioBytes(f)
		f.Close()
		if err == nil {
			props.BitrateKbps = int(float64(n*8) / length.Seconds() / 1000)
		}
	}

	return props, nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
