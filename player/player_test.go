package player

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pes18fan/ump/metadata"
)

type fakeReader struct {
	fail map[string]error
}

func (r *fakeReader) Read(path string) (metadata.Info, error) {
	if err := r.fail[path]; err != nil {
		return metadata.Info{}, err
	}
	return metadata.Info{
		Path: path,
		Tags: metadata.Tags{Title: "title of " + path, Artist: "artist"},
		Properties: metadata.Properties{
			BitrateKbps:  320,
			Length:       3 * time.Minute,
			Channels:     2,
			SampleRateHz: 44100,
		},
	}, nil
}

type fakeSound struct {
	path     string
	playing  bool
	starts   int
	stops    int
	fades    []time.Duration
	closes   int
	closeErr error
}

func (s *fakeSound) Start() error {
	s.starts++
	s.playing = true
	return nil
}

func (s *fakeSound) StopWithFade(d time.Duration) error {
	s.stops++
	s.fades = append(s.fades, d)
	s.playing = false
	return nil
}

func (s *fakeSound) Playing() bool           { return s.playing }
func (s *fakeSound) Position() time.Duration { return 42 * time.Second }
func (s *fakeSound) Length() time.Duration   { return 3 * time.Minute }

func (s *fakeSound) Close() error {
	s.closes++
	return s.closeErr
}

type fakeLoader struct {
	fail   map[string]error
	sounds []*fakeSound
}

func (l *fakeLoader) Load(path string) (Sound, error) {
	if err := l.fail[path]; err != nil {
		return nil, err
	}
	s := &fakeSound{path: path}
	l.sounds = append(l.sounds, s)
	return s, nil
}

func newTestPlayer(t *testing.T, paths ...string) (*Player, *fakeReader, *fakeLoader) {
	t.Helper()
	reader := &fakeReader{fail: map[string]error{}}
	loader := &fakeLoader{fail: map[string]error{}}
	p := New(reader, loader, time.Millisecond)
	for _, path := range paths {
		require.NoError(t, p.Load(path))
	}
	return p, reader, loader
}

func TestLoadAppendsInOrder(t *testing.T) {
	p, _, _ := newTestPlayer(t)

	for i, path := range []string{"a.mp3", "b.flac", "a.mp3"} {
		require.NoError(t, p.Load(path))
		assert.Equal(t, i+1, p.Len())
	}

	paths := []string{}
	for _, info := range p.Songs() {
		paths = append(paths, info.Path)
	}
	assert.Equal(t, []string{"a.mp3", "b.flac", "a.mp3"}, paths)
	assert.Equal(t, 0, p.CurrentIndex())
}

func TestLoadMetadataFailureLeavesPlayerUnchanged(t *testing.T) {
	p, reader, loader := newTestPlayer(t, "a.mp3")
	errMissing := errors.New("no such file")
	reader.fail["missing.mp3"] = errMissing

	err := p.Load("missing.mp3")

	assert.ErrorIs(t, err, errMissing)
	assert.Equal(t, 1, p.Len())
	assert.Len(t, loader.sounds, 1, "sound must not be created when metadata fails")
}

func TestLoadSoundFailureLeavesPlayerUnchanged(t *testing.T) {
	p, _, loader := newTestPlayer(t)
	errDecode := errors.New("bad stream")
	loader.fail["broken.mp3"] = errDecode

	err := p.Load("broken.mp3")

	assert.ErrorIs(t, err, errDecode)
	assert.Equal(t, 0, p.Len())
	_, err = p.Current()
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestCurrentReturnsSongAtCursor(t *testing.T) {
	p, _, _ := newTestPlayer(t, "a.mp3", "b.mp3", "c.mp3")

	require.NoError(t, p.SetCurrent(1))
	require.NoError(t, p.Resume())
	require.NoError(t, p.Pause())

	info, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, "b.mp3", info.Path)
	assert.Equal(t, "title of b.mp3", info.Title)
	assert.Equal(t, 180, info.LengthSecs())
}

func TestIsCurrent(t *testing.T) {
	p, _, loader := newTestPlayer(t, "a.mp3", "b.mp3")

	assert.True(t, p.IsCurrent(loader.sounds[0]))
	assert.False(t, p.IsCurrent(loader.sounds[1]))

	require.NoError(t, p.SetCurrent(1))
	assert.False(t, p.IsCurrent(loader.sounds[0]))
	assert.True(t, p.IsCurrent(loader.sounds[1]))

	require.NoError(t, p.Close())
	assert.False(t, p.IsCurrent(loader.sounds[1]))
}

func TestEmptyPlayerAccessorsFail(t *testing.T) {
	p, _, _ := newTestPlayer(t)

	_, err := p.Current()
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, p.Resume(), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.Pause(), ErrIndexOutOfRange)
	_, _, err = p.Progress()
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.False(t, p.Playing())

	var rangeErr *RangeError
	require.ErrorAs(t, p.Resume(), &rangeErr)
	assert.Equal(t, 0, rangeErr.Index)
	assert.Equal(t, 0, rangeErr.Len)
}

func TestSetCurrentValidatesEagerly(t *testing.T) {
	p, _, _ := newTestPlayer(t, "a.mp3", "b.mp3")

	for _, index := range []int{-1, 2, 10} {
		err := p.SetCurrent(index)

		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)
		assert.Equal(t, index, rangeErr.Index)
		assert.Equal(t, 2, rangeErr.Len)
		assert.Equal(t, 0, p.CurrentIndex(), "cursor must not move on a rejected index")
	}

	require.NoError(t, p.SetCurrent(1))
	assert.Equal(t, 1, p.CurrentIndex())
}

func TestResumeAndPauseDriveCurrentSound(t *testing.T) {
	p, _, loader := newTestPlayer(t, "a.mp3", "b.mp3")
	require.NoError(t, p.SetCurrent(1))

	require.NoError(t, p.Resume())
	assert.True(t, p.Playing())
	require.NoError(t, p.Pause())
	assert.False(t, p.Playing())

	assert.Equal(t, 0, loader.sounds[0].starts)
	assert.Equal(t, 1, loader.sounds[1].starts)
	assert.Equal(t, []time.Duration{time.Millisecond}, loader.sounds[1].fades)
}

func TestToggle(t *testing.T) {
	p, _, _ := newTestPlayer(t, "a.mp3")

	playing, err := p.Toggle()
	require.NoError(t, err)
	assert.True(t, playing)

	playing, err = p.Toggle()
	require.NoError(t, err)
	assert.False(t, playing)
}

func TestProgress(t *testing.T) {
	p, _, _ := newTestPlayer(t, "a.mp3")

	pos, length, err := p.Progress()

	require.NoError(t, err)
	assert.Equal(t, 42*time.Second, pos)
	assert.Equal(t, 3*time.Minute, length)
}

func TestNextSwitchesPlayback(t *testing.T) {
	p, _, loader := newTestPlayer(t, "a.mp3", "b.mp3")
	require.NoError(t, p.Resume())

	require.NoError(t, p.Next())

	assert.Equal(t, 1, p.CurrentIndex())
	assert.False(t, loader.sounds[0].playing)
	assert.True(t, loader.sounds[1].playing)
}

func TestNextWhilePausedOnlyMovesCursor(t *testing.T) {
	p, _, loader := newTestPlayer(t, "a.mp3", "b.mp3")

	require.NoError(t, p.Next())

	assert.Equal(t, 1, p.CurrentIndex())
	assert.Equal(t, 0, loader.sounds[1].starts)
}

func TestQueueEdges(t *testing.T) {
	p, _, _ := newTestPlayer(t, "a.mp3", "b.mp3")

	assert.ErrorIs(t, p.Previous(), ErrStartOfQueue)
	require.NoError(t, p.Next())
	assert.ErrorIs(t, p.Next(), ErrEndOfQueue)
	assert.Equal(t, 1, p.CurrentIndex())

	p.Loop = true
	require.NoError(t, p.Next())
	assert.Equal(t, 0, p.CurrentIndex())
	require.NoError(t, p.Previous())
	assert.Equal(t, 1, p.CurrentIndex())
}

func TestRemoveKeepsCursorOnSameSong(t *testing.T) {
	p, _, loader := newTestPlayer(t, "a.mp3", "b.mp3", "c.mp3")
	require.NoError(t, p.SetCurrent(2))

	require.NoError(t, p.Remove(0))

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 1, loader.sounds[0].closes)
	info, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, "c.mp3", info.Path)
}

func TestRemoveLastSongMovesCursorBack(t *testing.T) {
	p, _, _ := newTestPlayer(t, "a.mp3", "b.mp3")
	require.NoError(t, p.SetCurrent(1))

	require.NoError(t, p.Remove(1))

	info, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, "a.mp3", info.Path)

	require.NoError(t, p.Remove(0))
	_, err = p.Current()
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, p.Remove(0), ErrIndexOutOfRange)
}

func TestCloseReleasesEverySoundOnce(t *testing.T) {
	p, _, loader := newTestPlayer(t, "a.mp3", "b.mp3", "c.mp3")

	require.NoError(t, p.Close())

	for _, s := range loader.sounds {
		assert.Equal(t, 1, s.closes, s.path)
	}
	assert.Equal(t, 0, p.Len())

	assert.ErrorIs(t, p.Close(), ErrClosed)
	for _, s := range loader.sounds {
		assert.Equal(t, 1, s.closes, s.path)
	}
}

func TestCloseJoinsReleaseErrors(t *testing.T) {
	p, _, loader := newTestPlayer(t, "a.mp3", "b.mp3")
	errBusy := errors.New("device busy")
	loader.sounds[0].closeErr = errBusy

	err := p.Close()

	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, 1, loader.sounds[1].closes)
}

func TestOperationsAfterClose(t *testing.T) {
	p, _, _ := newTestPlayer(t, "a.mp3")
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Load("b.mp3"), ErrClosed)
	assert.ErrorIs(t, p.SetCurrent(0), ErrClosed)
	assert.ErrorIs(t, p.Resume(), ErrClosed)
	assert.ErrorIs(t, p.Pause(), ErrClosed)
	assert.ErrorIs(t, p.Remove(0), ErrClosed)
	_, err := p.Current()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSingleSongScenario(t *testing.T) {
	p, _, loader := newTestPlayer(t, "homies.mp3")

	info, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, "title of homies.mp3", info.Title)

	require.NoError(t, p.Resume())
	require.NoError(t, p.Pause())
	require.NoError(t, p.Close())

	require.Len(t, loader.sounds, 1)
	assert.Equal(t, 1, loader.sounds[0].closes)
}

func TestSoundLoaderFunc(t *testing.T) {
	want := &fakeSound{}
	loader := SoundLoaderFunc(func(path string) (Sound, error) {
		return want, nil
	})

	got, err := loader.Load("x.mp3")

	require.NoError(t, err)
	assert.Same(t, want, got)
}
