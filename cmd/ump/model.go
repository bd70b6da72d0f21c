package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/pes18fan/ump/audio"
	"github.com/pes18fan/ump/metadata"
	"github.com/pes18fan/ump/player"
	"github.com/pes18fan/ump/termimg"
)

const POSITION_UPDATE_INTERVAL = time.Second
const ART_COLS = 24

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("87"))
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Every access to the player happens inside Update, which bubbletea runs on
// a single goroutine. Commands only produce messages.
type model struct {
	termWidth  int
	termHeight int

	player   *player.Player
	finished <-chan *audio.Sound
	showArt  bool

	keys     keyMap
	help     help.Model
	progress progress.Model

	songs    []metadata.Info
	index    int
	info     metadata.Info
	art      termimg.Image
	position time.Duration
	length   time.Duration
	state    PlayState
	err      error
}

type startMsg struct{}

type tickMsg time.Time

type finishedMsg struct {
	sound player.Sound
}

func tick() tea.Cmd {
	return tea.Tick(POSITION_UPDATE_INTERVAL, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func listenForFinished(finished <-chan *audio.Sound) tea.Cmd {
	return func() tea.Msg {
		return finishedMsg{sound: <-finished}
	}
}

func newModel(p *player.Player, finished <-chan *audio.Sound, showArt bool) model {
	return model{
		player:   p,
		finished: finished,
		showArt:  showArt,
		keys:     defaultKeyMap(),
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		songs:    p.Songs(),
		state:    paused,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startMsg{} },
		listenForFinished(m.finished),
		tick(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		m = m.apply(m.currentInfo())
		if err := m.player.Resume(); err != nil {
			return m.apply(ErrorUpdate{err}), nil
		}
		return m.apply(PlayStateUpdate{PlayState: playing}), nil
	case tickMsg:
		return m.apply(m.pollPosition()...), tick()
	case finishedMsg:
		// a song skipped just as it ran out must not advance the queue again
		if !m.player.IsCurrent(msg.sound) {
			log.Println("ignoring finished signal of a song that is no longer current")
			return m, listenForFinished(m.finished)
		}
		log.Println("finished playing track", m.info.Path)
		return m.advance(), listenForFinished(m.finished)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.PlayPause):
			log.Println("received playpause command")
			isPlaying, err := m.player.Toggle()
			if err != nil {
				return m.apply(ErrorUpdate{err}), nil
			}
			state := paused
			if isPlaying {
				state = playing
			}
			return m.apply(PlayStateUpdate{PlayState: state}), nil
		case key.Matches(msg, m.keys.Next):
			return m.skip(m.player.Next), nil
		case key.Matches(msg, m.keys.Prev):
			return m.skip(m.player.Previous), nil
		}
	case tea.WindowSizeMsg:
		m.termHeight = msg.Height
		m.termWidth = msg.Width
		m.progress.Width = max(10, min(msg.Width-4, 60))
		m.help.Width = msg.Width
	}

	return m, nil
}

func (m model) apply(statuses ...Status) model {
	for _, s := range statuses {
		switch status := s.(type) {
		case PositionUpdate:
			m.position = status.Position
			m.length = status.Length
		case PlayStateUpdate:
			m.state = status.PlayState
			log.Println("playback state updated:", status.PlayState)
		case AudioInfoUpdate:
			m.info = status.Info
			m.index = status.Index
			m.art = status.Art
			m.err = nil
			log.Println("audio info updated")
		case ErrorUpdate:
			m.err = status.Err
			log.Println("error:", status.Err)
		}
	}
	return m
}

func (m model) currentInfo() Status {
	info, err := m.player.Current()
	if err != nil {
		return ErrorUpdate{err}
	}

	var art termimg.Image
	if m.showArt {
		art, err = termimg.Encode(info.Picture, ART_COLS)
		if err != nil {
			log.Println("failed to read artwork:", err)
		}
	}

	return AudioInfoUpdate{
		Info:  info,
		Index: m.player.CurrentIndex(),
		Art:   art,
	}
}

func (m model) pollPosition() []Status {
	pos, length, err := m.player.Progress()
	if err != nil {
		return nil
	}

	statuses := []Status{PositionUpdate{
		Position: pos.Round(time.Second),
		Length:   length.Round(time.Second),
	}}

	// a track that ran out stays stopped until the user starts it again
	if m.state != stopped {
		state := paused
		if m.player.Playing() {
			state = playing
		}
		if state != m.state {
			statuses = append(statuses, PlayStateUpdate{PlayState: state})
		}
	}
	return statuses
}

// advance moves on to the next song after the current one ran out.
func (m model) advance() model {
	if err := m.player.Next(); err != nil {
		if errors.Is(err, player.ErrEndOfQueue) {
			return m.apply(PlayStateUpdate{PlayState: stopped})
		}
		return m.apply(ErrorUpdate{err})
	}
	m = m.apply(m.currentInfo())
	if err := m.player.Resume(); err != nil {
		return m.apply(ErrorUpdate{err})
	}
	return m.apply(PlayStateUpdate{PlayState: playing})
}

func (m model) skip(move func() error) model {
	if err := move(); err != nil {
		return m.apply(ErrorUpdate{err})
	}
	m = m.apply(m.currentInfo())
	state := paused
	if m.player.Playing() {
		state = playing
	}
	return m.apply(PlayStateUpdate{PlayState: state}, PositionUpdate{})
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headingStyle.Width(m.termWidth).Align(lipgloss.Center).Render("ump"))
	b.WriteString("\n\n")

	if m.showArt && !m.art.Empty() {
		// the renderer counts the image as a single line, so the rows it
		// covers are reserved with blank lines before the info block
		b.WriteString(termimg.Clear())
		b.WriteString(m.art.Data)
		b.WriteString(strings.Repeat("\n", m.art.Rows))
		b.WriteString("\n")
	}

	info := m.info
	lines := []string{
		fmt.Sprintf("Title     : %s", info.Title),
		fmt.Sprintf("Artist    : %s", info.Artist),
		fmt.Sprintf("Album     : %s", info.Album),
		fmt.Sprintf("Year      : %d", info.Year),
		fmt.Sprintf("Genre     : %s", info.Genre),
		fmt.Sprintf("Bitrate   : %d [kb/s]", info.BitrateKbps),
		fmt.Sprintf("Length    : %d [s]", info.LengthSecs()),
		fmt.Sprintf("Channels  : %d", info.Channels),
		fmt.Sprintf("Samplerate: %d [hz]", info.SampleRateHz),
	}
	b.WriteString(infoStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")

	ratio := 0.0
	if m.length > 0 {
		ratio = float64(m.position) / float64(m.length)
	}
	b.WriteString(m.progress.ViewAs(ratio))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s / %s  %s\n\n", m.position, m.length, m.state))

	width := m.termWidth
	if width <= 0 {
		width = 80
	}
	for i, song := range m.songs {
		line := runewidth.Truncate(fmt.Sprintf("%2d. %s", i+1, song.DisplayTitle()), width-2, "…")
		if i == m.index {
			b.WriteString(currentStyle.Render("▶ " + line))
		} else {
			b.WriteString(dimStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")

	return b.String()
}
