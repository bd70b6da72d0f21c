package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pes18fan/ump/audio"
	"github.com/pes18fan/ump/config"
	"github.com/pes18fan/ump/metadata"
	"github.com/pes18fan/ump/player"
)

func main() {
	// DEBUG and UMP_CONFIG may come from a .env file
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ump:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var debug bool

	cmd := &cobra.Command{
		Use:           "ump <audio-file>...",
		Short:         "Play audio files in the terminal",
		Long:          "Show the tags of mp3, flac, ogg and wav files and play them. Press q to quit.",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(configPath, debug, args)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to configuration file")
	cmd.Flags().BoolVar(&debug, "debug", false, "write a debug log (same as setting DEBUG)")

	return cmd
}

func setupLogging(cfg *config.Config, debug bool) (io.Closer, error) {
	if !debug && len(os.Getenv("DEBUG")) == 0 {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}

	f, err := tea.LogToFile(cfg.Log.File, "debug")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return f, nil
}

func run(configPath string, debug bool, paths []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logFile, err := setupLogging(cfg, debug)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log.Println("loaded config from", configPath)

	engine, err := audio.NewEngine(cfg.Audio)
	if err != nil {
		return err
	}
	defer engine.Close()

	p := player.New(
		metadata.NewReader(cfg.Metadata.TagsRequired()),
		engineLoader(engine),
		cfg.Playback.Fade(),
	)
	p.Loop = cfg.Playback.Loop
	defer p.Close()

	if err := loadAll(p, paths); err != nil {
		return err
	}

	prog := tea.NewProgram(newModel(p, engine.Finished(), cfg.UI.ArtEnabled()), tea.WithAltScreen())
	log.Println("set up tea program")

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("tea program got error: %w", err)
	}
	return nil
}

// loadAll loads every path into the player. A single file must load; with
// several, the broken ones are reported and skipped.
func loadAll(p *player.Player, paths []string) error {
	for _, path := range paths {
		if err := p.Load(path); err != nil {
			if len(paths) == 1 {
				return fmt.Errorf("failed to load audio file: %w", err)
			}
			fmt.Fprintf(os.Stderr, "ump: skipping %s: %v\n", path, err)
		}
	}
	if p.Len() == 0 {
		return errors.New("none of the given files could be loaded")
	}
	return nil
}

func engineLoader(e *audio.Engine) player.SoundLoader {
	return player.SoundLoaderFunc(func(path string) (player.Sound, error) {
		s, err := e.Load(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
