// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"kanade/internal/catalog"
	"kanade/internal/clock"
	"kanade/internal/config"
	"kanade/internal/logger"
	"kanade/internal/preload"
	"kanade/internal/session"
	"kanade/internal/state"
	"kanade/internal/subtitle"
	"kanade/internal/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagCatalog   string
	flagMediaBase string
	flagDataDir   string
	flagNoSubs    bool
	flagContinue  bool
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "kanade",
	Short: "Browse and play audio drama albums from the terminal",
	Long: `Kanade is a terminal catalog player for audio drama albums.
It reads a JSON catalog, plays per-track audio through mpv with
resumable positions and timed subtitles, and keeps a short play
history.`,
	Args:              cobra.NoArgs,
	PersistentPreRunE: loadConfig,
	RunE:              browseRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Catalog JSON file path or HTTPS URL")
	rootCmd.PersistentFlags().StringVar(&flagMediaBase, "media-base", "", "Base URL or directory for relative media paths")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Override the state/log directory")
	rootCmd.PersistentFlags().BoolVarP(&flagNoSubs, "no-subs", "n", false, "Disable subtitles")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging")
	rootCmd.Flags().BoolVarP(&flagContinue, "continue", "c", false, "Resume the last played track")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagCatalog != "" {
		cfg.Catalog = flagCatalog
	}
	if flagMediaBase != "" {
		cfg.MediaBase = flagMediaBase
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagNoSubs {
		cfg.Subtitles = false
	}
	if flagDebug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func newLogger() (*zap.SugaredLogger, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	return logger.New(path, cfg.Debug)
}

// openCatalog loads the catalog feed and returns it with the resolved
// source location.
func openCatalog() (*catalog.Catalog, string, error) {
	if cfg.Catalog == "" {
		return nil, "", fmt.Errorf("no catalog configured: set catalog in config.toml or pass --catalog")
	}
	source, err := cfg.ExpandCatalog()
	if err != nil {
		return nil, "", err
	}
	cat, err := catalog.Load(source)
	if err != nil {
		return nil, "", fmt.Errorf("loading catalog: %w", err)
	}
	return cat, source, nil
}

func openStore() (*state.Store, error) {
	path, err := cfg.StatePath()
	if err != nil {
		return nil, err
	}
	return state.Open(path)
}

// mediaResolver builds the relative-path resolver. Without an explicit
// media base, media paths resolve against a local catalog file's
// directory.
func mediaResolver(source string) *catalog.Resolver {
	base := cfg.MediaBase
	if base == "" && !strings.Contains(source, "://") {
		base = filepath.Dir(source)
	}
	return catalog.NewResolver(base)
}

// app bundles the playback stack behind the interactive commands.
type app struct {
	log    *zap.SugaredLogger
	cat    *catalog.Catalog
	store  *state.Store
	mpv    *clock.MPV
	pre    *preload.Manager
	sess   *session.Session
	relay  *ui.Relay
	cancel context.CancelFunc
}

// newApp wires the full playback stack and starts the session's event
// loop. Callers must Close it.
func newApp() (*app, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}

	cat, source, err := openCatalog()
	if err != nil {
		return nil, err
	}

	store, err := openStore()
	if err != nil {
		return nil, err
	}

	if !clock.Available() {
		store.Close()
		return nil, fmt.Errorf("mpv not found in PATH; install mpv to play audio")
	}
	mpv, err := clock.NewMPV()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("starting mpv: %w", err)
	}

	resolver := mediaResolver(source)
	pre, err := preload.NewManager(resolver.Resolve)
	if err != nil {
		mpv.Close()
		store.Close()
		return nil, fmt.Errorf("preparing preload: %w", err)
	}

	// stored preferences win over config values once they exist
	rate := cfg.Rate
	if _, ok := store.Pref("playback_rate"); ok {
		rate = store.PlaybackRate()
	}
	volume := cfg.Volume
	if _, ok := store.Pref("volume"); ok {
		volume = store.Volume()
	}

	relay := ui.NewRelay()
	sess := session.New(session.Options{
		Clock:            mpv,
		Progress:         store,
		History:          store,
		Prefs:            store,
		Subtitles:        subtitle.NewLoader(),
		Preload:          pre,
		Resolve:          resolver.Resolve,
		Notify:           relay.Notify,
		Logger:           log,
		SubtitlesEnabled: cfg.Subtitles && store.SubtitlesEnabled(),
		Rate:             rate,
		Volume:           volume,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go sess.Run(ctx)

	return &app{
		log:    log,
		cat:    cat,
		store:  store,
		mpv:    mpv,
		pre:    pre,
		sess:   sess,
		relay:  relay,
		cancel: cancel,
	}, nil
}

func (a *app) Close() {
	a.cancel()
	a.pre.Close()
	if err := a.mpv.Close(); err != nil {
		a.log.Warnw("closing mpv", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.log.Warnw("closing state store", "error", err)
	}
	a.log.Sync()
}

// browseRun opens the album browser.
func browseRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := ui.Options{
		Catalog: a.cat,
		Session: a.sess,
		Store:   a.store,
		Relay:   a.relay,
		Logger:  a.log,
	}

	if flagContinue {
		if albumID, trackID, ok := a.store.LastPlayed(); ok {
			if album := a.cat.Album(albumID); album != nil && album.Track(trackID) != nil {
				opts.Album = album
				opts.StartTrackID = trackID
			}
		}
	}

	return ui.Run(opts)
}
