package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"MarkupBoard/internal/config"
	"MarkupBoard/internal/export"
	"MarkupBoard/internal/logging"
	"MarkupBoard/internal/media"
	lanpreview "MarkupBoard/internal/net"
	"MarkupBoard/internal/render"
	"MarkupBoard/internal/state"
	"MarkupBoard/internal/ui"
)

const AppID = "io.markupboard.app"

func usage() {
	fmt.Fprintf(os.Stderr, `usage: markupboard [command] [flags]

commands:
  gui       open the annotation window (default)
  flatten   burn a data export into its media without a window
  discover  list boards shared on the local network
`)
}

func main() {
	args := os.Args[1:]
	cmd := "gui"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "gui":
		err = runGUI(args)
	case "flatten":
		err = runFlatten(args)
	case "discover":
		err = runDiscover(args)
	case "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "markupboard:", err)
		os.Exit(1)
	}
}

// setup loads the config and installs the global logger.
func setup(path string) (*config.Config, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	undo, err := logging.Install(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, undo, nil
}

func runGUI(args []string) error {
	fs := flag.NewFlagSet("gui", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (default ~/.markupboard/config.toml)")
	mediaPath := fs.String("media", "", "image or video to open")
	framePath := fs.String("frame", "", "still frame of the video")
	dataPath := fs.String("data", "", "annotation data export to restore")
	share := fs.Bool("share", false, "serve a live preview on the local network")
	_ = fs.Parse(args)

	cfg, undo, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer undo()
	log := zap.L().Named("main")

	fonts, err := render.LoadFontBook(cfg.Display.Font)
	if err != nil {
		return err
	}
	defer fonts.Close()

	fa := app.NewWithID(AppID)
	window := ui.New(fa, cfg, fonts)

	if *mediaPath != "" {
		if err := window.OpenMedia(*mediaPath, *framePath); err != nil {
			return err
		}
	}
	if *dataPath != "" {
		f, err := os.Open(*dataPath)
		if err != nil {
			return err
		}
		err = window.LoadDocument(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	if cfg.Viewer.Enabled || *share {
		srv, err := startPreview(cfg.Viewer, window)
		if err != nil {
			log.Warn("live preview unavailable", zap.Error(err))
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}()
		}
	}

	path := *cfgPath
	if path == "" {
		path = config.Path()
	}
	log.Info("starting", zap.String("config", path))
	window.ShowAndRun()

	cfg.RememberSettings(window.Settings().Settings())
	if err := cfg.Save(path); err != nil {
		log.Warn("toolbar defaults not saved", zap.Error(err))
	}
	return nil
}

// startPreview publishes every revision of the session to read-only
// viewers.
func startPreview(cfg config.ViewerConfig, window *ui.App) (*lanpreview.Server, error) {
	log := zap.L().Named("main")
	hub := lanpreview.NewHub(state.SessionID())
	srv := lanpreview.NewServer(hub)
	if _, err := srv.Listen(cfg.Port); err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Serve(); err != nil {
			log.Error("preview server stopped", zap.Error(err))
		}
	}()
	if cfg.Advertise {
		if err := srv.Advertise(cfg.Instance); err != nil {
			log.Warn("mDNS advertisement failed", zap.Error(err))
		}
	}

	publish := func(rev uint64) {
		if err := hub.Publish(rev, window.Document()); err != nil {
			log.Warn("publish failed", zap.Uint64("rev", rev), zap.Error(err))
		}
	}
	window.Store().OnChange(publish)
	window.OnMediaChanged = func(*media.Media) { publish(window.Store().Revision()) }
	publish(window.Store().Revision())

	link, err := srv.ShareLink()
	if err != nil {
		return srv, nil
	}
	log.Info("live preview", zap.String("link", link))
	window.SetStatus("Live preview at " + link)
	return srv, nil
}

func runFlatten(args []string) error {
	fs := flag.NewFlagSet("flatten", flag.ExitOnError)
	cfgPath := fs.String("config", "", "config file")
	mediaPath := fs.String("media", "", "image or video the annotations were drawn on")
	framePath := fs.String("frame", "", "still frame of the video")
	dataPath := fs.String("data", "", "annotation data export")
	display := fs.String("display", "", "surface size the annotations were drawn at, WxH")
	format := fs.String("format", "", "png, jpeg, webp or pdf")
	out := fs.String("out", "", "output directory")
	_ = fs.Parse(args)

	if *mediaPath == "" || *dataPath == "" {
		fs.Usage()
		return errors.New("flatten needs -media and -data")
	}

	cfg, undo, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer undo()

	f, err := os.Open(*dataPath)
	if err != nil {
		return err
	}
	doc, err := export.ReadDocument(f)
	f.Close()
	if err != nil {
		return err
	}

	size := export.Dimensions{Width: cfg.Display.Width, Height: cfg.Display.Height}
	if doc.Display != nil {
		size = *doc.Display
	}
	if *display != "" {
		if size, err = export.ParseDimensions(*display); err != nil {
			return err
		}
	}

	fmtName := cfg.Export.Format
	if *format != "" {
		fmtName = *format
	}
	ef, err := export.ParseFormat(fmtName)
	if err != nil {
		return err
	}
	dir := cfg.Export.Dir
	if *out != "" {
		dir = *out
	}

	m, err := media.Open(*mediaPath)
	if err != nil {
		return err
	}
	if *framePath != "" {
		if err := m.WithFrame(*framePath); err != nil {
			return err
		}
	}

	fonts, err := render.LoadFontBook(cfg.Display.Font)
	if err != nil {
		return err
	}
	defer fonts.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := export.NewExporter(dir, ef, fonts).ExportImage(ctx, export.Request{
		Source:      media.Load(ctx, m),
		Annotations: doc.Annotations,
		Display:     size,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s %s, %d annotations)\n", res.RasterPath, res.MIME, res.Native, res.Drawn)
	return nil
}

func runDiscover(args []string) error {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	timeout := fs.Duration("timeout", 3*time.Second, "how long to listen for boards")
	_ = fs.Parse(args)

	if _, undo, err := setup(""); err == nil {
		defer undo()
	}

	seen := 0
	err := lanpreview.Browse(*timeout, func(b lanpreview.Board) {
		seen++
		fmt.Printf("%s\t%s\n", b.Name, b.URL())
	})
	if err != nil {
		return err
	}
	if seen == 0 {
		fmt.Println("no boards found")
	}
	return nil
}
