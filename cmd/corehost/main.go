// corehost is the host harness spec.md §6.2 describes: it fetches one
// HTML or Markdown document, runs it through the parse/style/layout
// pipeline, optionally rasterises the result to a PNG snapshot, and exits
// with a status code reporting what happened. It is deliberately thin —
// everything interesting lives in the pkg/* packages it wires together.
//
// Grounded on rupor-github-fb2cng/cmd/fbc/main.go's urfave/cli/v3
// scaffolding: a single root Command, graceful shutdown via
// signal.NotifyContext, an ExitErrHandler that logs the terminal error
// through zap before a deferred os.Exit, and an errWasHandled flag so that
// deferred exit doesn't double-report an already-logged failure.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"corehost/pkg/cssstyle"
	"corehost/pkg/dom"
	"corehost/pkg/fontcache"
	"corehost/pkg/htmltree"
	"corehost/pkg/imagecache"
	"corehost/pkg/layout"
	"corehost/pkg/logsink"
	"corehost/pkg/markdown"
	"corehost/pkg/render"
	"corehost/pkg/resource"
)

// usageError marks a malformed command line — spec.md §6.2's exit code 2 —
// as distinct from an unreadable-input failure (exit code 1). Every other
// error returned from run falls through to the unreadable-input code.
type usageError struct{ err error }

func (u *usageError) Error() string { return u.err.Error() }
func (u *usageError) Unwrap() error { return u.err }

// errWasHandled mirrors fbc/cmd/fbc/main.go's flag of the same name: set by
// exitErrHandler once the terminal error has been logged, so the deferred
// os.Exit in main doesn't print it a second time to stderr.
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	loggerFrom(ctx).Error("run failed", zap.Error(err))
	errWasHandled = true
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return &usageError{err: err}
}

type loggerKey struct{}

func loggerFrom(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// A per-run identifier makes it possible to correlate one invocation's
	// log lines when several corehost runs interleave in a shared log
	// stream (e.g. a batch of documents processed by a parent script).
	logger = logger.With(zap.String("run_id", uuid.New().String()))
	ctx = context.WithValue(ctx, loggerKey{}, logger)

	app := &cli.Command{
		Name:            "corehost",
		Usage:           "parses, styles and lays out an HTML or Markdown document",
		HideHelpCommand: true,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Value: 1280, Usage: "viewport width in CSS pixels"},
			&cli.IntFlag{Name: "height", Value: 1024, Usage: "viewport height in CSS pixels"},
			&cli.Float64Flag{Name: "pixel-ratio", Value: 1.0, Usage: "device pixel ratio applied to the rasterised snapshot"},
			&cli.StringFlag{Name: "out", Usage: "write a rasterised PNG snapshot to `FILE`"},
		},
		ArgsUsage: "SOURCE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd, logger)
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main; no deferred function
	// after this one should depend on running.
	defer func() {
		if err == nil {
			return
		}
		if !errWasHandled {
			fmt.Fprintf(os.Stderr, "corehost: %v\n", err)
		}
		var ue *usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}()
	err = app.Run(ctx, os.Args)
}

func run(ctx context.Context, cmd *cli.Command, logger *zap.Logger) error {
	if cmd.NArg() != 1 {
		return &usageError{err: fmt.Errorf("expected exactly one SOURCE argument (path or URL), got %d", cmd.NArg())}
	}
	width := cmd.Int("width")
	height := cmd.Int("height")
	ratio := cmd.Float64("pixel-ratio")
	if width <= 0 || height <= 0 || ratio <= 0 {
		return &usageError{err: fmt.Errorf("--width, --height and --pixel-ratio must all be positive")}
	}

	source := cmd.Args().Get(0)
	sink := logsink.NewZapSink(logger)
	provider := resource.NewProvider(source)

	body, err := provider.Fetch(source)
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}

	doc := parseDocument(source, string(body), sink)
	sheets := collectStylesheets(doc, provider, sink)

	fonts := fontcache.NewCache(resource.FontSource{Provider: provider, Dir: "fonts"}, []string{"sans-serif", "serif"}, sink)
	images := imagecache.NewCache(provider, sink)

	eng := &layout.Engine{Fonts: fonts, Images: images}
	viewport := layout.Viewport{Width: float64(width), Height: float64(height), PixelRatio: ratio}
	tree := eng.Build(doc, sheets, viewport)

	if out := cmd.String("out"); out != "" {
		painter := render.NewBitmapPainter(int(float64(width)*ratio), int(float64(height)*ratio), fonts)
		render.PaintTree(tree, tree.Root(), painter, fonts, images)
		if err := imaging.Save(painter.Dst, out); err != nil {
			logger.Warn("failed writing snapshot", zap.String("path", out), zap.Error(err))
		} else {
			logger.Info("wrote snapshot", zap.String("path", out))
		}
	}

	if diag := sink.Diagnostics(); diag != nil {
		logger.Debug("recoverable diagnostics during parse/layout", zap.Error(diag))
	}

	logger.Info("layout complete",
		zap.String("source", source),
		zap.Int("views", countViews(tree)),
		zap.Bool("quirks", doc.QuirksMode() != dom.NoQuirks))
	return nil
}

// parseDocument dispatches to the HTML tree builder or the Markdown
// converter by the source's file extension, per spec.md §6.2's "HTML or
// Markdown document" — the only signal the CLI contract gives for telling
// the two apart.
func parseDocument(source, body string, sink logsink.Sink) *dom.Document {
	lower := strings.ToLower(source)
	if strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown") {
		return markdown.Parse(body, sink)
	}
	return htmltree.Run(body, sink)
}

// collectStylesheets gathers every `<style>` element's text content and
// every `<link rel="stylesheet">` element's fetched href into the ordered
// stylesheet list the cascade resolves against. spec.md's core itself takes
// "used values supplied by the caller" as a given (§1's cascade Non-goal);
// discovering a document's own stylesheets is exactly the host-harness
// responsibility that non-goal leaves to a caller like this one.
func collectStylesheets(doc *dom.Document, provider *resource.Provider, sink logsink.Sink) []*cssstyle.Stylesheet {
	var sheets []*cssstyle.Stylesheet
	var walk func(r dom.Ref)
	walk = func(r dom.Ref) {
		if doc.IsElement(r) {
			switch doc.TagNameString(r) {
			case "style":
				var text strings.Builder
				for c := doc.FirstChild(r); !c.IsZero(); c = doc.NextSibling(c) {
					if doc.IsText(c) {
						text.WriteString(doc.TextData(c))
					}
				}
				if text.Len() > 0 {
					sheets = append(sheets, cssstyle.ParseStylesheet(text.String()))
				}
			case "link":
				rel, _ := doc.GetAttr(r, "rel")
				href, ok := doc.GetAttr(r, "href")
				if ok && strings.EqualFold(rel, "stylesheet") {
					css, err := provider.FetchText(href)
					if err != nil {
						sink.Log(logsink.LevelWarn, "corehost", "failed to fetch stylesheet "+href+": "+err.Error())
					} else {
						sheets = append(sheets, cssstyle.ParseStylesheet(css))
					}
				}
			}
		}
		for c := doc.FirstChild(r); !c.IsZero(); c = doc.NextSibling(c) {
			walk(c)
		}
	}
	if root := doc.Root(); !root.IsZero() {
		walk(root)
	}
	return sheets
}

func countViews(t *layout.Tree) int {
	root := t.Root()
	if root.IsZero() {
		return 0
	}
	n := 0
	var walk func(v layout.ViewRef)
	walk = func(v layout.ViewRef) {
		n++
		for c := t.FirstChild(v); !c.IsZero(); c = t.NextSibling(c) {
			walk(c)
		}
	}
	walk(root)
	return n
}
