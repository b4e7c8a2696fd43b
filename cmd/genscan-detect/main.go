// Command genscan-detect runs a detector over a file, a flag or stdin and prints the result as JSON
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"genscan/internal/adapters/lm"
	"genscan/internal/core/imagedetect"
	"genscan/internal/core/signal"
	"genscan/internal/core/textdetect"
	"genscan/internal/platform/config"
	"genscan/internal/platform/logger"

	"github.com/goccy/go-json"
)

func main() {
	var (
		fText   = flag.String("text", "", "text to score (takes precedence over -file and stdin)")
		fFile   = flag.String("file", "", "path to a text or image file")
		fKind   = flag.String("kind", "", "text | image (default: image when -file has an image signature, else text)")
		fScorer = flag.String("scorer-url", "", "language model sidecar url (overrides GENSCAN_LM_URL)")
		fPretty = flag.Bool("pretty", false, "indent the json output")
	)
	flag.Parse()

	if err := config.LoadFromEnv(); err != nil {
		fatal(err)
	}
	// stdout carries the result, logs go to stderr
	lo := logger.FromEnv()
	lo.Writer = os.Stderr
	if os.Getenv("LOG_LEVEL") == "" {
		lo.Level = "warn"
	}
	logger.Init(lo)
	l := logger.Get()

	payload, err := readInput(*fText, *fFile, os.Stdin)
	if err != nil {
		fatal(err)
	}

	kind := strings.ToLower(strings.TrimSpace(*fKind))
	if kind == "" {
		kind = "text"
		if *fFile != "" {
			if _, err := imagedetect.Sniff(payload); err == nil {
				kind = "image"
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var res signal.Result
	switch kind {
	case "text":
		res = detectText(ctx, payload, *fScorer, l)
	case "image":
		res = imagedetect.New().Detect(ctx, payload)
	default:
		fatal(fmt.Errorf("unknown -kind %q, want text or image", kind))
	}

	enc := json.NewEncoder(os.Stdout)
	if *fPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		fatal(err)
	}
}

func detectText(ctx context.Context, payload []byte, scorerURL string, l *logger.Logger) signal.Result {
	root := config.New()
	lo := lm.FromConfig(root)
	if scorerURL != "" {
		lo.BaseURL = scorerURL
	}

	var opts textdetect.Options
	if lo.BaseURL != "" {
		client, err := lm.NewClient(lo)
		if err != nil {
			fatal(err)
		}
		opts.Scorer = client
		opts.Model = lm.Model(root)
	}
	d := textdetect.NewWithOptions(ctx, opts)
	l.Debug().Str("tier", string(d.Tier())).Msg("text detector ready")
	return d.Detect(ctx, string(payload))
}

// readInput prefers -text, then -file, then stdin
func readInput(text, file string, stdin io.Reader) ([]byte, error) {
	switch {
	case text != "":
		return []byte(text), nil
	case file != "":
		return os.ReadFile(file)
	default:
		return io.ReadAll(stdin)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "genscan-detect:", err)
	os.Exit(1)
}
