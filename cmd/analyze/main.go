// Command analyze scores text from its arguments or stdin and prints the
// verdict as JSON. It reads the same MODEL_* settings as the service.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"finsentiment/internal/adapters/config"
	"finsentiment/internal/bootstrap"
	"finsentiment/pkg/errors"
	"finsentiment/pkg/logger"
)

func main() {
	stats := flag.Bool("stats", false, "print engine stats instead of analyzing")
	compact := flag.Bool("compact", false, "print compact JSON")
	flag.Parse()

	if err := run(flag.Args(), os.Stdin, os.Stdout, *stats, *compact); err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer, stats, compact bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Keep stdout clean for JSON; logs go to stderr at warn and above
	if err := logger.Init("warn", cfg.App.Env, cfg.App.Name); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	engine, release, err := bootstrap.NewEngine(cfg.Model, logger.Get())
	if err != nil {
		return err
	}
	defer release()

	enc := json.NewEncoder(stdout)
	if !compact {
		enc.SetIndent("", "  ")
	}

	if stats {
		return enc.Encode(engine.GetServiceStats())
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return errors.Wrap(err, "read stdin")
		}
		text = string(raw)
	}

	return enc.Encode(engine.AnalyzeSentiment(text))
}
