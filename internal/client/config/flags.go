package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/useradmin/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   API base URL
//	-t int      request timeout in seconds
//	-d string   path to the local SQLite database
//	-w int      search debounce in milliseconds
//	-l int      rows per page
//	-v          debug logging
//
// args are filtered with flagx.FilterArgs so flags owned by other loaders
// (such as -c) do not break parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-d", "-w", "-l", "-v"})

	fs := flag.NewFlagSet("console", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	debounce := fs.Int("w", int(cfg.SearchDebounce.Milliseconds()), "search debounce (in milliseconds)")
	fs.IntVar(&cfg.PageLimit, "l", cfg.PageLimit, "rows per page")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	cfg.SearchDebounce = time.Duration(*debounce) * time.Millisecond
	if *verbose {
		cfg.LogLevel = "debug"
	}
	return nil
}
