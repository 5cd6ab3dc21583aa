package config

import (
	"flag"
	"os"
	"time"

	"github.com/IndraPur1/ChatApp/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   base URL of the chat server (default from Config)
//	-d string   path of the local database file
//	-t int      auto-login timeout in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the chat server")
	fs.StringVar(&cfg.DatabaseFile, "d", cfg.DatabaseFile, "path of the local database file")
	resolveTimeout := fs.Int("t", int(cfg.ResolveTimeout.Seconds()), "auto-login timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ResolveTimeout = time.Duration(*resolveTimeout) * time.Second
}
