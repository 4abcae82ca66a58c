// Package logging builds the hclog loggers shared by swatchbook components.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Options configures logger construction.
type Options struct {
	// Name is the root logger name. Defaults to "swatchbook".
	Name string

	// Level is one of trace, debug, info, warn, error or off. Defaults to info.
	Level string

	// Output receives log lines. Defaults to os.Stderr.
	Output io.Writer

	// JSON switches to JSON formatted lines.
	JSON bool
}

// New creates a root logger.
func New(opts Options) hclog.Logger {
	name := opts.Name
	if name == "" {
		name = "swatchbook"
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Output:     out,
		Level:      ParseLevel(opts.Level),
		JSONFormat: opts.JSON,
	})
}

// ParseLevel maps a level name to an hclog.Level, defaulting to Info.
func ParseLevel(s string) hclog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return hclog.Info
	case "off", "none", "silent":
		return hclog.Off
	}
	lvl := hclog.LevelFromString(s)
	if lvl == hclog.NoLevel {
		return hclog.Info
	}
	return lvl
}
