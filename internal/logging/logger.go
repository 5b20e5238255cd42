// Package logging builds the service logger and keeps the SQLite grade log
// that replay fixtures are exported from.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// logger fields
const (
	PACKAGE = "pkg"
	SERVICE = "svc"
	FUNC    = "func"
	EVENT   = "event"
	ID      = "id"
	CODE    = "code"
	WEAPON  = "weapon"
	GRADE   = "grade"
	VERSION = "version"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// #region new
// New returns a timestamped logger at the named level writing to w. A nil w
// writes to stderr.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel accepts zerolog level names in any case. An empty name is info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return lvl, nil
}

// #endregion new
