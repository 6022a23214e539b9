package sysfail

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Site is the registration of one fallible system.
//
// The generator declares one package-level Site per annotated function. It
// labels log output with the function's name and owns the function's dedup
// store, which lives as long as the process.
type Site struct {
	// Name labels the site. Log records carry it as the "target" attribute.
	Name string

	// File and Line locate the annotated function.
	File string
	Line int

	logger      *slog.Logger
	cooldown    time.Duration
	hasCooldown bool
	seen        Store
}

// NewSite creates a site for the function name declared at file:line.
func NewSite(name, file string, line int) *Site {
	return &Site{Name: name, File: file, Line: line}
}

// WithLogger sets the logger the site reports to and returns s.
// A nil logger restores slog.Default.
func (s *Site) WithLogger(l *slog.Logger) *Site {
	s.logger = l
	return s
}

// WithCooldown sets the site's cooldown and returns s. Failures
// implementing Cooldowner still take precedence.
func (s *Site) WithCooldown(d time.Duration) *Site {
	s.cooldown = d
	s.hasCooldown = true
	return s
}

// Logger returns the logger the site reports to.
func (s *Site) Logger() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

// Seen returns the site's dedup store.
func (s *Site) Seen() *Store {
	return &s.seen
}

// Source returns "file:line", or "" when the file is unknown.
func (s *Site) Source() string {
	if s.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// CooldownFor returns the cooldown that applies to err at this site.
func (s *Site) CooldownFor(err error) time.Duration {
	if c, ok := As[Cooldowner](err); ok {
		return c.Cooldown()
	}
	if s.hasCooldown {
		return s.cooldown
	}
	return DefaultCooldown
}

// Report writes msg at level, labeled with the site. It returns false when
// nothing was written because the level is silent or disabled.
func (s *Site) Report(level Level, msg string) bool {
	lv, ok := level.Slog()
	if !ok {
		return false
	}
	ctx := context.Background()
	l := s.Logger()
	if !l.Enabled(ctx, lv) {
		return false
	}
	attrs := []slog.Attr{slog.String("target", s.Name)}
	if src := s.Source(); src != "" {
		attrs = append(attrs, slog.String("source", src))
	}
	l.LogAttrs(ctx, lv, msg, attrs...)
	return true
}
