package sysfail

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity a failure is reported at.
//
// Levels map onto slog levels. LevelSilent is never written.
type Level int8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// SlogLevelTrace is the slog level used for LevelTrace records.
const SlogLevelTrace = slog.LevelDebug - 4

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelSilent:
		return "SILENT"
	default:
		return fmt.Sprintf("Level(%d)", int8(l))
	}
}

// Slog returns the slog level for l. The second result is false for
// LevelSilent and unknown levels.
func (l Level) Slog() (slog.Level, bool) {
	switch l {
	case LevelTrace:
		return SlogLevelTrace, true
	case LevelDebug:
		return slog.LevelDebug, true
	case LevelInfo:
		return slog.LevelInfo, true
	case LevelWarn:
		return slog.LevelWarn, true
	case LevelError:
		return slog.LevelError, true
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(l.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel parses a level name. Matching is case-insensitive and accepts
// "warning" for LevelWarn and "off" for LevelSilent.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off":
		return LevelSilent, nil
	default:
		return LevelWarn, fmt.Errorf("sysfail: unknown level %q", s)
	}
}

// LevelModifier selects the default level of LogSimply and Log.
//
// Implementations are zero-size types so the level is fixed by the policy's
// type arguments.
type LevelModifier interface {
	Level() Level
}

type (
	// Trace logs at LevelTrace.
	Trace struct{}
	// Debug logs at LevelDebug.
	Debug struct{}
	// Info logs at LevelInfo.
	Info struct{}
	// Warn logs at LevelWarn. It is the default.
	Warn struct{}
	// Error logs at LevelError.
	Error struct{}
	// Silent never logs unless the failure overrides its level.
	Silent struct{}
)

func (Trace) Level() Level { return LevelTrace }
func (Debug) Level() Level { return LevelDebug }
func (Info) Level() Level { return LevelInfo }
func (Warn) Level() Level { return LevelWarn }
func (Error) Level() Level { return LevelError }
func (Silent) Level() Level { return LevelSilent }

// LevelModifierNames lists the level modifier type names in severity order.
var LevelModifierNames = []string{"Trace", "Debug", "Info", "Warn", "Error", "Silent"}

// IsLevelModifierName reports whether name is one of LevelModifierNames.
func IsLevelModifierName(name string) bool {
	for _, n := range LevelModifierNames {
		if n == name {
			return true
		}
	}
	return false
}
