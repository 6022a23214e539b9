package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sysfail"
	"github.com/roach88/sysfail/internal/ir"
)

func TestResolvePolicy(t *testing.T) {
	tests := []struct {
		name     string
		written  string
		mode     ir.Mode
		expr     string
		builtin  string
		requires sysfail.Requirement
	}{
		{"default", "", ir.ModeSystem, "sysfail.Log[error, sysfail.Warn]", "Log", sysfail.RequiresClock | sysfail.RequiresStore},
		{"quick default", "", ir.ModeQuick, "sysfail.Ignore", "Ignore", sysfail.RequiresNothing},
		{"bare log", "Log", ir.ModeSystem, "sysfail.Log[error, sysfail.Warn]", "Log", sysfail.RequiresClock | sysfail.RequiresStore},
		{"log failure type", "Log[CustomError]", ir.ModeSystem, "sysfail.Log[CustomError, sysfail.Warn]", "Log", sysfail.RequiresClock | sysfail.RequiresStore},
		{"log with level", "Log[CustomError, Error]", ir.ModeSystem, "sysfail.Log[CustomError, sysfail.Error]", "Log", sysfail.RequiresClock | sysfail.RequiresStore},
		{"qualified", "sysfail.LogSimply[error, sysfail.Info]", ir.ModeSystem, "sysfail.LogSimply[error, sysfail.Info]", "LogSimply", sysfail.RequiresNothing},
		{"custom level type", "LogSimply[error, myLevel]", ir.ModeSystem, "sysfail.LogSimply[error, myLevel]", "LogSimply", sysfail.RequiresNothing},
		{"pointer failure", "Log[*os.PathError]", ir.ModeSystem, "sysfail.Log[*os.PathError, sysfail.Warn]", "Log", sysfail.RequiresClock | sysfail.RequiresStore},
		{"emit", "Emit[Moved]", ir.ModeSystem, "sysfail.Emit[Moved]", "Emit", sysfail.RequiresEvents},
		{"ignore", "Ignore", ir.ModeExclusive, "sysfail.Ignore", "Ignore", sysfail.RequiresNothing},
		{"custom", "ScreenLog", ir.ModeSystem, "ScreenLog", "", sysfail.RequiresNothing},
		{"custom generic", "ScreenLog[CustomError]", ir.ModeSystem, "ScreenLog[CustomError]", "", sysfail.RequiresNothing},
		{"foreign package", "report.Log", ir.ModeSystem, "report.Log", "", sysfail.RequiresNothing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := resolvePolicy(tt.written, tt.mode, DefaultOptions())
			require.Nil(t, err)
			assert.Equal(t, tt.expr, p.Expr)
			assert.Equal(t, tt.builtin, p.Name)
			assert.Equal(t, tt.requires, p.Requires)
			assert.Equal(t, tt.written, p.Written)
		})
	}
}

func TestResolvePolicyArguments(t *testing.T) {
	p, err := resolvePolicy("Log[CustomError, Error]", ir.ModeSystem, DefaultOptions())
	require.Nil(t, err)
	assert.Equal(t, "CustomError", p.Failure)
	assert.Equal(t, "sysfail.Error", p.Level)

	p, err = resolvePolicy("Emit[*MenuChanged]", ir.ModeSystem, DefaultOptions())
	require.Nil(t, err)
	assert.Equal(t, "*MenuChanged", p.Event)
}

func TestResolvePolicyConfiguredDefaults(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultPolicy = "LogSimply"
	opts.QuickPolicy = "LogSimply[error, Debug]"
	opts.DefaultLevel = sysfail.LevelInfo

	p, err := resolvePolicy("", ir.ModeSystem, opts)
	require.Nil(t, err)
	assert.Equal(t, "sysfail.LogSimply[error, sysfail.Info]", p.Expr)

	p, err = resolvePolicy("", ir.ModeQuick, opts)
	require.Nil(t, err)
	assert.Equal(t, "sysfail.LogSimply[error, sysfail.Debug]", p.Expr)
	assert.Empty(t, p.Written)
}

func TestResolvePolicyErrors(t *testing.T) {
	tests := []struct {
		name    string
		written string
		code    string
	}{
		{"not an expression", "Log[", ErrBadPolicy},
		{"not a type name", "func()", ErrBadPolicy},
		{"pointer", "*ScreenLog", ErrBadPolicy},
		{"unknown builtin", "sysfail.Retry", ErrBadPolicy},
		{"ignore with args", "Ignore[error]", ErrPolicyArity},
		{"log with three args", "Log[error, Warn, Info]", ErrPolicyArity},
		{"emit without event", "Emit", ErrPolicyArity},
		{"emit with two events", "Emit[A, B]", ErrPolicyArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolvePolicy(tt.written, ir.ModeSystem, DefaultOptions())
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestLevelTypeName(t *testing.T) {
	assert.Equal(t, "Trace", levelTypeName(sysfail.LevelTrace))
	assert.Equal(t, "Silent", levelTypeName(sysfail.LevelSilent))
	assert.Equal(t, "Warn", levelTypeName(sysfail.Level(42)))
}
