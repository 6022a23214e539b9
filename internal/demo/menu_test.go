package demo

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sysfail"
	"github.com/roach88/sysfail/internal/gen"
	"github.com/roach88/sysfail/internal/testutil"
)

// The wrappers keep the annotated parameters and append the injected ones.
var (
	_ func(*Menu, string, sysfail.Clock)       = selectItem
	_ func(*Menu, sysfail.EventWriter[Closed]) = closeMenu
	_ func(*Menu)                              = selectFirst
)

// captureSite swaps *site for a fresh copy logging to a capture, so the
// dedup store starts empty on every run.
func captureSite(t *testing.T, site **sysfail.Site) *testutil.LogCapture {
	t.Helper()
	orig := *site
	capture := testutil.NewLogCapture(slog.LevelDebug)
	*site = sysfail.NewSite(orig.Name, orig.File, orig.Line).WithLogger(capture.Logger())
	t.Cleanup(func() { *site = orig })
	return capture
}

func TestGeneratedIsFresh(t *testing.T) {
	problems, err := gen.Check(context.Background(), []string{"."}, gen.DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, problems, "run sysfail generate in internal/demo")
}

func TestSelectItem(t *testing.T) {
	capture := captureSite(t, &selectItemSysfailSite)
	clock := testutil.NewManualClock()
	menu := &Menu{Items: []string{"open", "save"}}

	selectItem(menu, "save", clock)
	assert.Equal(t, "save", menu.Selected)
	assert.Zero(t, capture.Len(), "success has no side effect")

	selectItem(menu, "quit", clock)
	assert.Equal(t, "save", menu.Selected)
	require.Equal(t, 1, capture.Len())

	rec := capture.Records()[0]
	assert.Equal(t, slog.LevelWarn, rec.Level)
	assert.Equal(t, "unknown menu item", rec.Message)
	assert.Equal(t, "selectItem", rec.Attrs["target"])
	assert.Equal(t, "menu.go:24", rec.Attrs["source"])

	selectItem(menu, "quit", clock)
	assert.Equal(t, 1, capture.Len(), "repeat within the cooldown is suppressed")

	clock.Advance(sysfail.DefaultCooldown)
	selectItem(menu, "quit", clock)
	assert.Equal(t, 2, capture.Len())
}

func TestCloseMenu(t *testing.T) {
	capture := captureSite(t, &closeMenuSysfailSite)
	bus := testutil.NewRecordingBus[Closed]()
	menu := &Menu{Open: true}

	closeMenu(menu, bus)
	assert.False(t, menu.Open)
	assert.Zero(t, bus.Len())

	closeMenu(menu, bus)
	assert.Equal(t, []Closed{{Reason: "menu is not open"}}, bus.Events())
	assert.Zero(t, capture.Len())
}

func TestSelectFirst(t *testing.T) {
	capture := captureSite(t, &selectFirstSysfailSite)

	menu := &Menu{Items: []string{"open", "save"}}
	selectFirst(menu)
	assert.Equal(t, "open", menu.Selected)
	assert.Zero(t, capture.Len())

	selectFirst(&Menu{})
	require.Equal(t, 1, capture.Len())
	rec := capture.Records()[0]
	assert.Equal(t, slog.LevelWarn, rec.Level)
	assert.Equal(t, sysfail.ErrMissing.Error(), rec.Message)
	assert.Equal(t, "selectFirst", rec.Attrs["target"])
}
