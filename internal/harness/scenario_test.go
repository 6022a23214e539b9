package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: test_scenario
description: "Scenario for validation"
policy: Log
cooldown: 500ms
steps:
  - at: 0s
    fail: {id: a, message: boom, level: error, cooldown: 2s}
  - at: 250ms
assertions:
  - type: outcome
    step: 0
    outcome: reported
`

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", s.Name)
	assert.Equal(t, "Log", s.Policy)
	assert.Equal(t, 500*time.Millisecond, s.Cooldown)
	require.Len(t, s.Steps, 2)
	require.NotNil(t, s.Steps[0].Fail)
	assert.Equal(t, "a", s.Steps[0].Fail.ID)
	assert.Equal(t, "error", s.Steps[0].Fail.Level)
	assert.Equal(t, 2*time.Second, s.Steps[0].Fail.Cooldown)
	assert.Nil(t, s.Steps[1].Fail)
	assert.Equal(t, 250*time.Millisecond, s.Steps[1].At)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(validScenario + "\npolcy: Log\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "missing name",
			content: `
description: d
policy: Log
steps: [{at: 0s}]
assertions: [{type: reported_count}]
`,
			want: "name is required",
		},
		{
			name: "unknown policy",
			content: `
name: n
description: d
policy: Panic
steps: [{at: 0s}]
assertions: [{type: reported_count}]
`,
			want: `policy "Panic"`,
		},
		{
			name: "bad level",
			content: `
name: n
description: d
policy: Log
level: loud
steps: [{at: 0s}]
assertions: [{type: reported_count}]
`,
			want: "level",
		},
		{
			name: "no steps",
			content: `
name: n
description: d
policy: Log
steps: []
assertions: [{type: reported_count}]
`,
			want: "steps list is required",
		},
		{
			name: "time goes backwards",
			content: `
name: n
description: d
policy: Log
steps: [{at: 1s}, {at: 500ms}]
assertions: [{type: reported_count}]
`,
			want: "steps[1]: at 500ms is before",
		},
		{
			name: "bad failure level",
			content: `
name: n
description: d
policy: Log
steps: [{at: 0s, fail: {id: a, message: m, level: loud}}]
assertions: [{type: reported_count}]
`,
			want: "steps[0].fail.level",
		},
		{
			name: "outcome step out of range",
			content: `
name: n
description: d
policy: Log
steps: [{at: 0s}]
assertions: [{type: outcome, step: 3, outcome: ok}]
`,
			want: "step 3 out of range",
		},
		{
			name: "unknown outcome",
			content: `
name: n
description: d
policy: Log
steps: [{at: 0s}]
assertions: [{type: outcomes, outcomes: [exploded]}]
`,
			want: `unknown outcome "exploded"`,
		},
		{
			name: "outcomes length",
			content: `
name: n
description: d
policy: Log
steps: [{at: 0s}, {at: 1s}]
assertions: [{type: outcomes, outcomes: [ok]}]
`,
			want: "outcomes lists 1 steps, scenario has 2",
		},
		{
			name: "unknown assertion",
			content: `
name: n
description: d
policy: Log
steps: [{at: 0s}]
assertions: [{type: trace_contains}]
`,
			want: `unknown assertion type "trace_contains"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarios_Directory(t *testing.T) {
	all, err := LoadScenarios("testdata/scenarios", "")
	require.NoError(t, err)

	var names []string
	for _, s := range all {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"boundary", "emit_menu", "ignore", "log_dedup", "log_simply", "overrides"}, names)
}

func TestLoadScenarios_Pattern(t *testing.T) {
	got, err := LoadScenarios("testdata/scenarios", "log_*")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "log_dedup", got[0].Name)
	assert.Equal(t, "log_simply", got[1].Name)
}

func TestLoadScenarios_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "one.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0644))

	got, err := LoadScenarios(path, "ignored")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "test_scenario", got[0].Name)
}

func TestLoadScenarios_BadFileNamed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\n"), 0644))

	_, err := LoadScenarios(dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}
