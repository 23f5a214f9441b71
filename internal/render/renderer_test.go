package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMarkdown(t *testing.T) {
	md := string(StatusMarkdown(Status{
		Version:     "v0.3.0",
		Running:     true,
		Channel:     3,
		APILevel:    11,
		Width:       120,
		Height:      40,
		Title:       "main.go | xvim",
		EventCounts: map[string]uint64{"grid_line": 42, "flush": 7},
		Settings:    map[string]any{"refresh_rate": uint64(60)},
	}))

	assert.Contains(t, md, "# xvim v0.3.0")
	assert.Contains(t, md, "> [!NOTE]\n> Engine attached on channel 3 (api level 11).")
	assert.Contains(t, md, "| Grid | 120x40 |")
	assert.Contains(t, md, `| Title | main.go \| xvim |`)
	assert.Contains(t, md, "| Mode | - |")
	assert.Less(t, strings.Index(md, "`flush`"), strings.Index(md, "`grid_line`"))
	assert.Contains(t, md, "```json\n{\n  \"refresh_rate\": 60\n}\n```")
	assert.NotContains(t, md, "## Channels")
}

func TestStatusMarkdownStopped(t *testing.T) {
	md := string(StatusMarkdown(Status{StopCause: "engine exited"}))
	assert.Contains(t, md, "> [!WARNING]\n> Engine stopped: engine exited")
	assert.NotContains(t, md, "## Redraw events")

	md = string(StatusMarkdown(Status{}))
	assert.Contains(t, md, "Engine stopped: not started")
}

func TestRenderStatus(t *testing.T) {
	r := NewRenderer()
	html, err := r.RenderStatus(Status{
		Running:  true,
		Settings: map[string]any{"transparency": 1.0},
		Channels: []map[string]any{{"id": 3}},
	})
	require.NoError(t, err)

	assert.Contains(t, html, `<table class="status-table">`)
	assert.Contains(t, html, `<div class="code-block" data-lang="json">`)
	assert.Contains(t, html, "Engine attached on channel 0")
	assert.Contains(t, html, `id="settings"`)
}

func TestRenderShell(t *testing.T) {
	r := NewRenderer()

	shell := r.RenderShell()
	assert.NotContains(t, shell, "{{CONTENT}}")
	assert.NotContains(t, shell, "{{STYLE}}")
	assert.Contains(t, shell, `<main id="status"></main>`)
	assert.Contains(t, shell, ".chroma")

}

func TestConvertFragmentDecoratesLinks(t *testing.T) {
	html, err := NewRenderer().ConvertFragment([]byte("See [the docs](https://neovim.io)."))
	require.NoError(t, err)
	assert.Contains(t, html, `target="_blank"`)
	assert.Contains(t, html, `rel="noopener"`)
}
