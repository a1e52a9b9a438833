package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/render"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

const toolbarScene = `
name = "toolbar"

[root]
width = 600
height = 40

[[widget]]
name = "back"
text = "Back"
width = 80
height = 24
horizontal_chain = "packed"
connect = [
  { from = "left", to = "parent" },
  { from = "right", to = "next.left", margin = 8 },
  { from = "center_y", to = "parent" },
]

[[widget]]
name = "next"
text = "Next"
width = 80
height = 24
connect = [
  { from = "left", to = "back.right" },
  { from = "right", to = "parent" },
  { from = "center_y", to = "parent" },
]
`

// testCLI returns a CLI writing results to the returned buffer and an
// isolated cache directory.
func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out)
	return c, &out
}

func writeScene(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(toolbarScene), 0644))
	return path
}

func run(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestRootCommand(t *testing.T) {
	c, _ := testCLI(t)
	root := c.RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"solve", "render", "graph", "watch", "cache", "completion"} {
		assert.Contains(t, names, want)
	}
	assert.Equal(t, "anchorlayout", root.Name())
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"png"}},
		{"svg", []string{"svg"}},
		{"svg,png,txt", []string{"svg", "png", "txt"}},
		{" SVG , json,", []string{"svg", "json"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFormats(tt.input), "parseFormats(%q)", tt.input)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "scenes/login.toml", "scenes/login"},
		{"out/login.png", "login.toml", "out/login"},
		{"out/login.v2", "login.toml", "out/login.v2"},
		{"out/login", "login.toml", "out/login"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, basePath(tt.output, tt.input))
	}
}

func TestSolveCommand(t *testing.T) {
	c, out := testCLI(t)
	path := writeScene(t, t.TempDir(), "toolbar.toml")

	require.NoError(t, run(c, "solve", path, "-o", "-", "--width", "400"))
	g, err := scene.ReadJSON(out)
	require.NoError(t, err)
	assert.Equal(t, 400, g.Width)
	back, ok := g.Lookup("back")
	require.True(t, ok)
	assert.Equal(t, 116, back.X)

	out.Reset()
	require.NoError(t, run(c, "solve", path, "--ascii", "--frames"))
	assert.Contains(t, out.String(), "Layout solved")
	assert.Contains(t, out.String(), "toolbar.layout.json")
	assert.Contains(t, out.String(), "+Back")
	_, err = os.Stat(strings.TrimSuffix(path, ".toml") + ".layout.json")
	assert.NoError(t, err)

	out.Reset()
	require.NoError(t, run(c, "solve", path))
	assert.Contains(t, out.String(), "cached")
}

func TestSolveCommandErrors(t *testing.T) {
	c, _ := testCLI(t)
	dir := t.TempDir()

	err := run(c, "solve", filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)

	path := writeScene(t, dir, "toolbar.toml")
	err = run(c, "solve", path, "--level", "fastest")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)
}

func TestRenderCommand(t *testing.T) {
	c, out := testCLI(t)
	dir := t.TempDir()
	a := writeScene(t, dir, "a.toml")
	b := writeScene(t, dir, "b.toml")

	require.NoError(t, run(c, "render", a, b, "-f", "txt,svg", "--guides"))
	for _, base := range []string{"a", "b"} {
		for _, ext := range []string{".txt", ".svg"} {
			_, err := os.Stat(filepath.Join(dir, base+ext))
			assert.NoError(t, err, base+ext)
		}
	}
	assert.Contains(t, out.String(), "Rendered a")
	assert.Contains(t, out.String(), "Rendered b")

	txt, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(txt), "+Back")

	custom := filepath.Join(dir, "out", "toolbar.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(custom), 0755))
	require.NoError(t, run(c, "render", a, "-o", custom, "--no-cache", "--scale", "2"))
	_, err = os.Stat(custom)
	assert.NoError(t, err)
}

func TestRenderCommandErrors(t *testing.T) {
	c, _ := testCLI(t)
	dir := t.TempDir()
	a := writeScene(t, dir, "a.toml")
	b := writeScene(t, dir, "b.toml")

	err := run(c, "render", a, b, "-o", filepath.Join(dir, "x"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "got %v", err)

	err = run(c, "render", a, "-f", "gif")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)

	err = run(c, "render", a, filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.toml")
}

func TestGraphCommand(t *testing.T) {
	c, out := testCLI(t)
	dir := t.TempDir()
	path := writeScene(t, dir, "toolbar.toml")

	require.NoError(t, run(c, "graph", path, "--detailed"))
	dot := out.String()
	assert.True(t, strings.HasPrefix(dot, "digraph G {"))
	assert.Contains(t, dot, `label="toolbar"`)
	assert.Contains(t, dot, "back")

	out.Reset()
	file := filepath.Join(dir, "toolbar.dot")
	require.NoError(t, run(c, "graph", path, "-o", file))
	assert.Contains(t, out.String(), "Dependency graph written")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph G {")

	err = run(c, "graph", path, "-f", "pdf")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
}

func TestCacheCommands(t *testing.T) {
	c, out := testCLI(t)
	path := writeScene(t, t.TempDir(), "toolbar.toml")

	require.NoError(t, run(c, "cache", "info"))
	assert.Contains(t, out.String(), "Cache is empty")

	require.NoError(t, run(c, "render", path, "-f", "json"))
	out.Reset()
	require.NoError(t, run(c, "cache", "info"))
	assert.Contains(t, out.String(), "Entries")
	assert.Contains(t, out.String(), "2")

	out.Reset()
	require.NoError(t, run(c, "cache", "path"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "anchorlayout"))

	out.Reset()
	require.NoError(t, run(c, "cache", "clear"))
	assert.Contains(t, out.String(), "Cleared 2 cached entries")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.n))
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		c, out := testCLI(t)
		require.NoError(t, run(c, "completion", shell), shell)
		assert.Contains(t, out.String(), "anchorlayout", shell)
	}

	c, _ := testCLI(t)
	assert.Error(t, run(c, "completion", "tcsh"))
}

func TestCompleteLevels(t *testing.T) {
	got, directive := completeLevels(nil, nil, "")
	assert.Equal(t, []string{"none", "standard", "all", "direct", "barrier", "chain", "dimensions", "grouping", "graph", "graph_wrap"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)

	got, directive = completeLevels(nil, nil, "direct|chain|gr")
	assert.Equal(t, []string{"direct|chain|barrier", "direct|chain|dimensions", "direct|chain|grouping", "direct|chain|graph", "direct|chain|graph_wrap"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp|cobra.ShellCompDirectiveNoSpace, directive)
}

func TestCompleteFormats(t *testing.T) {
	complete := completeFormats(render.Formats...)
	got, _ := complete(nil, nil, "")
	assert.Equal(t, []string{"png", "svg", "txt", "json"}, got)

	got, _ = complete(nil, nil, "svg,p")
	assert.Equal(t, []string{"svg,png", "svg,txt", "svg,json"}, got)
}

func TestSceneCompletion(t *testing.T) {
	c, out := testCLI(t)
	require.NoError(t, run(c, cobra.ShellCompRequestCmd, "solve", ""))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"toml", ":8"}, lines)

	c, out = testCLI(t)
	require.NoError(t, run(c, cobra.ShellCompRequestCmd, "graph", "scene.toml", "--format", ""))
	assert.Contains(t, out.String(), "dot\nsvg\n")
}
