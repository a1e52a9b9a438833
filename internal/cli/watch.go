package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/anchorlayout/pkg/layout"
	"github.com/matzehuels/anchorlayout/pkg/pipeline"
	"github.com/matzehuels/anchorlayout/pkg/render"
	"github.com/matzehuels/anchorlayout/pkg/scene"
)

const (
	pollInterval = 500 * time.Millisecond
	defaultStep  = 8
	maxStep      = 128
)

// watchLevels are cycled through with tab.
var watchLevels = []layout.OptimizationLevel{
	layout.OptimizeStandard,
	layout.OptimizeAll,
	layout.OptimizeNone,
}

var (
	watchStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	watchErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	watchHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// watchCommand creates the watch command: an interactive view that re-solves
// a scene as the container is resized or the file changes.
func (c *CLI) watchCommand() *cobra.Command {
	var step int
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "watch [scene.toml]",
		Short: "Interactively resize a scene and watch it re-solve",
		Long: `Interactively resize a scene and watch it re-solve.

The scene is drawn as text and solved again whenever the container is resized
with the arrow keys or the file changes on disk.

Keys:
  ←/→ h/l   narrower / wider
  ↑/↓ k/j   shorter / taller
  +/-       larger / smaller resize step
  tab       cycle optimization level
  g         toggle guidelines
  f         toggle frame table
  r         reload the file
  q         quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], opts, step)
		},
	}

	cmd.Flags().IntVar(&step, "step", defaultStep, "resize step in pixels")
	addSolveFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path string, opts pipeline.Options, step int) error {
	m, err := newWatchModel(path, opts, step)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return ctx.Err()
}

// =============================================================================
// watchModel - bubbletea model
// =============================================================================

// watchModel holds the solved scene shown by the watch command.
// Size and level changes are recorded in opts so that a reload keeps them.
type watchModel struct {
	path    string
	opts    pipeline.Options
	scene   *scene.Scene
	geom    scene.Geometry
	modTime time.Time
	err     error
	step    int
	guides  bool
	frames  bool
}

type (
	tickMsg   time.Time
	reloadMsg struct {
		scene   *scene.Scene
		modTime time.Time
		err     error
	}
)

// newWatchModel loads and solves the scene once, so that a broken file is
// reported before the terminal is taken over.
func newWatchModel(path string, opts pipeline.Options, step int) (watchModel, error) {
	if step <= 0 {
		step = defaultStep
	}
	m := watchModel{path: path, opts: opts, step: min(step, maxStep)}
	msg := m.load()
	if msg.err != nil {
		return m, msg.err
	}
	m = m.apply(msg)
	return m, nil
}

func (m watchModel) load() reloadMsg {
	info, err := os.Stat(m.path)
	if err != nil {
		return reloadMsg{err: err}
	}
	doc, err := scene.Load(m.path)
	if err != nil {
		return reloadMsg{err: err, modTime: info.ModTime()}
	}
	s, err := pipeline.Solve(doc, m.opts)
	return reloadMsg{scene: s, modTime: info.ModTime(), err: err}
}

func (m watchModel) apply(msg reloadMsg) watchModel {
	m.modTime = msg.modTime
	m.err = msg.err
	if msg.err == nil {
		m.scene = msg.scene
		m.geom = msg.scene.Geometry()
	}
	return m
}

func (m watchModel) Init() tea.Cmd {
	return m.tick()
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) reload() tea.Cmd {
	return func() tea.Msg { return m.load() }
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		if info, err := os.Stat(m.path); err == nil && info.ModTime().After(m.modTime) {
			return m, tea.Batch(m.reload(), m.tick())
		}
		return m, m.tick()
	case reloadMsg:
		return m.apply(msg), nil
	}
	return m, nil
}

func (m watchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		return m.resize(-m.step, 0), nil
	case "right", "l":
		return m.resize(m.step, 0), nil
	case "up", "k":
		return m.resize(0, -m.step), nil
	case "down", "j":
		return m.resize(0, m.step), nil
	case "+", "=":
		m.step = min(m.step*2, maxStep)
	case "-", "_":
		m.step = max(m.step/2, 1)
	case "tab":
		return m.nextLevel(), nil
	case "g":
		m.guides = !m.guides
	case "f":
		m.frames = !m.frames
	case "r":
		return m, m.reload()
	}
	return m, nil
}

// resize grows the container by dw×dh and solves again.
func (m watchModel) resize(dw, dh int) watchModel {
	if m.scene == nil {
		return m
	}
	w := max(m.geom.Width+dw, 0)
	h := max(m.geom.Height+dh, 0)
	m.opts.Width, m.opts.Height = w, h
	m.err = m.scene.Resize(w, h)
	m.geom = m.scene.Geometry()
	return m
}

// nextLevel switches to the level after the current one in watchLevels.
func (m watchModel) nextLevel() watchModel {
	if m.scene == nil {
		return m
	}
	next := watchLevels[0]
	for i, l := range watchLevels {
		if l == m.scene.Level() {
			next = watchLevels[(i+1)%len(watchLevels)]
			break
		}
	}
	m.opts.Level = next.String()
	m.scene.SetLevel(next)
	m.err = m.scene.Solve()
	m.geom = m.scene.Geometry()
	return m
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("anchorlayout watch"))
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(m.path))
	b.WriteString("\n")

	if m.scene != nil {
		st := m.geom.Stats
		status := fmt.Sprintf("%dx%d · level %s · step %d · %d direct · %d solved · %d passes",
			m.geom.Width, m.geom.Height, m.scene.Level(), m.step, st.Direct, st.Solved, st.Passes)
		if st.Dropped > 0 {
			status += fmt.Sprintf(" · %d dropped", st.Dropped)
		}
		b.WriteString(watchStatusStyle.Render(status))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(watchErrorStyle.Render(iconError + " " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.scene != nil {
		b.WriteString(render.ASCII(m.geom, render.WithGuides(m.guides)))
		if m.frames {
			b.WriteString("\n")
			b.WriteString(frameTable(m.geom))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(watchHelpStyle.Render("←→↑↓ resize  +/- step  tab level  g guides  f frames  r reload  q quit"))
	return b.String()
}
