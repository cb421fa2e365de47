package viz

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/guptarohit/asciigraph"
	"log/slog"

	"github.com/nvasani/holonsim/internal/config"
	"github.com/nvasani/holonsim/internal/drive"
	"github.com/nvasani/holonsim/internal/experiment"
	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/physics"
	"github.com/nvasani/holonsim/internal/sim"
)

const (
	canvasWidth  = 80
	canvasHeight = 24
	historyCap   = 600
	frameRate    = 30
)

// The five coefficients tunable from the keyboard.
var liveParams = []string{"spring", "damping", "gravity", "coupling", "timescale"}

type TickMsg time.Time

type reloadMsg struct{}

type watchErrMsg struct{ err error }

// Model drives the live terminal view of a running holarchy.
type Model struct {
	eng        *sim.Engine
	cfg        *config.Config
	log        *slog.Logger
	configPath string
	watcher    *fsnotify.Watcher

	base    drive.Driver
	manual  *drive.Manual
	armed   bool
	initial physics.Coefficients

	canvas        *Canvas
	snap          holon.Snapshot
	energyHist    []float64
	coherenceHist []float64
	mergeTotal    int
	half          float64

	running  bool
	showHelp bool
	selected int
	note     string
	err      error
}

// NewModel builds the engine from cfg and, when configPath is set,
// watches it for coefficient changes. Close the model after the
// program exits.
func NewModel(cfg *config.Config, configPath string, log *slog.Logger) (Model, error) {
	eng, base, err := build(cfg, log)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		eng:     eng,
		cfg:     cfg,
		log:     log,
		base:    base,
		manual:  drive.NewManual(),
		initial: eng.Coefficients(),
		canvas:  NewCanvas(canvasWidth, canvasHeight),
		snap:    eng.Snapshot(),
		half:    6,
		running: true,
	}

	if configPath != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return Model{}, fmt.Errorf("watching config: %w", err)
		}
		// Editors replace files on save, so watch the directory and
		// filter events down to our path.
		if err := watcher.Add(filepath.Dir(configPath)); err != nil {
			watcher.Close()
			return Model{}, fmt.Errorf("watching config: %w", err)
		}
		m.configPath = filepath.Clean(configPath)
		m.watcher = watcher
	}

	return m, nil
}

func build(cfg *config.Config, log *slog.Logger) (*sim.Engine, drive.Driver, error) {
	exp := experiment.New(cfg, log)
	if err := exp.Setup(); err != nil {
		return nil, nil, err
	}
	base, err := drive.New(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}
	return exp.Engine(), base, nil
}

// Close releases the config watcher.
func (m Model) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return tea.Batch(tick(), m.waitForReload())
	}
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) waitForReload() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Clean(ev.Name) != m.configPath {
					continue
				}
				return reloadMsg{}
			case err, ok := <-m.watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err}
			}
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(liveParams)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "a":
			m.toggleAttractor()
		case "m":
			m.flipMode()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, tick()
	case reloadMsg:
		m.reload()
		return m, m.waitForReload()
	case watchErrMsg:
		m.note = fmt.Sprintf("config watch: %v", msg.err)
	}
	return m, nil
}

func (m *Model) step() {
	snap, err := m.eng.Tick(m.cfg.Dt)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.snap = snap
	m.mergeTotal += snap.Merges

	m.energyHist = append(m.energyHist, snap.Energy.Total)
	if len(m.energyHist) > historyCap {
		m.energyHist = m.energyHist[1:]
	}
	m.coherenceHist = append(m.coherenceHist, snap.Coherence)
	if len(m.coherenceHist) > historyCap {
		m.coherenceHist = m.coherenceHist[1:]
	}

	// Grow the view to keep everything on screen; never shrink, so the
	// frame stays steady.
	for _, p := range snap.Particles {
		for _, v := range []float64{p.Position.X, p.Position.Y} {
			if v > m.half*0.95 || v < -m.half*0.95 {
				m.half = absFloat(v) * 1.25
			}
		}
	}
}

func (m *Model) reset() {
	eng, base, err := build(m.cfg, m.log)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.eng = eng
	m.base = base
	m.initial = eng.Coefficients()
	m.snap = eng.Snapshot()
	m.energyHist = m.energyHist[:0]
	m.coherenceHist = m.coherenceHist[:0]
	m.mergeTotal = 0
	m.half = 6
	m.armed = false
	m.manual = drive.NewManual()
	m.selected = 0
	m.err = nil
	m.note = ""
	m.running = true
}

func (m *Model) reload() {
	cfg, err := config.Load(m.configPath)
	if err != nil {
		m.note = fmt.Sprintf("reload failed: %v", err)
		return
	}
	m.cfg = cfg
	m.eng.SetCoefficients(physics.Coefficients{
		Spring:    cfg.Forces.Spring,
		Damping:   cfg.Forces.Damping,
		Gravity:   cfg.Forces.Gravity,
		Coupling:  cfg.Forces.Coupling,
		TimeScale: cfg.Forces.TimeScale,
	})
	m.note = "config reloaded"
}

func (m *Model) adjustParam(factor float64) {
	c := m.eng.Coefficients()
	switch liveParams[m.selected] {
	case "spring":
		c.Spring *= factor
	case "damping":
		c.Damping *= factor
	case "gravity":
		c.Gravity *= factor
	case "coupling":
		c.Coupling *= factor
	case "timescale":
		c.TimeScale *= factor
	}
	m.eng.SetCoefficients(c)
}

func (m *Model) toggleAttractor() {
	if m.armed {
		m.manual.Release()
		m.eng.SetDriver(m.base)
		m.armed = false
		return
	}
	m.manual.Set(0, 0, 0)
	m.eng.SetDriver(m.manual)
	m.armed = true
}

func (m *Model) flipMode() {
	if !m.armed {
		return
	}
	if a := m.manual.At(m.snap.Time); a != nil && a.Mode == physics.ModeAttract {
		m.manual.SetMode(physics.ModeRepel)
	} else {
		m.manual.SetMode(physics.ModeAttract)
	}
}

func coefValue(c physics.Coefficients, name string) float64 {
	switch name {
	case "spring":
		return c.Spring
	case "damping":
		return c.Damping
	case "gravity":
		return c.Gravity
	case "coupling":
		return c.Coupling
	case "timescale":
		return c.TimeScale
	}
	return 0
}

// project maps world coordinates to sub-pixel canvas coordinates, y up.
func (m *Model) project(x, y float64) (int, int) {
	cw, ch := m.canvas.Width*2, m.canvas.Height*4
	px := int((x + m.half) / (2 * m.half) * float64(cw-1))
	py := ch - 1 - int((y+m.half)/(2*m.half)*float64(ch-1))
	return px, py
}

func (m *Model) draw() {
	m.canvas.Clear()

	for _, n := range m.snap.Nodes {
		px, py := m.project(n.Position.X, n.Position.Y)
		hue := holon.LevelColor(n.Level)
		m.canvas.Set(px-2, py, hue)
		m.canvas.Set(px+2, py, hue)
		m.canvas.Set(px, py-2, hue)
		m.canvas.Set(px, py+2, hue)
	}

	for _, p := range m.snap.Particles {
		px, py := m.project(p.Position.X, p.Position.Y)
		hue := p.Color
		if hue == "" {
			hue = holon.LevelColor(p.Level)
		}
		m.canvas.Blot(px, py, p.Level, hue)
	}

	if a := m.currentAttractor(); a != nil {
		px, py := m.project(a.Position.X, a.Position.Y)
		hue := "#00ff88"
		if a.Mode == physics.ModeRepel {
			hue = "#ff4444"
		}
		m.canvas.DrawLine(px-3, py, px+3, py, hue)
		m.canvas.DrawLine(px, py-3, px, py+3, hue)
	}
}

func (m *Model) currentAttractor() *physics.Attractor {
	if m.armed {
		return m.manual.At(m.snap.Time)
	}
	return m.base.At(m.snap.Time)
}

func (m Model) View() string {
	m.draw()
	canvasView := CanvasPane.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.cfg.Scenario)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("ERROR") + " " + m.err.Error() + "\n\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHist) > 1 {
		chart := asciigraph.Plot(m.energyHist,
			asciigraph.Height(4), asciigraph.Width(34), asciigraph.Caption("energy"))
		s.WriteString(chart + "\n\n")
	}

	s.WriteString(MetricLabel.Render("time      ") + MetricValue.Render(fmt.Sprintf("%.2fs", m.snap.Time)) + "\n")
	s.WriteString(MetricLabel.Render("step      ") + MetricValue.Render(fmt.Sprintf("%d", m.snap.Step)) + "\n")
	s.WriteString(MetricLabel.Render("energy    ") + MetricValue.Render(fmt.Sprintf("%.3f", m.snap.Energy.Total)) + "\n")
	s.WriteString(MetricLabel.Render("nodes     ") + MetricValue.Render(fmt.Sprintf("%d", len(m.snap.Nodes))) + "\n")
	s.WriteString(MetricLabel.Render("merges    ") + MetricValue.Render(fmt.Sprintf("%d", m.mergeTotal)) + "\n")
	s.WriteString(MetricLabel.Render("coherence ") + Gauge(m.snap.Coherence, 16) + fmt.Sprintf(" %.2f", m.snap.Coherence) + "\n")
	s.WriteString(MetricLabel.Render("levels    ") + LevelCensus(m.snap.Particles) + "\n")

	if m.armed {
		mode := "attract"
		if a := m.manual.At(m.snap.Time); a != nil && a.Mode == physics.ModeRepel {
			mode = "repel"
		}
		s.WriteString(MetricLabel.Render("attractor ") + MetricValue.Render(mode) + "\n")
	}

	s.WriteString("\nCOEFFICIENTS\n")
	current := m.eng.Coefficients()
	for i, name := range liveParams {
		val, initial := coefValue(current, name), coefValue(m.initial, name)
		barWidth, ratio := 10, 0.5
		if initial != 0 {
			ratio = val / (2.0 * initial)
		}
		if ratio > 1 {
			ratio = 1
		} else if ratio < 0 {
			ratio = 0
		}
		filled := int(ratio * float64(barWidth))
		bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
		line := fmt.Sprintf("%-10s %s %.2f", name, bar, val)
		if i == m.selected {
			s.WriteString(ActiveParam.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + MetricLabel.Render(line) + "\n")
		}
	}

	if m.note != "" {
		s.WriteString("\n" + Subtle.Render(m.note) + "\n")
	}
	s.WriteString("\n" + Separator(24) + "\n")
	s.WriteString(KeyHint.Render("SP:pause R:reset Q:quit TAB:param ↑↓:tune\nA:attractor M:mode ?:help"))

	statsView := StatsPane.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Respawn and restart      ║
║  Q        - Quit                     ║
║  Tab      - Cycle coefficients       ║
║  Up/K     - Increase selected (+5%)  ║
║  Down/J   - Decrease selected (-5%)  ║
║  A        - Toggle origin attractor  ║
║  M        - Attract/repel mode       ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
