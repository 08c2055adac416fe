package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/idlecore/cli"
	"github.com/nathoo/idlecore/engine"
	"github.com/nathoo/idlecore/engine/sim"
	"github.com/nathoo/idlecore/experience"
)

// rawLine stores an unstyled output line with its classification, so we
// can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed player input
}

// Model is the Bubble Tea model for the idlecore TUI. The simulation
// advances on a fixed timer; commands only inspect and steer it.
type Model struct {
	eng      *engine.Engine
	commands *cli.CLI

	viewport viewport.Model
	input    textinput.Model
	progress progress.Model
	history  *History

	rawLines []rawLine

	tickInterval     time.Duration
	autosaveInterval time.Duration
	lastSave         time.Time

	width    int
	height   int
	ready    bool
	quitting bool
}

// tickMsg drives the simulation clock.
type tickMsg time.Time

// outputMsg carries command output into the Update loop.
type outputMsg struct {
	input string // echoed player input (empty for session notices)
	lines []string
}

// New creates a TUI model wired to the given engine. gains, when
// non-nil, is shown as a welcome-back notice on the first frame.
func New(eng *engine.Engine, tickInterval, autosaveInterval time.Duration, gains *engine.OfflineGains) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		eng:              eng,
		commands:         &cli.CLI{Engine: eng},
		input:            ti,
		progress:         progress.New(progress.WithDefaultGradient()),
		history:          NewHistory(100),
		tickInterval:     tickInterval,
		autosaveInterval: autosaveInterval,
		lastSave:         time.Now(),
	}
	m.rawLines = append(m.rawLines, openingLines(eng, gains)...)
	return m
}

// Run starts the Bubble Tea program and blocks until exit.
func Run(eng *engine.Engine, tickInterval, autosaveInterval time.Duration, gains *engine.OfflineGains) error {
	m := New(eng, tickInterval, autosaveInterval, gains)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func openingLines(eng *engine.Engine, gains *engine.OfflineGains) []rawLine {
	var lines []rawLine
	game := eng.Catalog.Game
	title := game.Title
	if game.Version != "" {
		title += " v" + game.Version
	}
	lines = append(lines, rawLine{text: title}, rawLine{})

	if gains != nil && gains.Significant() {
		away := time.Duration(gains.AwayMs) * time.Millisecond
		msg := fmt.Sprintf("Welcome back! You were away for %s", away.Round(time.Second))
		if gains.Capped {
			msg += " (progress capped at 24h)"
		}
		lines = append(lines, rawLine{text: msg + ".", kind: kindWelcome})
		lines = append(lines, rawLine{
			text: fmt.Sprintf("+%d completions while away", gains.Completions),
			kind: kindGain,
		})
		for skill, xp := range gains.XPBySkill {
			lines = append(lines, rawLine{
				text: fmt.Sprintf("+%.0f %s xp", xp, skill),
				kind: kindGain,
			})
		}
		if gains.ActionStopped {
			lines = append(lines, rawLine{text: "[Ran out of materials while away]", kind: kindSystem})
		}
		lines = append(lines, rawLine{})
	}

	lines = append(lines, rawLine{text: "[Type help for commands]", kind: kindSystem})
	return lines
}

// Init starts the input cursor blink and the simulation timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.scheduleTick())
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages (key presses, window resize, timer ticks).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 3 // status bar + progress line + input line
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.progress.Width = m.width - 4
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.eng.Save()
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case tickMsg:
		m = m.handleTick()
		cmds = append(cmds, m.scheduleTick())

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleTick advances the simulation by one interval and autosaves.
func (m Model) handleTick() Model {
	if m.eng.Store.CurrentAction() != nil {
		before := m.levelSnapshot()
		result := m.eng.Tick(float64(m.tickInterval.Milliseconds()))

		for skill := range result.XPBySkill {
			if level := m.eng.Store.SkillLevel(skill); level > before[string(skill)] {
				m = m.appendOutput(outputMsg{lines: []string{
					fmt.Sprintf("+Level up! %s is now %d.", skill, level),
				}})
			}
		}
		if result.StopReason == sim.StopOutOfMaterials {
			m = m.appendOutput(outputMsg{lines: []string{"[Ran out of materials; action stopped]"}})
		}
	}

	if time.Since(m.lastSave) >= m.autosaveInterval {
		m.lastSave = time.Now()
		if err := m.eng.Save(); err != nil {
			m = m.appendOutput(outputMsg{lines: []string{fmt.Sprintf("[Autosave failed: %v]", err)}})
		}
	}
	return m
}

func (m Model) levelSnapshot() map[string]int {
	levels := map[string]int{}
	snap := m.eng.Store.Snapshot()
	for id, skill := range snap.Skills {
		levels[string(id)] = experience.LevelForXP(skill.XP)
	}
	return levels
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	output, quit := m.commands.Exec(input)
	var lines []string
	if output != "" {
		lines = strings.Split(output, "\n")
	}
	m = m.appendOutput(outputMsg{input: input, lines: lines})
	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	for _, line := range msg.lines {
		m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
	}
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{})
	}

	// Keep the log bounded; old lines scroll away for good.
	const maxLines = 2000
	if len(m.rawLines) > maxLines {
		m.rawLines = m.rawLines[len(m.rawLines)-maxLines:]
	}

	m.refreshViewport()
	return m
}

// refreshViewport re-styles all raw lines at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	var styled []string
	for _, rl := range m.rawLines {
		switch {
		case rl.text == "":
			styled = append(styled, "")
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(rl.text))
		default:
			styled = append(styled, renderLineKind(rl.text, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderProgress shows the current action's completion fraction.
func (m Model) renderProgress() string {
	action := m.eng.Store.CurrentAction()
	if action == nil || action.Duration <= 0 {
		return styleSystem.Render("  (idle)")
	}
	pct := action.ElapsedMs / action.Duration
	if pct > 1 {
		pct = 1
	}
	return "  " + m.progress.ViewAs(pct)
}

// View renders the full frame: status bar, log, progress, input.
func (m Model) View() string {
	if m.quitting {
		return "Saved. See you next time.\n"
	}
	if !m.ready {
		return "Loading..."
	}
	return m.renderStatusBar() + "\n" +
		m.viewport.View() + "\n" +
		m.renderProgress() + "\n" +
		m.input.View()
}
