package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"askdesk-cli/internal/api"
	"askdesk-cli/internal/chat"
	"askdesk-cli/internal/config"
	"askdesk-cli/internal/state"
)

// ─── App mode ───────────────────────────────────────────────────────────────

type appMode int

const (
	modeIdle appMode = iota
	modeBusy
)

// ─── Slash command registry ─────────────────────────────────────────────────

type slashCmd struct {
	name string
	desc string
}

var slashCommands = []slashCmd{
	{"/clear", "Clear the screen"},
	{"/fullscreen", "Toggle fullscreen mode"},
	{"/help", "Show all commands"},
	{"/new", "Start a new conversation"},
	{"/quit", "Exit AskDesk"},
	{"/resume", "Resume a session by id"},
	{"/sessions", "List recent sessions"},
	{"/status", "Show usage and account status"},
}

// matchCommands filters on the raw input: the trailing space inserted
// after a menu selection matches nothing, so the next Enter submits the
// command instead of re-selecting it.
func matchCommands(prefix string) []slashCmd {
	prefix = strings.ToLower(prefix)
	if prefix == "/" {
		return slashCommands
	}
	var matches []slashCmd
	for _, c := range slashCommands {
		if strings.HasPrefix(c.name, prefix) {
			matches = append(matches, c)
		}
	}
	return matches
}

// ─── Model ──────────────────────────────────────────────────────────────────

type model struct {
	width  int
	height int

	input   textinput.Model
	spinner spinner.Model

	mode    appMode
	cfg     *config.Config
	client  *api.Client
	eng     *chat.Engine
	events  chan tea.Msg
	uiState *state.State
	version string
	profile string

	// Live streaming state. liveRaw accumulates the full answer text;
	// liveRendered is its current terminal projection. Both reset when
	// the finished answer is printed to the scrollback.
	liveRaw      string
	liveRendered string
	toolStatus   string

	suggestions  []api.Suggestion
	sessionTitle string

	ready        bool
	fullscreen   bool
	cmdMenuIdx   int
	cmdMenuOpen  bool
	lastInputVal string
}

func initialModel(version, profile string) model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your business or type /help..."
	ti.Focus()
	ti.CharLimit = 4096
	ti.Prompt = "❯ "
	ti.PromptStyle = promptSymbol
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(colorTeal)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorTeal)

	cfg, _ := config.Load(profile)

	var client *api.Client
	if cfg != nil && cfg.Server != "" {
		client = api.NewClient(cfg)
	}

	sink := newChannelSink()
	var eng *chat.Engine
	if client != nil {
		eng = chat.NewEngine(client, sink, chat.Options{
			ScreenContext: cfg.ScreenContext,
			Renderer:      RenderLive,
		})
	}

	st := state.Load()
	st.IsOpen = true
	_ = st.Save()

	return model{
		input:      ti,
		spinner:    sp,
		version:    version,
		profile:    profile,
		cfg:        cfg,
		client:     client,
		eng:        eng,
		events:     sink.ch,
		uiState:    st,
		mode:       modeIdle,
		fullscreen: st.IsFullscreen,
	}
}

// ─── Init ───────────────────────────────────────────────────────────────────

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		waitForEvent(m.events),
	}
	if m.fullscreen {
		cmds = append(cmds, tea.EnterAltScreen)
	}
	if m.eng != nil && m.uiState.SessionID != "" {
		cmds = append(cmds, resumeSessionCmd(m.eng, m.uiState.SessionID))
	} else if m.eng != nil {
		cmds = append(cmds, refreshSuggestionsCmd(m.eng))
	}
	return tea.Batch(cmds...)
}

// ─── Update ─────────────────────────────────────────────────────────────────

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.width - 6

		if !m.ready {
			m.ready = true
			welcome := renderWelcome(m.version, serverStr(m.cfg))
			cmds = append(cmds, tea.Println(welcome))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			if m.mode == modeBusy {
				m.cancelTurn()
				cmds = append(cmds, tea.Println(warnMsgStyle.Render("  ! Cancelled.")))
				return m, tea.Batch(cmds...)
			}
			return m.quit()

		case tea.KeyEsc:
			if m.mode == modeBusy {
				m.cancelTurn()
				cmds = append(cmds, tea.Println(warnMsgStyle.Render("  ! Cancelled.")))
				return m, tea.Batch(cmds...)
			}
			if m.cmdMenuOpen {
				m.cmdMenuOpen = false
				m.cmdMenuIdx = 0
				return m, nil
			}

		case tea.KeyUp:
			if m.mode == modeIdle && m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					m.cmdMenuIdx--
					if m.cmdMenuIdx < 0 {
						m.cmdMenuIdx = len(matches) - 1
					}
					return m, nil
				}
			}

		case tea.KeyDown:
			if m.mode == modeIdle && m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					m.cmdMenuIdx++
					if m.cmdMenuIdx >= len(matches) {
						m.cmdMenuIdx = 0
					}
					return m, nil
				}
			}

		case tea.KeyTab:
			if m.mode == modeIdle && m.cmdMenuOpen {
				matches := matchCommands(m.input.Value())
				if len(matches) > 0 {
					idx := m.cmdMenuIdx
					if idx < 0 || idx >= len(matches) {
						idx = 0
					}
					m.input.SetValue(matches[idx].name + " ")
					m.input.CursorEnd()
					m.cmdMenuOpen = false
					m.cmdMenuIdx = 0
				}
				return m, nil
			}

		case tea.KeyEnter:
			if m.mode == modeIdle && m.cmdMenuOpen && m.cmdMenuIdx >= 0 {
				matches := matchCommands(m.input.Value())
				if m.cmdMenuIdx < len(matches) {
					m.input.SetValue(matches[m.cmdMenuIdx].name + " ")
					m.input.CursorEnd()
					m.cmdMenuOpen = false
					m.cmdMenuIdx = 0
					return m, nil
				}
			}

			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.cmdMenuOpen = false
			m.cmdMenuIdx = 0
			return m.dispatchInput(value)
		}

	// ── Engine events ─────────────────────────────────────────────────
	case messageAppendedMsg:
		if msg.role == chat.RoleUser {
			cmds = append(cmds, tea.Println(userPromptStyle.Render("❯ ")+msg.content))
		}
		cmds = append(cmds, waitForEvent(m.events))
		return m, tea.Batch(cmds...)

	case assistantUpdatedMsg:
		m.liveRaw = msg.raw
		m.liveRendered = msg.rendered
		cmds = append(cmds, waitForEvent(m.events))
		return m, tea.Batch(cmds...)

	case toolStatusMsg:
		m.toolStatus = msg.status
		cmds = append(cmds, waitForEvent(m.events))
		return m, tea.Batch(cmds...)

	case statusChangedMsg:
		cmds = append(cmds, m.handleStatusChange(msg.status)...)
		cmds = append(cmds, waitForEvent(m.events))
		return m, tea.Batch(cmds...)

	case suggestionsMsg:
		m.suggestions = msg.suggestions
		cmds = append(cmds, waitForEvent(m.events))
		return m, tea.Batch(cmds...)

	case errorMsg:
		cmds = append(cmds, tea.Println(errorMsgStyle.Render("  ✗ "+msg.message)))
		cmds = append(cmds, waitForEvent(m.events))
		return m, tea.Batch(cmds...)

	case sessionTitledMsg:
		m.sessionTitle = msg.title
		cmds = append(cmds,
			tea.Println(dimStyle.Render("  Session: "+msg.title)),
			waitForEvent(m.events),
		)
		return m, tea.Batch(cmds...)

	case sendResultMsg:
		if msg.err == chat.ErrTurnInProgress {
			cmds = append(cmds, tea.Println(warnMsgStyle.Render("  ! Please wait for the current answer to finish.")))
		}
		return m, tea.Batch(cmds...)

	// ── Async command results ─────────────────────────────────────────
	case sessionsLoadedMsg:
		return m.handleSessionsLoaded(msg)

	case statusLoadedMsg:
		return m.handleStatusLoaded(msg)

	case sessionResumedMsg:
		return m.handleSessionResumed(msg)
	}

	var cmd tea.Cmd
	if m.mode != modeBusy {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.spinner, cmd = m.spinner.Update(msg)
	cmds = append(cmds, cmd)

	newVal := m.input.Value()
	if newVal != m.lastInputVal {
		m.lastInputVal = newVal
		if strings.HasPrefix(newVal, "/") {
			m.cmdMenuOpen = true
			m.cmdMenuIdx = 0
		} else {
			m.cmdMenuOpen = false
			m.cmdMenuIdx = 0
		}
	}

	return m, tea.Batch(cmds...)
}

// handleStatusChange maps engine turn transitions to UI state. The
// finished answer is printed to the scrollback exactly once, when the
// turn leaves the live area.
func (m *model) handleStatusChange(status chat.TurnStatus) []tea.Cmd {
	var cmds []tea.Cmd

	switch status {
	case chat.StatusIdle, chat.StatusErrored:
		if m.liveRaw != "" {
			cmds = append(cmds, tea.Println(renderFinal(m.liveRaw, m.width)))
		}
		m.liveRaw = ""
		m.liveRendered = ""
		m.toolStatus = ""
		m.mode = modeIdle
		m.persistSession()

	case chat.StatusSending, chat.StatusStreaming, chat.StatusFinalizing:
		m.mode = modeBusy

	case chat.StatusAwaitingClarification:
		// The question itself arrives as an assistant update and is
		// flushed on the Idle transition that follows.
	}
	return cmds
}

// cancelTurn abandons the in-flight turn and returns to input; the
// conversation and any partial answer already received stay.
func (m *model) cancelTurn() {
	if m.eng != nil {
		m.eng.CancelTurn()
	}
	// liveRaw is kept so the idle transition flushes the partial
	// answer to scrollback.
	m.mode = modeIdle
	m.toolStatus = ""
}

func (m *model) persistSession() {
	if m.eng == nil {
		return
	}
	id := m.eng.Store().SessionID()
	if id != m.uiState.SessionID {
		m.uiState.SessionID = id
		_ = m.uiState.Save()
	}
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.uiState.IsOpen = false
	if m.eng != nil {
		m.uiState.SessionID = m.eng.Store().SessionID()
	}
	_ = m.uiState.Save()
	return m, tea.Quit
}

// ─── Input dispatch ─────────────────────────────────────────────────────────

func (m model) dispatchInput(value string) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(value, "/") {
		return m.dispatchCommand(value)
	}

	if m.eng == nil {
		return m, tea.Println(errorMsgStyle.Render("  ✗ Not logged in. Run: askdesk login <server-url>"))
	}

	// A bare chip number picks that suggestion.
	if n, err := strconv.Atoi(value); err == nil && n >= 1 && n <= len(m.suggestions) {
		chip := m.suggestions[n-1]
		value = chip.Query
		if value == "" {
			value = chip.Label
		}
	}

	m.mode = modeBusy
	return m, sendCmd(m.eng, value)
}

func (m model) dispatchCommand(value string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(value)
	switch fields[0] {
	case "/help":
		return m, m.printHelp()

	case "/quit":
		return m.quit()

	case "/clear":
		return m, tea.ClearScreen

	case "/fullscreen":
		m.fullscreen = !m.fullscreen
		m.uiState.IsFullscreen = m.fullscreen
		_ = m.uiState.Save()
		if m.fullscreen {
			return m, tea.EnterAltScreen
		}
		return m, tea.ExitAltScreen

	case "/new":
		if m.eng == nil {
			return m, nil
		}
		m.eng.NewChat()
		m.suggestions = nil
		m.sessionTitle = ""
		m.uiState.SessionID = ""
		_ = m.uiState.Save()
		return m, tea.Println(successMsgStyle.Render("  ✓ Started a new conversation"))

	case "/sessions":
		if m.client == nil {
			return m, tea.Println(errorMsgStyle.Render("  ✗ Not logged in."))
		}
		return m, listSessionsCmd(m.client)

	case "/resume":
		if m.eng == nil {
			return m, tea.Println(errorMsgStyle.Render("  ✗ Not logged in."))
		}
		if len(fields) < 2 {
			return m, tea.Println(warnMsgStyle.Render("  ! Usage: /resume <session-id>"))
		}
		return m, resumeSessionCmd(m.eng, fields[1])

	case "/status":
		if m.client == nil {
			return m, tea.Println(errorMsgStyle.Render("  ✗ Not logged in."))
		}
		return m, chatStatusCmd(m.client)

	default:
		return m, tea.Println(errorMsgStyle.Render("  ✗ Unknown command: " + fields[0]))
	}
}

func (m model) printHelp() tea.Cmd {
	var b strings.Builder
	b.WriteString("\n  Commands:\n")
	for _, c := range slashCommands {
		b.WriteString(fmt.Sprintf("    %s %s\n", cmdNameStyle.Render(fmt.Sprintf("%-12s", c.name)), cmdDescStyle.Render(c.desc)))
	}
	b.WriteString(dimStyle.Render("\n  Pick a suggestion chip by typing its number.\n"))
	return tea.Println(b.String())
}

// ─── View ───────────────────────────────────────────────────────────────────
//
// Inline mode: View() shows the live answer area, the input prompt, and
// the hint bar; finished output scrolls above via tea.Println.

func (m model) View() string {
	if !m.ready {
		return ""
	}

	var s strings.Builder

	if m.mode == modeBusy {
		if m.liveRendered != "" {
			s.WriteString(tailLines(m.liveRendered, 12))
			s.WriteString("\n")
		}
		status := "Thinking..."
		if m.toolStatus != "" {
			status = m.toolStatus
		}
		s.WriteString(m.spinner.View() + " " + statusStyle.Render(status))
	} else {
		if len(m.suggestions) > 0 {
			s.WriteString(m.renderChips())
		}
		s.WriteString(m.input.View())
	}
	s.WriteString("\n")

	sepWidth := m.width
	if sepWidth > 80 {
		sepWidth = 80
	}
	if sepWidth < 20 {
		sepWidth = 20
	}
	s.WriteString(separatorStyle.Render(strings.Repeat("─", sepWidth)))
	s.WriteString("\n")
	s.WriteString(m.renderHints())

	return s.String()
}

func (m model) renderChips() string {
	var b strings.Builder
	for i, chip := range m.suggestions {
		b.WriteString(chipStyle.Render(fmt.Sprintf("  [%d] %s", i+1, chip.Label)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderHints() string {
	if m.mode == modeBusy {
		return hintBarStyle.Render("  Esc cancel")
	}

	if m.cmdMenuOpen {
		matches := matchCommands(m.input.Value())
		if len(matches) > 0 {
			return m.renderCommandMenu(matches)
		}
	}

	return hintBarStyle.Render("  /help for commands")
}

func (m model) renderCommandMenu(matches []slashCmd) string {
	maxLen := 0
	for _, c := range matches {
		if len(c.name) > maxLen {
			maxLen = len(c.name)
		}
	}

	var lines []string
	for i, c := range matches {
		padded := c.name + strings.Repeat(" ", maxLen-len(c.name))
		var line string
		if i == m.cmdMenuIdx {
			line = "  " + cmdSelectedNameStyle.Render(padded) + "  " + cmdSelectedDescStyle.Render(c.desc)
		} else {
			line = "  " + cmdNameStyle.Render(padded) + "  " + cmdDescStyle.Render(c.desc)
		}
		lines = append(lines, line)
	}
	lines = append(lines, hintBarStyle.Render("  ↑↓ navigate  Tab/Enter select"))
	return strings.Join(lines, "\n")
}

func serverStr(cfg *config.Config) string {
	if cfg == nil {
		return ""
	}
	return cfg.Server
}
