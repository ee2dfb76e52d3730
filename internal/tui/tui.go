package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/german-bridge/internal/engine"
	"github.com/tatianab/german-bridge/internal/models"
)

type model struct {
	ctx       context.Context
	engine    *engine.Engine
	session   models.Session
	textInput textinput.Model
	viewport  viewport.Model
	help      help.Model
	cursor    int    // selected player while entering results
	digits    string // bid typed so far
	warning   string
	err       error
	width     int
	height    int
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	sideStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

func NewModel(ctx context.Context, eng *engine.Engine) model {
	ti := textinput.New()
	ti.Placeholder = "Alice, Bob, Carol, Dave"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50

	return model{
		ctx:       ctx,
		engine:    eng,
		session:   eng.Session(),
		textInput: ti,
		viewport:  viewport.New(40, 10),
		help:      help.New(),
	}
}

// commandMsg carries a command scheduled by the engine back into the update loop.
type commandMsg struct {
	cmd engine.Command
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// restoredModel loads any saved game into eng before the first frame.
func restoredModel(ctx context.Context, eng *engine.Engine) model {
	err := eng.Restore(ctx)
	m := NewModel(ctx, eng)
	if err != nil {
		m.warning = "Saved game could not be read; starting fresh."
	}
	m.refresh()
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(20, int(float64(msg.Width)*0.35))
		m.viewport.Height = max(5, msg.Height-12)
		m.refresh()

	case commandMsg:
		m.apply(msg.cmd)
	}

	if m.session.Phase == models.PhaseSetup {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Reset):
		m.apply(engine.ResetSession{})
		m.textInput.Reset()
		m.textInput.Focus()
		return m, nil
	case key.Matches(msg, keys.Formula):
		next := models.Cubed
		if m.session.Formula == models.Cubed {
			next = models.Squared
		}
		m.apply(engine.SetScoringFormula{Formula: next})
		return m, nil
	}

	switch m.session.Phase {
	case models.PhaseSetup:
		if key.Matches(msg, keys.Confirm) {
			m.apply(engine.StartSession{Names: splitNames(m.textInput.Value())})
			if m.err == nil {
				m.textInput.Blur()
				m.cursor = 0
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd

	case models.PhaseBidding:
		m.handleBidKey(msg)

	case models.PhaseResults:
		switch {
		case key.Matches(msg, keys.Up):
			m.cursor = (m.cursor + m.session.PlayerCount() - 1) % m.session.PlayerCount()
		case key.Matches(msg, keys.Down):
			m.cursor = (m.cursor + 1) % m.session.PlayerCount()
		case key.Matches(msg, keys.More):
			m.apply(engine.AdjustActual{Player: m.cursor, Delta: 1})
		case key.Matches(msg, keys.Fewer):
			m.apply(engine.AdjustActual{Player: m.cursor, Delta: -1})
		case key.Matches(msg, keys.Confirm):
			m.apply(engine.FinalizeResults{})
		}

	case models.PhaseScores:
		if key.Matches(msg, keys.Confirm) {
			m.apply(engine.AdvanceRound{})
			m.cursor = 0
		}
	}
	return m, nil
}

func (m *model) handleBidKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, keys.Confirm):
		m.digits = ""
		m.apply(engine.ConfirmBid{})
	case key.Matches(msg, keys.Lower):
		m.digits = ""
		m.stepBid(-1)
	case key.Matches(msg, keys.Higher):
		m.digits = ""
		m.stepBid(1)
	case msg.Type == tea.KeyBackspace:
		if m.digits != "" {
			m.digits = m.digits[:len(m.digits)-1]
		}
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9':
		m.digits += string(msg.Runes)
		v, _ := strconv.Atoi(m.digits)
		if v > m.session.Round.Size {
			m.digits = string(msg.Runes)
			v, _ = strconv.Atoi(m.digits)
		}
		m.apply(engine.SelectBid{Value: v})
	}
}

// stepBid moves the selection to the neighbouring legal bid.
func (m *model) stepBid(dir int) {
	legal := m.engine.LegalBids()
	if len(legal) == 0 {
		return
	}
	if m.session.PendingBid == nil {
		m.apply(engine.SelectBid{Value: legal[0]})
		return
	}
	cur := *m.session.PendingBid
	pick := cur
	if dir > 0 {
		for _, v := range legal {
			if v > cur {
				pick = v
				break
			}
		}
	} else {
		for i := len(legal) - 1; i >= 0; i-- {
			if legal[i] < cur {
				pick = legal[i]
				break
			}
		}
	}
	if pick != cur {
		m.apply(engine.SelectBid{Value: pick})
	}
}

func (m *model) apply(cmd engine.Command) {
	err := m.engine.Apply(m.ctx, cmd)
	m.session = m.engine.Session()
	m.warning = ""
	m.err = nil
	switch {
	case errors.Is(err, engine.ErrPersistence):
		m.warning = "Progress could not be saved."
	case err != nil:
		m.err = err
	}
	if m.cursor >= m.session.PlayerCount() {
		m.cursor = 0
	}
	m.refresh()
}

func (m *model) refresh() {
	var b strings.Builder
	for i, h := range m.session.History {
		fmt.Fprintf(&b, "Round %d: %s\n", i+1, h)
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (m model) View() string {
	var main string
	var bindings phaseKeys

	switch m.session.Phase {
	case models.PhaseSetup:
		main = fmt.Sprintf("%s\n\nEnter 2 to 8 player names, separated by commas:\n\n%s\n\nScoring: %s",
			titleStyle.Render("German Bridge Scorekeeper"), m.textInput.View(), m.session.Formula)
		bindings = phaseKeys{keys.Confirm, keys.Formula, keys.Quit}
	case models.PhaseBidding:
		main = m.renderBidding()
		bindings = phaseKeys{keys.Lower, keys.Higher, keys.Confirm, keys.Reset, keys.Quit}
	case models.PhasePlaying:
		main = m.renderRoundHeader() + "\n\nPlay the hand... results open shortly."
		bindings = phaseKeys{keys.Reset, keys.Quit}
	case models.PhaseResults:
		main = m.renderResults()
		bindings = phaseKeys{keys.Up, keys.Down, keys.More, keys.Fewer, keys.Confirm, keys.Reset, keys.Quit}
	case models.PhaseScores:
		main = m.renderScores()
		bindings = phaseKeys{keys.Confirm, keys.Reset, keys.Quit}
	}

	if m.session.Phase != models.PhaseSetup {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, "  ", m.renderSide())
	}

	status := ""
	if m.err != nil {
		status = errorStyle.Render(describeError(m.err))
	} else if m.warning != "" {
		status = mutedStyle.Render(m.warning)
	}

	return lipgloss.JoinVertical(lipgloss.Left, "", main, "", status, m.help.View(bindings)) + "\n"
}

func (m model) renderRoundHeader() string {
	r := m.session.Round
	dealer := m.session.Players[m.session.Dealer].Name
	return fmt.Sprintf("%s\n%d cards each · trump %s · %s · dealer %s",
		titleStyle.Render(fmt.Sprintf("ROUND %d", r.Number)), r.Size, r.Trump, r.Direction, dealer)
}

func (m model) renderBidding() string {
	var b strings.Builder
	b.WriteString(m.renderRoundHeader())
	b.WriteString("\n\n")
	current := m.session.CurrentBidderIndex()
	for _, idx := range m.session.TurnOrder {
		p := m.session.Players[idx]
		line := fmt.Sprintf("%-12s ", p.Name)
		switch {
		case m.session.Round.Bids[idx] != nil:
			line += strconv.Itoa(*m.session.Round.Bids[idx])
		case idx == current:
			line += "?"
			line = selectedStyle.Render(line)
		default:
			line += mutedStyle.Render("-")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\nBid: ")
	legal := m.engine.LegalBids()
	for _, v := range legal {
		s := strconv.Itoa(v)
		if m.session.PendingBid != nil && *m.session.PendingBid == v {
			s = selectedStyle.Render(s)
		}
		b.WriteString(s + " ")
	}
	bids := engine.BiddingOf(&m.session)
	if forbidden, ok := bids.Forbidden(); ok {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("\n(last bidder cannot call %d)", forbidden)))
	}
	return b.String()
}

func (m model) renderResults() string {
	var b strings.Builder
	b.WriteString(m.renderRoundHeader())
	b.WriteString("\n\n")
	res := engine.ResultsOf(&m.session)
	for i, p := range m.session.Players {
		bid := 0
		if v := m.session.Round.Bids[i]; v != nil {
			bid = *v
		}
		line := fmt.Sprintf("%-12s bid %2d  won %2d", p.Name, bid, res.Value(i))
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "\nTotal %d of %d", res.Sum(), m.session.Round.Size)
	return b.String()
}

func (m model) renderScores() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("ROUND %d SCORED", m.session.Round.Number)))
	b.WriteString("\n\n")
	for i, p := range m.session.Players {
		delta := ""
		if i < len(m.session.LastDeltas) {
			d := m.session.LastDeltas[i]
			if d >= 0 {
				delta = positiveStyle.Render(fmt.Sprintf("+%d", d))
			} else {
				delta = negativeStyle.Render(strconv.Itoa(d))
			}
		}
		fmt.Fprintf(&b, "%-12s %5d  %s\n", p.Name, m.session.Totals[i], delta)
	}
	b.WriteString("\nPress enter for the next round.")
	return b.String()
}

func (m model) renderSide() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SCORES"))
	b.WriteString("\n")
	leader := m.session.Leader()
	for i, p := range m.session.Players {
		mark := " "
		if i == leader {
			mark = "*"
		}
		fmt.Fprintf(&b, "%s %-12s %5d\n", mark, p.Name, m.session.Totals[i])
	}
	fmt.Fprintf(&b, "\nScoring: %s\n\n", m.session.Formula)
	b.WriteString(titleStyle.Render("HISTORY"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	return sideStyle.Render(b.String())
}

func describeError(err error) string {
	var total *engine.TotalError
	var rng *engine.RangeError
	switch {
	case errors.As(err, &total):
		return fmt.Sprintf("Tricks won add up to %d but %d were played.", total.Sum, total.Size)
	case errors.As(err, &rng):
		return fmt.Sprintf("%d is not between 0 and %d.", rng.Value, rng.Max)
	case errors.Is(err, engine.ErrIllegalLastBid):
		return "The last bidder cannot make the bids add up to the number of tricks."
	case errors.Is(err, engine.ErrPlayerCount):
		return "Enter between 2 and 8 names."
	case errors.Is(err, engine.ErrFormulaLocked):
		return "The scoring formula is fixed once a round has been scored."
	case errors.Is(err, engine.ErrNoPendingBid):
		return "Choose a bid first."
	default:
		return err.Error()
	}
}

// Scheduler delivers the engine's delayed commands as messages to the
// running program, so they are applied on the update loop.
type Scheduler struct {
	mu      sync.Mutex
	program *tea.Program
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) attach(p *tea.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.program = p
}

// Schedule satisfies engine.ScheduleFunc.
func (s *Scheduler) Schedule(delay time.Duration, cmd engine.Command) func() {
	t := time.AfterFunc(delay, func() {
		s.mu.Lock()
		p := s.program
		s.mu.Unlock()
		if p != nil {
			p.Send(commandMsg{cmd: cmd})
		}
	})
	return func() { t.Stop() }
}

func Run(ctx context.Context, eng *engine.Engine, sched *Scheduler) error {
	p := tea.NewProgram(restoredModel(ctx, eng), tea.WithAltScreen(), tea.WithContext(ctx))
	sched.attach(p)
	_, err := p.Run()
	return err
}
