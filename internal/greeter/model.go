package greeter

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/tapauth/internal/directory"
	"github.com/muurk/tapauth/internal/flow"
	"github.com/muurk/tapauth/internal/handoff"
	"github.com/muurk/tapauth/internal/i18n"
	"github.com/muurk/tapauth/internal/session"
)

// Requester sends one directory request. *directory.Client implements it.
type Requester interface {
	Do(ctx context.Context, action directory.Action, fields directory.Fields) directory.Result
}

// Options configures the greeter
type Options struct {
	Requester Requester
	Handoff   handoff.Handoff
	Catalog   *i18n.Catalog

	// Hint pre-fills the username
	Hint string

	// Cards delivers UIDs read outside the input fields. Optional.
	Cards <-chan string

	// Remember persists the user after a hand-off. Optional.
	Remember func(username string) error

	// QuitAfterHandoff ends the program after a successful hand-off. greetd
	// starts the session only once the greeter has exited.
	QuitAfterHandoff bool

	// Context bounds requests and hand-offs
	Context context.Context
}

// Messages
type completedMsg struct {
	seq    uint64
	result directory.Result
}

type cardMsg struct {
	uid string
}

type cardsClosedMsg struct{}

type handedOffMsg struct {
	username string
	err      error
}

var allFields = []session.Field{
	session.FieldUsername,
	session.FieldPassword,
	session.FieldPin,
	session.FieldOldPassword,
	session.FieldNewPassword,
}

var fieldLabels = map[session.Field]i18n.Key{
	session.FieldUsername:    i18n.KeyLabelUsername,
	session.FieldPassword:    i18n.KeyLabelPassword,
	session.FieldPin:         i18n.KeyLabelPin,
	session.FieldOldPassword: i18n.KeyLabelOldPassword,
	session.FieldNewPassword: i18n.KeyLabelNewPassword,
}

var modeTitles = map[session.Mode]i18n.Key{
	session.ModeLogin:          i18n.KeyTitleLogin,
	session.ModePinChallenge:   i18n.KeyTitlePin,
	session.ModeRegister:       i18n.KeyTitleRegister,
	session.ModeChangePassword: i18n.KeyTitleChangePassword,
}

// Model is the bubbletea model of the login screen
type Model struct {
	opts    Options
	ctx     context.Context
	catalog *i18n.Catalog

	session session.Session
	inputs  map[session.Field]*textinput.Model

	// focus is the field the cursor is in. The controller sets it after every
	// step; tab moves it locally.
	focus session.Field

	// selectAll makes the next typed character replace the focused field
	selectAll bool

	spinner spinner.Model
	help    help.Model
	keys    keyMap

	Width  int
	Height int
}

// New creates the greeter model in its initial login state
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = i18n.Lookup()
	}
	if opts.Handoff == nil {
		opts.Handoff = handoff.DryRun{}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := Model{
		opts:    opts,
		ctx:     ctx,
		catalog: catalog,
		session: session.New(opts.Hint),
		inputs:  make(map[session.Field]*textinput.Model, len(allFields)),
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.Width, m.Height = TerminalSize()

	for _, f := range allFields {
		in := textinput.New()
		in.Prompt = "› "
		in.Width = FormWidth - 8
		in.CharLimit = 128
		if f != session.FieldUsername {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.inputs[f] = &in
	}

	m.sync(session.Session{}, true)
	return m
}

// Session returns the current session
func (m Model) Session() session.Session {
	return m.session
}

// Init starts the cursor and the card feed
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForCard(m.opts.Cards))
}

// Update handles key presses, card reads and request completions
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case completedMsg:
		return m.dispatch(flow.Completed{Seq: msg.seq, Result: msg.result})

	case cardMsg:
		next, cmd := m.dispatch(flow.CardPresented{UID: msg.uid})
		return next, tea.Batch(cmd, waitForCard(m.opts.Cards))

	case handedOffMsg:
		if msg.err == nil && m.opts.QuitAfterHandoff {
			return m, tea.Quit
		}
		return m, nil

	case cardsClosedMsg:
		return m, nil

	case spinner.TickMsg:
		if !m.session.InFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		return m.dispatch(flow.Submit{Kind: flow.KindBack})

	case key.Matches(msg, m.keys.Submit):
		return m.dispatch(flow.Submit{
			Kind:   flow.SubmitKind(m.session.Mode, m.focus),
			Inputs: m.values(),
		})

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil
	}

	if m.selectAll && msg.Type == tea.KeyRunes {
		m.focused().SetValue("")
	}
	m.selectAll = false
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	in := m.focused()
	updated, cmd := in.Update(msg)
	*in = updated
	return m, cmd
}

func (m Model) focused() *textinput.Model {
	return m.inputs[m.focus]
}

// values reads every input field
func (m Model) values() session.Inputs {
	var in session.Inputs
	for _, f := range allFields {
		in = in.With(f, m.inputs[f].Value())
	}
	return in
}

// dispatch runs one controller step and turns its effects into commands
func (m Model) dispatch(ev flow.Event) (Model, tea.Cmd) {
	prev := m.session
	res := flow.Step(m.session, ev)
	m.session = res.Session
	m.sync(prev, false)

	var cmds []tea.Cmd
	for _, effect := range res.Effects {
		switch effect := effect.(type) {
		case flow.Request:
			cmds = append(cmds, m.request(effect))
		case flow.Handoff:
			cmds = append(cmds, m.handoff(effect))
		}
	}
	if m.session.InFlight() && !prev.InFlight() {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// sync copies the session onto the widgets after a step. While a request is
// pending the widgets and the cursor stay with the user; once the controller
// has decided, its field values and focus are shown, including cleared fields.
func (m *Model) sync(prev session.Session, force bool) {
	settled := force || prev.Mode != m.session.Mode || (m.session != prev && !m.session.InFlight())
	if !settled {
		return
	}

	for _, f := range allFields {
		in := m.inputs[f]
		if v := m.session.Inputs.Get(f); in.Value() != v {
			in.SetValue(v)
			in.CursorEnd()
		}
	}

	screen := flow.View(m.session)
	m.focus = screen.Focus
	m.selectAll = screen.SelectAll
	m.applyFocus()
}

func (m *Model) applyFocus() {
	for f, in := range m.inputs {
		if f == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m *Model) moveFocus(delta int) {
	fields := flow.FieldsFor(m.session.Mode)
	if len(fields) == 0 {
		return
	}
	idx := 0
	for i, f := range fields {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(fields)) % len(fields)

	m.focus = fields[idx]
	m.selectAll = false
	m.applyFocus()
}

func (m Model) request(req flow.Request) tea.Cmd {
	requester, ctx := m.opts.Requester, m.ctx
	return func() tea.Msg {
		return completedMsg{seq: req.Seq, result: requester.Do(ctx, req.Action, req.Fields)}
	}
}

func (m Model) handoff(h flow.Handoff) tea.Cmd {
	target, remember, ctx := m.opts.Handoff, m.opts.Remember, m.ctx
	return func() tea.Msg {
		err := <-handoff.Fire(ctx, target, h.Username, h.Password)
		if remember != nil {
			if rerr := remember(h.Username); rerr != nil {
				warnRemember(rerr)
			}
		}
		return handedOffMsg{username: h.Username, err: err}
	}
}

func waitForCard(cards <-chan string) tea.Cmd {
	if cards == nil {
		return nil
	}
	return func() tea.Msg {
		uid, ok := <-cards
		if !ok {
			return cardsClosedMsg{}
		}
		return cardMsg{uid: uid}
	}
}

// View renders the login screen
func (m Model) View() string {
	screen := flow.View(m.session)

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.catalog.Text(modeTitles[screen.Mode])))
	b.WriteString("\n")

	for _, f := range screen.Fields {
		label := LabelStyle
		if f == m.focus {
			label = FocusedLabelStyle
		}
		b.WriteString(label.Render(m.catalog.Text(fieldLabels[f])))
		b.WriteString("\n")
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n")
	}

	if screen.Busy {
		b.WriteString(InfoStyle.Render(m.spinner.View() + " " + m.catalog.Text(i18n.KeyBusy)))
	} else {
		b.WriteString(renderMessage(m.catalog.Text(screen.Message), screen.Message, screen.Blocking))
	}

	form := FormStyle.Render(strings.TrimRight(b.String(), "\n"))
	content := lipgloss.JoinVertical(lipgloss.Center, form)
	return RenderContainer(content, m.help.View(m.keys), m.Width, m.Height)
}
