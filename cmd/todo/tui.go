package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jsamuelsen11/go-todo-service/internal/client/store"
	"github.com/jsamuelsen11/go-todo-service/internal/domain"
	"github.com/jsamuelsen11/go-todo-service/internal/domain/todo"
)

// stateMsg carries a store change into the program.
type stateMsg store.State

// opDoneMsg reports the outcome of a store operation started by a key.
type opDoneMsg struct {
	notice string
	err    error
}

type keyMap struct {
	add     key.Binding
	toggle  key.Binding
	remove  key.Binding
	clear   key.Binding
	filter  key.Binding
	refresh key.Binding
	quit    key.Binding
	submit  key.Binding
	cancel  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done")),
		filter:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "view")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		submit:  key.NewBinding(key.WithKeys("enter")),
		cancel:  key.NewBinding(key.WithKeys("esc")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.add, k.toggle, k.remove, k.clear, k.filter, k.refresh}
}

// listItem adapts a todo to bubbles/list.
type listItem struct{ todo.Todo }

func (i listItem) FilterValue() string { return i.Title }

// itemDelegate renders one todo per line.
type itemDelegate struct{}

func (itemDelegate) Height() int                         { return 1 }
func (itemDelegate) Spacing() int                        { return 0 }
func (itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	box, text := mutedStyle.Render(boxUnchecked), it.Title
	if it.IsCompleted {
		box, text = successStyle.Render(boxChecked), doneStyle.Render(it.Title)
	}
	if it.Description != "" {
		text += " " + mutedStyle.Render(it.Description)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

// model is the bubbletea model of the interactive client. All data flows
// through the store; the model only mirrors the latest snapshot.
type model struct {
	ctx     context.Context
	store   *store.Store
	updates <-chan store.State
	keys    keyMap

	list   list.Model
	input  textinput.Model
	adding bool

	state    store.State
	notice   string
	inputErr string
	width    int
	height   int
}

func newModel(ctx context.Context, s *store.Store, updates <-chan store.State) model {
	keys := newKeyMap()

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.KeyMap.Quit.SetEnabled(false)
	l.AdditionalShortHelpKeys = keys.help
	l.AdditionalFullHelpKeys = keys.help

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "New todo title..."
	ti.CharLimit = todo.MaxTitleLength

	return model{
		ctx:     ctx,
		store:   s,
		updates: updates,
		keys:    keys,
		list:    l,
		input:   ti,
		state:   s.Snapshot(),
	}
}

// waitForState blocks until the store publishes a change.
func waitForState(updates <-chan store.State) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg(st)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.updates), m.fetch())
}

func (m model) fetch() tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: m.store.FetchAll(m.ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case stateMsg:
		m.state = store.State(msg)
		cmd := m.list.SetItems(toListItems(m.state.Visible()))
		return m, tea.Batch(cmd, waitForState(m.updates))

	case opDoneMsg:
		if msg.err == nil {
			m.notice = msg.notice
		} else {
			m.notice = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateBrowsing(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.add):
		m.adding = true
		m.inputErr = ""
		m.input.SetValue("")
		m.resize()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.toggle):
		if it, ok := m.selected(); ok {
			return m, func() tea.Msg {
				_, err := m.store.Toggle(m.ctx, it.ID)
				return opDoneMsg{err: err}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.remove):
		if it, ok := m.selected(); ok {
			return m, func() tea.Msg {
				return opDoneMsg{notice: "deleted " + it.Title, err: m.store.Delete(m.ctx, it.ID)}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.clear):
		return m, func() tea.Msg {
			n, err := m.store.ClearCompleted(m.ctx)
			return opDoneMsg{notice: fmt.Sprintf("cleared %d completed", n), err: err}
		}

	case key.Matches(msg, m.keys.filter):
		_ = m.store.SetFilter(m.state.Filter.Next())
		return m, nil

	case key.Matches(msg, m.keys.refresh):
		return m, m.fetch()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		draft := todo.Draft{Title: strings.TrimSpace(m.input.Value())}
		if err := draft.Validate(); err != nil {
			m.inputErr = "Title " + fieldMessage(err, "title")
			return m, nil
		}
		m.stopAdding()
		return m, func() tea.Msg {
			created, err := m.store.Create(m.ctx, draft)
			if err != nil {
				return opDoneMsg{err: err}
			}
			return opDoneMsg{notice: "added " + created.Title}
		}

	case key.Matches(msg, m.keys.cancel):
		m.stopAdding()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) stopAdding() {
	m.adding = false
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
	m.resize()
}

func (m model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// resize fits the list between the header and the status line.
func (m *model) resize() {
	if m.width == 0 {
		return
	}
	reserved := 6
	if m.adding {
		reserved += 4
	}
	m.list.SetSize(max(m.width-4, 10), max(m.height-reserved, 3))
}

func (m model) View() string {
	var b strings.Builder

	open, completed := m.state.Counts()
	fmt.Fprintf(&b, "%s   %s %d  %s %d  %s %d   %s\n",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), completed,
		pendingStyle.Render("•"), open,
		accentStyle.Render("Total"), len(m.state.Items),
		mutedStyle.Render("view: "+m.state.Filter.String()),
	)

	b.WriteString(m.list.View())

	if m.adding {
		title := "Add todo"
		if m.inputErr != "" {
			title += "  " + errorStyle.Render(m.inputErr)
		}
		b.WriteString("\n" + panelStyle.Render(title+"\n"+m.input.View()))
	}

	b.WriteString("\n" + m.statusLine())
	return panelStyle.Render(b.String())
}

func (m model) statusLine() string {
	status := mutedStyle.Render("status: " + string(m.state.Status))
	switch {
	case m.state.LastError != "":
		return status + "  " + errorStyle.Render(m.state.LastError)
	case m.notice != "":
		return status + "  " + successStyle.Render(m.notice)
	default:
		return status
	}
}

func toListItems(todos []todo.Todo) []list.Item {
	items := make([]list.Item, len(todos))
	for i, t := range todos {
		items[i] = listItem{t}
	}
	return items
}

// fieldMessage returns the validation message for field, or err's text.
func fieldMessage(err error, field string) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		if msg, ok := verr.Fields[field]; ok {
			return msg
		}
	}
	return err.Error()
}
