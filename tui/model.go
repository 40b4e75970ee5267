// Package tui implements a Bubble Tea watcher over the web inspector's
// SSE activity stream: a scrollable, filterable list of façade fetch
// activity plus a detail pane for the selected entry.
package tui

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mickamy/apiwire/clipboard"
)

type viewMode int

const (
	viewList viewMode = iota
	viewInspect
)

type sortMode int

const (
	sortChronological sortMode = iota
	sortDuration
)

// Model is the Bubble Tea model for the apiwire watcher.
type Model struct {
	endpoint string
	client   *http.Client
	resp     *http.Response
	scanner  *bufio.Scanner

	activities  []Activity
	rows        []int // indices into activities passing the current filter/search
	cursor      int
	follow      bool
	width       int
	height      int
	err         error
	view        viewMode
	sortMode    sortMode

	searchMode   bool
	searchQuery  string
	searchCursor int
	filterMode   bool
	filterQuery  string
	filterCursor int

	inspectScroll int
}

// connectedMsg carries the established SSE response and its scanner.
type connectedMsg struct {
	resp    *http.Response
	scanner *bufio.Scanner
}

// activityMsg carries one decoded Activity event off the stream.
type activityMsg struct{ Activity Activity }

// errMsg carries a connection or stream error.
type errMsg struct{ Err error }

// New creates a Model that watches the web inspector's SSE endpoint
// at endpoint (e.g. "http://127.0.0.1:9100/api/activity").
func New(endpoint string) Model {
	return Model{
		endpoint: endpoint,
		client:   &http.Client{},
		follow:   true,
	}
}

// Init starts the SSE connection.
func (m Model) Init() tea.Cmd {
	return connect(m.client, m.endpoint)
}

func connect(client *http.Client, endpoint string) tea.Cmd {
	return func() tea.Msg {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, endpoint, nil)
		if err != nil {
			return errMsg{Err: fmt.Errorf("build request for %s: %w", endpoint, err)}
		}
		resp, err := client.Do(req)
		if err != nil {
			return errMsg{Err: fmt.Errorf("connect to %s: %w", endpoint, err)}
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return errMsg{Err: fmt.Errorf("inspector at %s returned %s", endpoint, resp.Status)}
		}
		return connectedMsg{resp: resp, scanner: bufio.NewScanner(resp.Body)}
	}
}

func recvActivity(scanner *bufio.Scanner) tea.Cmd {
	return func() tea.Msg {
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			a, err := parseActivity([]byte(strings.TrimPrefix(line, "data: ")))
			if err != nil {
				continue
			}
			return activityMsg{Activity: a}
		}
		if err := scanner.Err(); err != nil {
			return errMsg{Err: err}
		}
		return errMsg{Err: fmt.Errorf("inspector stream closed")}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case connectedMsg:
		m.resp = msg.resp
		m.scanner = msg.scanner
		return m, recvActivity(msg.scanner)

	case activityMsg:
		m.activities = append(m.activities, msg.Activity)
		if m.view != viewList {
			return m, recvActivity(m.scanner)
		}
		m.rows = m.rebuildRows()
		if m.follow {
			m.cursor = max(len(m.rows)-1, 0)
		}
		return m, recvActivity(m.scanner)

	case errMsg:
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case viewInspect:
			return m.updateInspect(msg)
		case viewList:
			return m.updateList(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	if m.err != nil {
		return friendlyError(m.err, m.width)
	}

	if len(m.activities) == 0 {
		return "Waiting for activity..."
	}

	if m.view == viewInspect {
		return m.renderInspector()
	}

	var footer string
	switch {
	case m.searchMode:
		footer = "  / " + renderInputWithCursor(m.searchQuery, m.searchCursor)
	case m.filterMode:
		footer = "  filter: " + renderInputWithCursor(m.filterQuery, m.filterCursor)
	default:
		items := []string{
			"q: quit", "j/k: navigate",
			"enter: inspect", "c: copy query",
			"/: search", "f: filter", "s: sort",
		}
		footer = wrapFooterItems(items, m.width)
		if m.filterQuery != "" {
			footer += "\n  " + fmt.Sprintf("[filter: %s]", describeFilter(m.filterQuery))
		}
		if m.searchQuery != "" || m.filterQuery != "" {
			footer += "  esc: clear"
		}
		if m.sortMode == sortDuration {
			footer += "  [sorted: duration]"
		}
	}

	footerLines := strings.Count(footer, "\n") + 1
	listHeight := m.listHeight(footerLines)

	return strings.Join([]string{
		m.renderList(listHeight),
		m.renderPreview(),
		footer,
	}, "\n")
}

func (m Model) listHeight(footerLines int) int {
	extra := max(footerLines-1, 0)
	return max(m.height-12-extra, 3)
}

func (m Model) rebuildRows() []int {
	matched := matchingActivities(m.activities, m.filterQuery, m.searchQuery)

	var rows []int
	for i := range m.activities {
		if matched[i] {
			rows = append(rows, i)
		}
	}
	if m.sortMode == sortDuration {
		sort.Slice(rows, func(a, b int) bool {
			return m.activities[rows[a]].duration() > m.activities[rows[b]].duration()
		})
	}
	return rows
}

func matchingActivities(activities []Activity, filterQuery, searchQuery string) map[int]bool {
	matched := make(map[int]bool, len(activities))

	var conds []filterCondition
	if filterQuery != "" {
		conds = parseFilter(filterQuery)
	}
	searchLower := strings.ToLower(searchQuery)

	for i, a := range activities {
		if len(conds) > 0 && !matchAllConditions(a, conds) {
			continue
		}
		if searchLower != "" && !strings.Contains(strings.ToLower(a.Query), searchLower) {
			continue
		}
		matched[i] = true
	}
	return matched
}

func (m Model) cursorActivity() *Activity {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return &m.activities[m.rows[m.cursor]]
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchMode {
		return m.updateSearch(msg)
	}
	if m.filterMode {
		return m.updateFilter(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if m.resp != nil {
			_ = m.resp.Body.Close()
		}
		return m, tea.Quit
	case "enter":
		if len(m.rows) > 0 {
			m.view = viewInspect
			m.inspectScroll = 0
		}
		return m, nil
	case "c":
		return m.copyQuery(), nil
	case "/":
		m.searchMode = true
		m.searchQuery = ""
		m.searchCursor = 0
		return m, nil
	case "f":
		m.filterMode = true
		m.filterQuery = ""
		m.filterCursor = 0
		return m, nil
	case "s":
		return m.toggleSort(), nil
	case "esc":
		return m.clearFilter(), nil
	case "j", "down", "k", "up":
		return m.navigateCursor(msg.String()), nil
	case "ctrl+d", "pgdown", "ctrl+u", "pgup":
		return m.pageScroll(msg.String()), nil
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		return m, nil
	case "esc":
		m.searchMode = false
		m.searchQuery = ""
		m.rows = m.rebuildRows()
		m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
		return m, nil
	case "backspace":
		if m.searchCursor > 0 {
			runes := []rune(m.searchQuery)
			m.searchQuery = string(runes[:m.searchCursor-1]) + string(runes[m.searchCursor:])
			m.searchCursor--
			m.rows = m.rebuildRows()
			m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
		}
		return m, nil
	case "ctrl+c":
		if m.resp != nil {
			_ = m.resp.Body.Close()
		}
		return m, tea.Quit
	case "left":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil
	case "right":
		if m.searchCursor < len([]rune(m.searchQuery)) {
			m.searchCursor++
		}
		return m, nil
	case "up", "down":
		return m.navigateCursor(msg.String()), nil
	}

	r := msg.Runes
	if len(r) == 0 {
		return m, nil
	}
	runes := []rune(m.searchQuery)
	m.searchQuery = string(runes[:m.searchCursor]) + string(r) + string(runes[m.searchCursor:])
	m.searchCursor += len(r)
	m.rows = m.rebuildRows()
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterMode = false
		return m, nil
	case "esc":
		m.filterMode = false
		m.filterQuery = ""
		m.rows = m.rebuildRows()
		m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
		return m, nil
	case "backspace":
		if m.filterCursor > 0 {
			runes := []rune(m.filterQuery)
			m.filterQuery = string(runes[:m.filterCursor-1]) + string(runes[m.filterCursor:])
			m.filterCursor--
			m.rows = m.rebuildRows()
			m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
		}
		return m, nil
	case "ctrl+c":
		if m.resp != nil {
			_ = m.resp.Body.Close()
		}
		return m, tea.Quit
	case "left":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
		return m, nil
	case "right":
		if m.filterCursor < len([]rune(m.filterQuery)) {
			m.filterCursor++
		}
		return m, nil
	case "up", "down":
		return m.navigateCursor(msg.String()), nil
	}

	r := msg.Runes
	if len(r) == 0 {
		return m, nil
	}
	runes := []rune(m.filterQuery)
	m.filterQuery = string(runes[:m.filterCursor]) + string(r) + string(runes[m.filterCursor:])
	m.filterCursor += len(r)
	m.rows = m.rebuildRows()
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	return m, nil
}

func (m Model) pageScroll(key string) Model {
	half := max(m.listHeight(1)/2, 1)
	switch key {
	case "ctrl+d", "pgdown":
		m.cursor = min(m.cursor+half, max(len(m.rows)-1, 0))
		if len(m.rows) > 0 && m.cursor == len(m.rows)-1 {
			m.follow = true
		}
	case "ctrl+u", "pgup":
		m.cursor = max(m.cursor-half, 0)
		m.follow = false
	}
	return m
}

func (m Model) navigateCursor(key string) Model {
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.follow = false
		}
	case "down", "j":
		if len(m.rows) > 0 && m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		if len(m.rows) > 0 && m.cursor == len(m.rows)-1 {
			m.follow = true
		}
	}
	return m
}

func (m Model) copyQuery() Model {
	a := m.cursorActivity()
	if a == nil || a.Query == "" {
		return m
	}
	_ = clipboard.Copy(context.Background(), a.Query)
	return m
}

func (m Model) toggleSort() Model {
	switch m.sortMode {
	case sortChronological:
		m.sortMode = sortDuration
		m.follow = false
	case sortDuration:
		m.sortMode = sortChronological
	}
	m.rows = m.rebuildRows()
	m.cursor = 0
	return m
}

func (m Model) clearFilter() Model {
	changed := false
	if m.searchQuery != "" {
		m.searchQuery = ""
		changed = true
	}
	if m.filterQuery != "" {
		m.filterQuery = ""
		changed = true
	}
	if changed {
		m.rows = m.rebuildRows()
		m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	}
	return m
}

func (m Model) updateInspect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.resp != nil {
			_ = m.resp.Body.Close()
		}
		return m, tea.Quit
	case "q":
		m.view = viewList
		m.rows = m.rebuildRows()
		if m.follow {
			m.cursor = max(len(m.rows)-1, 0)
		}
		return m, nil
	case "c":
		return m.copyQuery(), nil
	case "j", "down":
		maxScroll := max(len(m.inspectLines())-m.inspectVisibleRows(), 0)
		if m.inspectScroll < maxScroll {
			m.inspectScroll++
		}
		return m, nil
	case "k", "up":
		if m.inspectScroll > 0 {
			m.inspectScroll--
		}
		return m, nil
	}
	return m, nil
}
