package app

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	table "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/Uri2001/orgs/internal/store"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)

// serverList shows the known servers with a fuzzy search box.
type serverList struct {
	t          func(string) string
	table      table.Model
	search     textinput.Model
	pageSize   int
	servers    []store.Server
	filteredIx []int
}

func newServerList(t func(string) string) *serverList {
	search := textinput.New()
	search.Placeholder = "search (name/url), / to focus, Esc to clear"
	search.Prompt = "/ "
	search.CharLimit = 256
	search.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	search.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	tbl := table.New(table.WithColumns(defaultColumns()), table.WithHeight(15))
	padding := lipgloss.NewStyle().Padding(0, 1)
	styles := table.DefaultStyles()
	styles.Header = padding.Copy().Bold(true).Foreground(lipgloss.Color("10"))
	styles.Cell = padding.Copy()
	styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	tbl.SetStyles(styles)

	l := &serverList{t: t, table: tbl, search: search}
	l.updatePageSize()
	return l
}

func (l *serverList) setServers(servers []store.Server) {
	l.servers = servers
	l.applyFilter(false)
}

func (l *serverList) updatePageSize() {
	l.pageSize = l.table.Height()
	if l.pageSize <= 0 {
		l.pageSize = 1
	}
}

func (l *serverList) applyLayout(width, height int) {
	if width > 0 {
		l.search.Width = max(20, width-6)
		l.table.SetColumns(responsiveColumns(width))
	}
	if height > 0 {
		tableHeight := height - 8
		if tableHeight < 5 {
			tableHeight = 5
		}
		l.table.SetHeight(tableHeight)
	}
	l.updatePageSize()
}

func (l *serverList) moveCursor(delta int) {
	if delta < 0 {
		l.table.MoveUp(-delta)
	} else if delta > 0 {
		l.table.MoveDown(delta)
	}
}

func (l *serverList) movePage(delta int) {
	step := l.pageSize
	if step <= 0 {
		step = 1
	}
	l.moveCursor(delta * step)
}

func (l *serverList) applyFilter(resetCursor bool) {
	prevCursor := l.table.Cursor()
	l.filteredIx = matchServers(l.servers, strings.TrimSpace(l.search.Value()))
	rows := make([]table.Row, 0, len(l.filteredIx))
	for _, idx := range l.filteredIx {
		srv := l.servers[idx]
		last := "-"
		if srv.LastUsedAt.Valid {
			last = srv.LastUsedAt.Time.Local().Format("2006-01-02 15:04")
		}
		version := srv.ZulipVersion
		if version == "" {
			version = "-"
		}
		rows = append(rows, table.Row{srv.Alias, srv.URL, version, last, fmt.Sprintf("%d", srv.UseCount)})
	}
	l.table.SetRows(rows)
	if len(rows) == 0 {
		return
	}
	if resetCursor {
		l.table.SetCursor(0)
		return
	}
	if prevCursor < 0 {
		prevCursor = 0
	}
	if prevCursor >= len(rows) {
		prevCursor = len(rows) - 1
	}
	l.table.SetCursor(prevCursor)
}

func (l *serverList) currentSelection() (store.Server, bool) {
	if len(l.filteredIx) == 0 {
		return store.Server{}, false
	}
	row := l.table.Cursor()
	if row < 0 || row >= len(l.filteredIx) {
		return store.Server{}, false
	}
	return l.servers[l.filteredIx[row]], true
}

func (l *serverList) Init() tea.Cmd { return nil }

// Update feeds unhandled messages to the search box and table.
func (l *serverList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	prev := l.search.Value()
	var searchCmd tea.Cmd
	l.search, searchCmd = l.search.Update(msg)
	if l.search.Value() != prev {
		l.applyFilter(true)
	}
	var tableCmd tea.Cmd
	l.table, tableCmd = l.table.Update(msg)
	return l, tea.Batch(searchCmd, tableCmd)
}

func (l *serverList) View() string {
	tableView := l.table.View()
	displayed := 0
	if tableView != "" {
		lines := strings.Split(tableView, "\n")
		if len(lines) > 1 {
			for _, line := range lines[1:] {
				if strings.TrimSpace(stripANSI(line)) != "" {
					displayed++
				}
			}
		}
	}
	infoLine := fmt.Sprintf("Total: %d  Matched: %d  Visible: %d", len(l.servers), len(l.filteredIx), displayed)
	footer := statusStyle.Render("Enter open  / search  a add  d delete  q quit")
	return headerStyle.Render("orgs - "+l.t("Known servers")) + "\n" +
		l.search.View() + "\n\n" +
		tableView + "\n" +
		infoLine + "\n" +
		footer
}

// FilterServers returns the servers matching query, best match first.
// An empty query returns servers unchanged.
func FilterServers(servers []store.Server, query string) []store.Server {
	idx := matchServers(servers, strings.TrimSpace(query))
	out := make([]store.Server, 0, len(idx))
	for _, i := range idx {
		out = append(out, servers[i])
	}
	return out
}

func matchServers(servers []store.Server, query string) []int {
	if query == "" {
		idx := make([]int, len(servers))
		for i := range servers {
			idx[i] = i
		}
		return idx
	}
	haystack := make([]string, len(servers))
	for i, srv := range servers {
		haystack[i] = strings.ToLower(srv.Alias + " " + srv.URL)
	}
	matches := fuzzy.Find(strings.ToLower(query), haystack)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			si, sj := servers[matches[i].Index], servers[matches[j].Index]
			if si.LastUsedAt.Valid && sj.LastUsedAt.Valid {
				return si.LastUsedAt.Time.After(sj.LastUsedAt.Time)
			}
			if si.LastUsedAt.Valid != sj.LastUsedAt.Valid {
				return si.LastUsedAt.Valid
			}
			return si.Alias < sj.Alias
		}
		return matches[i].Score > matches[j].Score
	})
	idx := make([]int, 0, len(matches))
	for _, match := range matches {
		idx = append(idx, match.Index)
	}
	return idx
}

func stripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}

func defaultColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 28},
		{Title: "URL", Width: 48},
		{Title: "Version", Width: 10},
		{Title: "Last Used", Width: 16},
		{Title: "#", Width: 4},
	}
}

func responsiveColumns(width int) []table.Column {
	const (
		versionWidth  = 10
		lastUsedWidth = 16
		countWidth    = 4
		minNameWidth  = 12
		minURLWidth   = 20
		padding       = 10
	)
	available := max(minNameWidth+minURLWidth, width-padding-versionWidth-lastUsedWidth-countWidth)
	nameWidth := available * 2 / 5
	urlWidth := available - nameWidth

	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
		urlWidth = available - nameWidth
	}
	if urlWidth < minURLWidth {
		urlWidth = minURLWidth
		nameWidth = max(minNameWidth, available-urlWidth)
	}

	return []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "URL", Width: urlWidth},
		{Title: "Version", Width: versionWidth},
		{Title: "Last Used", Width: lastUsedWidth},
		{Title: "#", Width: countWidth},
	}
}
