package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/marketcli/internal/analytics"
	"github.com/studiowebux/marketcli/internal/catalog"
	"github.com/studiowebux/marketcli/internal/executor"
	"github.com/studiowebux/marketcli/internal/highlight"
	"github.com/studiowebux/marketcli/internal/keybinds"
	"github.com/studiowebux/marketcli/internal/session"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleMethod = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue)
)

func statusStyle(status int) lipgloss.Style {
	switch {
	case executor.IsSuccessStatus(status):
		return styleSuccess
	case executor.IsClientErrorStatus(status):
		return styleWarning
	case status == 0, executor.IsServerErrorStatus(status):
		return styleError
	default:
		return styleSubtle
	}
}

func (m *Model) sidebarWidth() int {
	w := max(SidebarMinWidth, m.width*SidebarPercent/100)
	if m.width < 100 {
		w = m.width / 2
	}
	return w
}

// detailWidth is the inner width of the right pane
func (m *Model) detailWidth() int {
	return m.width - m.sidebarWidth() - 2*ViewportBorderWidth
}

// updateLayout sizes the viewports and inputs to the terminal
func (m *Model) updateLayout() {
	if m.width == 0 {
		return
	}

	params := 0
	if ep, ok := m.session.Selected(); ok {
		params = len(ep.Params)
	}
	paneHeight := m.height - StatusBarHeight - ViewportBorderWidth

	m.response.Width = max(1, m.detailWidth()-ViewportBorderWidth)
	m.response.Height = max(MinResponseHeight, paneHeight-DetailHeaderLines-params)

	m.helpView.Width = max(1, m.width-ViewportPaddingHorizontal)
	m.helpView.Height = max(MinResponseHeight, m.height-ModalOverheadLines-StatusBarHeight)

	m.sizeFields()
	m.refreshResponseView()
}

// labelWidth is the column taken by "name* " in the form
const labelWidth = 12

func (m *Model) sizeFields() {
	w := max(8, m.detailWidth()/3)
	for i := range m.fields {
		m.fields[i].Width = w
	}
}

// refreshResponseView renders the current outcome into the response viewport
func (m *Model) refreshResponseView() {
	out := m.session.Outcome()
	theme := m.settings.Theme

	var b strings.Builder
	switch out.State {
	case session.Succeeded:
		if m.filterErr != "" {
			b.WriteString(styleError.Render("Filter error: "+m.filterErr) + "\n\n")
		}
		b.WriteString(highlight.JSON(m.responseText(), theme))

	case session.Failed:
		b.WriteString(styleError.Render(out.Message()))
		if out.Result.Body != "" {
			body := out.Result.Body
			if payload, err := executor.DecodePayload([]byte(body)); err == nil {
				body = highlight.JSON(executor.PrettyPayload(payload), theme)
			}
			b.WriteString("\n\n" + body)
		}
	}

	m.response.SetContent(b.String())
}

// renderMain renders the endpoint list and the detail pane
func (m *Model) renderMain() string {
	sw := m.sidebarWidth()
	dw := m.detailWidth()
	h := m.height - StatusBarHeight - ViewportBorderWidth

	sidebarColor, detailColor := colorCyan, colorGray
	if m.focus == FocusForm {
		sidebarColor, detailColor = colorGray, colorCyan
	}

	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(sidebarColor).
		Width(sw).
		Height(h).
		Render(clipLines(m.renderSidebar(sw, h), h))

	detail := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(detailColor).
		Padding(0, 1).
		Width(dw).
		Height(h).
		Render(clipLines(m.renderDetail(dw-2), h))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, detail),
		m.renderStatusBar(),
	)
}

func (m *Model) marketLabel() string {
	if m.market == "" {
		return "all"
	}
	return string(m.market)
}

// renderSidebar renders the endpoint list grouped by market, scrolled so the
// cursor stays visible
func (m *Model) renderSidebar(width, height int) string {
	lines := []string{styleTitle.Render("Endpoints") + styleSubtle.Render(" ("+m.marketLabel()+")")}
	if m.searchQuery != "" {
		lines = append(lines, styleWarning.Render("/"+m.searchQuery))
	}

	if len(m.endpoints) == 0 {
		lines = append(lines, "", styleSubtle.Render("No matching endpoints"))
		return strings.Join(lines, "\n")
	}

	rows, cursorRow := m.endpointRows(width)
	avail := max(1, height-len(lines))
	start := 0
	if cursorRow >= avail {
		start = cursorRow - avail + 1
	}
	end := min(len(rows), start+avail)

	lines = append(lines, rows[start:end]...)
	return strings.Join(lines, "\n")
}

func (m *Model) endpointRows(width int) ([]string, int) {
	selected, hasSelection := m.session.Selected()

	var rows []string
	cursorRow := 0
	var market catalog.Market
	for i, ep := range m.endpoints {
		if i == 0 || ep.Market != market {
			market = ep.Market
			rows = append(rows, styleSubtle.Render(strings.ToUpper(string(market))))
		}

		marker := "  "
		isSelected := hasSelection && selected.Name == ep.Name
		if isSelected {
			marker = "> "
		}
		line := truncate(marker+ep.Name, max(4, width-1))

		switch {
		case i == m.cursor:
			line = styleSelected.Render(padRight(line, width-1))
			cursorRow = len(rows)
		case isSelected:
			line = styleSuccess.Render(line)
		}
		rows = append(rows, line)
	}
	return rows, cursorRow
}

// renderDetail renders the selected endpoint, its form, the curl line and
// the outcome of the last call
func (m *Model) renderDetail(width int) string {
	ep, ok := m.session.Selected()
	if !ok {
		return m.renderWelcome(width)
	}

	lines := []string{
		styleTitle.Render(ep.Name) + "  " + styleSubtle.Render(string(ep.Market)),
		styleMethod.Render(ep.Method) + " " + ep.Path,
		styleSubtle.Render(truncate(ep.Description, width)),
		"",
	}

	if len(ep.Params) == 0 {
		lines = append(lines, styleSubtle.Render("No parameters"))
	} else {
		lines = append(lines, "Parameters")
		for i, p := range ep.Params {
			lines = append(lines, m.renderField(i, p, width))
		}
	}

	lines = append(lines,
		"",
		styleSubtle.Render("curl"),
		highlight.Command(m.session.Command(), m.settings.Theme),
		"",
		m.renderOutcome(),
		m.response.View(),
	)
	return strings.Join(lines, "\n")
}

func (m *Model) renderField(i int, p catalog.ParameterSpec, width int) string {
	label := p.Name
	if p.Required {
		label += "*"
	}
	label = padRight(truncate(label, labelWidth-1), labelWidth)
	if m.focus == FocusForm && i == m.fieldIndex {
		label = styleTitle.Render(label)
	}

	input := ""
	if i < len(m.fields) {
		input = m.fields[i].View()
	}

	row := label + input
	rest := width - lipgloss.Width(row) - 2
	if rest > 8 && p.Description != "" {
		row += "  " + styleSubtle.Render(truncate(p.Description, rest))
	}
	return row
}

func (m *Model) renderOutcome() string {
	out := m.session.Outcome()
	switch out.State {
	case session.Pending:
		return m.spinner.View() + " Calling " + m.session.URL()

	case session.Succeeded:
		res := out.Result
		line := statusStyle(res.Status).Render(res.StatusText) +
			styleSubtle.Render(fmt.Sprintf(" | %s | %s", executor.FormatDuration(res.Duration), executor.FormatSize(res.ResponseSize)))
		if m.filterExpr != "" {
			line += styleWarning.Render(" | filter: " + m.filterExpr)
		}
		return line

	case session.Failed:
		res := out.Result
		if res.Status == 0 {
			return styleError.Render("Failed") + styleSubtle.Render(" | "+executor.FormatDuration(res.Duration))
		}
		return statusStyle(res.Status).Render(res.StatusText) +
			styleSubtle.Render(fmt.Sprintf(" | %s | %s", executor.FormatDuration(res.Duration), executor.FormatSize(res.ResponseSize)))
	}

	key := m.keys.GetBindingString(keybinds.ContextForm, keybinds.ActionExecute)
	return styleSubtle.Render("Press " + key + " to call this endpoint")
}

func (m *Model) renderWelcome(width int) string {
	lines := []string{
		styleTitle.Render("marketcli"),
		styleSubtle.Render(truncate(m.session.BaseURL(), width)),
		"",
		fmt.Sprintf("%s select  %s search  %s market  %s help",
			m.keys.GetBindingString(keybinds.ContextList, keybinds.ActionSelect),
			m.keys.GetBindingString(keybinds.ContextList, keybinds.ActionOpenSearch),
			m.keys.GetBindingString(keybinds.ContextList, keybinds.ActionCycleMarket),
			m.keys.GetBindingString(keybinds.ContextList, keybinds.ActionOpenHelp)),
	}

	if m.cursor < len(m.endpoints) {
		ep := m.endpoints[m.cursor]
		lines = append(lines, "", styleMethod.Render(ep.Method)+" "+ep.Path, styleSubtle.Render(truncate(ep.Description, width)))
		for _, p := range ep.Params {
			name := p.Name
			if p.Required {
				name += "*"
			}
			def := ""
			if p.HasDefault() {
				def = " = " + p.Default
			}
			lines = append(lines, fmt.Sprintf("  %s {%s}%s", name, p.Kind, def))
		}
	}
	return strings.Join(lines, "\n")
}

// renderStatusBar renders the footer: base URL on the left, prompt or
// message on the right
func (m *Model) renderStatusBar() string {
	left := styleTitle.Render("marketcli") + " " + styleSubtle.Render(m.session.BaseURL())
	if !m.recorder.Enabled() {
		left += styleSubtle.Render(" | history off")
	}

	var right string
	switch {
	case m.mode == ModeSearch || m.mode == ModeFilter:
		right = m.input.View()
	case m.errorMsg != "":
		right = styleError.Render(m.errorMsg)
	case m.statusMsg != "":
		right = styleSuccess.Render(m.statusMsg)
	default:
		right = styleSubtle.Render(fmt.Sprintf("%s help | %s quit",
			m.keys.GetBindingString(keybinds.ContextList, keybinds.ActionOpenHelp),
			m.keys.GetBindingString(keybinds.ContextList, keybinds.ActionQuit)))
	}

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

// renderModal frames content as a full-screen box above the status bar
func (m *Model) renderModal(content string) string {
	h := m.height - StatusBarHeight - ViewportBorderWidth
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Padding(0, 1).
		Width(m.width - ViewportBorderWidth).
		Height(h).
		Render(clipLines(content, h))
	return lipgloss.JoinVertical(lipgloss.Left, box, m.renderStatusBar())
}

func (m *Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(fmt.Sprintf("History (%d)", len(m.historyEntries))) + "\n\n")

	if len(m.historyEntries) == 0 {
		b.WriteString(styleSubtle.Render("No calls recorded yet"))
		return m.renderModal(b.String())
	}

	width := m.width - ViewportPaddingHorizontal
	avail := max(1, m.height-ModalOverheadLines-StatusBarHeight-4)
	start := 0
	if m.historyIndex >= avail {
		start = m.historyIndex - avail + 1
	}
	end := min(len(m.historyEntries), start+avail)

	for i := start; i < end; i++ {
		e := m.historyEntries[i]
		status := "ERR"
		if e.Status > 0 {
			status = fmt.Sprintf("%d", e.Status)
		}
		line := fmt.Sprintf("%s  %-4s %-32s %8s",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			status,
			truncate(e.Endpoint, 32),
			executor.FormatDuration(e.Duration))
		if i == m.historyIndex {
			line = styleSelected.Render(padRight(line, width))
		} else {
			line = statusStyle(e.Status).Render(line)
		}
		b.WriteString(line + "\n")
	}

	e := m.historyEntries[m.historyIndex]
	b.WriteString("\n" + styleSubtle.Render(truncate(e.URL, width)) + "\n")
	if e.Error != "" {
		b.WriteString(styleError.Render(truncate(e.Error, width)))
	}

	return m.renderModal(b.String())
}

func (m *Model) renderStats() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Stats per endpoint") + "\n\n")

	if len(m.stats) == 0 {
		b.WriteString(styleSubtle.Render("No calls recorded yet"))
		return m.renderModal(b.String())
	}

	header := fmt.Sprintf("%-32s %6s %7s %9s %9s %9s  %s", "ENDPOINT", "CALLS", "OK%", "AVG", "MIN", "MAX", "LAST")
	b.WriteString(styleSubtle.Render(header) + "\n")

	width := m.width - ViewportPaddingHorizontal
	for i, s := range m.stats {
		line := statsLine(s)
		if i == m.statsIndex {
			line = styleSelected.Render(padRight(line, width))
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(styleTitle.Render(statsLine(analytics.Totals(m.stats))) + "\n")

	if m.statsIndex < len(m.stats) {
		s := m.stats[m.statsIndex]
		codes := make([]string, 0, len(s.StatusCodes))
		for _, code := range analytics.SortedStatusCodes(s) {
			label := fmt.Sprintf("%d", code)
			if code == 0 {
				label = "ERR"
			}
			codes = append(codes, statusStyle(code).Render(fmt.Sprintf("%s x%d", label, s.StatusCodes[code])))
		}
		b.WriteString("\n" + strings.Join(codes, "  "))
	}

	return m.renderModal(b.String())
}

func statsLine(s analytics.Stats) string {
	last := "-"
	if !s.LastCalled.IsZero() {
		last = s.LastCalled.Local().Format("01-02 15:04:05")
	}
	return fmt.Sprintf("%-32s %6d %6.1f%% %9s %9s %9s  %s",
		truncate(s.Endpoint, 32),
		s.TotalCalls,
		s.SuccessRate(),
		executor.FormatDuration(int64(s.AvgDurationMs)),
		executor.FormatDuration(s.MinDurationMs),
		executor.FormatDuration(s.MaxDurationMs),
		last)
}

func (m *Model) renderHelp() string {
	return m.renderModal(styleTitle.Render("Key bindings") + "\n\n" + m.helpView.View())
}

var actionDescriptions = map[keybinds.Action]string{
	keybinds.ActionQuit:          "quit",
	keybinds.ActionQuitForce:     "quit immediately",
	keybinds.ActionNavigateUp:    "move up",
	keybinds.ActionNavigateDown:  "move down",
	keybinds.ActionGoToTop:       "first entry",
	keybinds.ActionGoToBottom:    "last entry",
	keybinds.ActionScrollUp:      "scroll up",
	keybinds.ActionScrollDown:    "scroll down",
	keybinds.ActionNextField:     "next field",
	keybinds.ActionPrevField:     "previous field",
	keybinds.ActionSelect:        "select endpoint",
	keybinds.ActionClear:         "back / clear search / clear selection",
	keybinds.ActionResetValues:   "reset parameters to defaults",
	keybinds.ActionCycleMarket:   "cycle market (all, spot, futures)",
	keybinds.ActionExecute:       "call the endpoint",
	keybinds.ActionCopyCommand:   "copy curl command",
	keybinds.ActionCopyResponse:  "copy response",
	keybinds.ActionOpenSearch:    "fuzzy search endpoints",
	keybinds.ActionOpenFilter:    "JMESPath filter on the response",
	keybinds.ActionOpenHistory:   "call history",
	keybinds.ActionOpenStats:     "stats per endpoint",
	keybinds.ActionOpenHelp:      "this help",
	keybinds.ActionTextSubmit:    "apply",
	keybinds.ActionTextCancel:    "cancel",
	keybinds.ActionCloseModal:    "close",
	keybinds.ActionHistoryReplay: "replay entry",
	keybinds.ActionHistoryClear:  "clear history (press twice)",
	keybinds.ActionRefresh:       "reload",
}

var contextTitles = map[keybinds.Context]string{
	keybinds.ContextGlobal:  "Everywhere",
	keybinds.ContextList:    "Endpoint list",
	keybinds.ContextForm:    "Parameter form",
	keybinds.ContextSearch:  "Search prompt",
	keybinds.ContextFilter:  "Filter prompt",
	keybinds.ContextHistory: "History",
	keybinds.ContextStats:   "Stats",
	keybinds.ContextHelp:    "Help",
}

// helpContent lists the bindings of every context, keys grouped per action
func (m *Model) helpContent() string {
	var b strings.Builder
	for _, ctx := range keybinds.Contexts() {
		bindings := m.keys.ListBindings(ctx)
		if len(bindings) == 0 {
			continue
		}

		keys := make(map[keybinds.Action][]string)
		var actions []keybinds.Action
		for _, binding := range bindings {
			if _, seen := keys[binding.Action]; !seen {
				actions = append(actions, binding.Action)
			}
			keys[binding.Action] = append(keys[binding.Action], binding.Key)
		}
		sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

		b.WriteString(styleWarning.Render(contextTitles[ctx]) + "\n")
		for _, action := range actions {
			desc := actionDescriptions[action]
			if desc == "" {
				desc = string(action)
			}
			b.WriteString(fmt.Sprintf("  %-20s %s\n", strings.Join(keys[action], "/"), desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(styleSubtle.Render("Integer fields accept digits only. * marks a required parameter."))
	return b.String()
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// clipLines keeps the first n lines of s
func clipLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}
