package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"usetidy/internal/core/ports"
	"usetidy/internal/data/history"
	"usetidy/internal/shared/util"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	changedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	fileList    list.Model
	svc         ports.OrganizeService
	trendReport *history.TrendReport
	showTrend   bool

	files      []ports.FileResult
	run        ports.OrganizeResult
	trigger    string
	lastUpdate time.Time

	preview     ports.FileResult
	hasPreview  bool
	previewErr  string
	applyStatus string
}

type updateMsg struct {
	result ports.OrganizeResult
	// trigger names what produced the result: startup, refresh, apply, fs.
	trigger string
	// partial marks watch batches, which carry only the files that changed
	// on disk and must be merged into the known set instead of replacing it.
	partial bool
}

type actionResultMsg struct {
	status string
	err    error
}

func (m model) Init() tea.Cmd {
	return refreshCmd(m.svc)
}

func refreshCmd(svc ports.OrganizeService) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		res, err := svc.RunOrganize(context.Background(), ports.OrganizeRequest{})
		if err != nil {
			return actionResultMsg{err: err}
		}
		return updateMsg{result: res, trigger: "refresh"}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return handleKeyActions(msg, m)
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		width := msg.Width - h
		height := msg.Height - v - 8
		if height < 5 {
			height = 5
		}
		m.fileList.SetSize(width, height)
	case updateMsg:
		m.run = msg.result
		m.trigger = msg.trigger
		if msg.partial {
			m.files = mergeFileResults(m.files, msg.result.Files)
		} else {
			m.files = append([]ports.FileResult(nil), msg.result.Files...)
		}
		m.lastUpdate = time.Now()
		m.fileList.SetItems(fileItems(m.files))
		if m.hasPreview {
			m = refreshPreview(m)
		}
	case actionResultMsg:
		if msg.err != nil {
			m.applyStatus = errorStyle.Render(msg.err.Error())
		} else {
			m.applyStatus = statusStyle.Render(msg.status)
		}
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files | trigger: %s",
		m.lastUpdate.Format("15:04:05"), len(m.files), m.trigger))

	changed, parseErrors := countOutstanding(m.files)
	var summary string
	if changed == 0 && parseErrors == 0 {
		summary = successStyle.Render("All imports tidy")
	} else {
		summary = fmt.Sprintf("%s | %s",
			changedStyle.Render(fmt.Sprintf("%d need organizing", changed)),
			errorStyle.Render(fmt.Sprintf("%d parse errors", parseErrors)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("usetidy import organizer"), status, summary)
	help := renderHelp(m)

	body := m.fileList.View()
	if m.hasPreview || m.previewErr != "" {
		body += "\n\n" + renderPreviewPanel(m)
	}
	if m.showTrend {
		body += "\n\n" + renderTrendOverlay(m.trendReport)
	}
	if m.applyStatus != "" {
		body += "\n\n" + m.applyStatus
	}

	return docStyle.Render(header + "\n" + help + "\n\n" + body)
}

func initialModel(svc ports.OrganizeService, trendReport *history.TrendReport) model {
	fileList := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	fileList.Title = "Scanned Files"
	fileList.SetShowStatusBar(false)
	fileList.SetFilteringEnabled(true)

	return model{
		fileList:    fileList,
		svc:         svc,
		trendReport: trendReport,
		trigger:     "startup",
		lastUpdate:  time.Now(),
	}
}

func fileItems(files []ports.FileResult) []list.Item {
	items := make([]list.Item, 0, len(files))
	for _, f := range files {
		items = append(items, item{title: f.Path, desc: fileStatusLine(f)})
	}
	return items
}

func fileStatusLine(f ports.FileResult) string {
	switch {
	case f.ParseErrors > 0:
		return fmt.Sprintf("parse errors: %d", f.ParseErrors)
	case f.Changed:
		return fmt.Sprintf("needs organizing (%d statements -> %d)", f.Statements, f.StatementsOut)
	default:
		return "clean"
	}
}

func countOutstanding(files []ports.FileResult) (changed, parseErrors int) {
	for _, f := range files {
		if f.Changed {
			changed++
		}
		parseErrors += f.ParseErrors
	}
	return changed, parseErrors
}

func mergeFileResults(existing, incoming []ports.FileResult) []ports.FileResult {
	byPath := make(map[string]ports.FileResult, len(existing)+len(incoming))
	for _, f := range existing {
		byPath[f.Path] = f
	}
	for _, f := range incoming {
		byPath[f.Path] = f
	}

	out := make([]ports.FileResult, 0, len(byPath))
	for _, p := range util.SortedStringKeys(byPath) {
		out = append(out, byPath[p])
	}
	return out
}

func refreshPreview(m model) model {
	if m.svc == nil || m.preview.Path == "" {
		return m
	}
	res, err := m.svc.OrganizeFile(context.Background(), m.preview.Path, false)
	if err != nil {
		m.previewErr = err.Error()
		m.hasPreview = false
		return m
	}
	m.preview = res
	m.previewErr = ""
	return m
}
