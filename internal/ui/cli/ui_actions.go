package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"usetidy/internal/core/ports"
)

func handleKeyActions(msg tea.KeyMsg, m model) (tea.Model, tea.Cmd) {
	// While the user is typing a filter the letter keys belong to the list.
	if m.fileList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.fileList, cmd = m.fileList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "t":
		m.showTrend = !m.showTrend
		return m, nil
	case "r":
		m.applyStatus = statusStyle.Render("Rescanning...")
		return m, refreshCmd(m.svc)
	case "enter":
		return openPreview(m), nil
	case "esc", "backspace":
		m.hasPreview = false
		m.previewErr = ""
		return m, nil
	case "a":
		return applySelected(m)
	case "A":
		return applyAll(m)
	}

	var cmd tea.Cmd
	m.fileList, cmd = m.fileList.Update(msg)
	return m, cmd
}

func selectedPath(m model) (string, bool) {
	selected, ok := m.fileList.SelectedItem().(item)
	if !ok {
		return "", false
	}
	return selected.title, true
}

func openPreview(m model) model {
	if m.svc == nil {
		return m
	}
	path, ok := selectedPath(m)
	if !ok {
		m.applyStatus = statusStyle.Render("No file selected.")
		return m
	}

	res, err := m.svc.OrganizeFile(context.Background(), path, false)
	if err != nil {
		m.previewErr = err.Error()
		m.hasPreview = false
		return m
	}
	m.preview = res
	m.previewErr = ""
	m.hasPreview = true
	return m
}

func applySelected(m model) (tea.Model, tea.Cmd) {
	if m.svc == nil {
		return m, nil
	}
	path, ok := selectedPath(m)
	if !ok {
		m.applyStatus = statusStyle.Render("No file selected.")
		return m, nil
	}

	res, err := m.svc.OrganizeFile(context.Background(), path, true)
	if err != nil {
		m.applyStatus = errorStyle.Render("Apply failed: " + err.Error())
		return m, nil
	}
	if res.Changed {
		m.applyStatus = statusStyle.Render("Organized " + path)
	} else {
		m.applyStatus = statusStyle.Render("Already tidy: " + path)
	}
	return m, refreshCmd(m.svc)
}

func applyAll(m model) (tea.Model, tea.Cmd) {
	if m.svc == nil {
		return m, nil
	}

	res, err := m.svc.RunOrganize(context.Background(), ports.OrganizeRequest{Write: true})
	if err != nil {
		m.applyStatus = errorStyle.Render("Apply all failed: " + err.Error())
		return m, nil
	}
	m.applyStatus = statusStyle.Render(fmt.Sprintf("Organized %d of %d files", res.FilesChanged, res.FilesScanned))
	return m, func() tea.Msg { return updateMsg{result: res, trigger: "apply"} }
}
