package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"usetidy/internal/core/ports"
	"usetidy/internal/data/history"
)

func runUI(svc ports.OrganizeService, trendReport *history.TrendReport) error {
	m := initialModel(svc, trendReport)
	p := tea.NewProgram(m, tea.WithAltScreen())

	watch := svc.WatchService()
	if err := watch.Subscribe(context.Background(), func(update ports.WatchUpdate) {
		p.Send(updateMsg{result: update.Result, trigger: update.Trigger, partial: true})
	}); err != nil {
		return err
	}

	_, err := p.Run()
	return err
}
