package view

import (
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/budgetwise/internal/engine"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// SnapshotMsg carries engine state pushed by a subscription.
type SnapshotMsg struct {
	engine.Snapshot
}

// opMsg reports the result of an engine mutation started from a view.
type opMsg struct {
	status string
	err    error
}

// committed reports a mutation the backend accepted. A failed reload is
// shown next to the status rather than as an error.
func committed(status string, err error) opMsg {
	if errors.Is(err, engine.ErrStale) {
		slog.Warn("view may be out of date", "error", err)
		return opMsg{status: status + " (list may be out of date, press r)"}
	}

	return opMsg{status: status}
}
