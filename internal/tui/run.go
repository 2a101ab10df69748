package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/storage"
)

// Run starts the dashboard. When watchPath is set, writes to that file by
// other processes reload the store.
func Run(ctx context.Context, opts Options, watchPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if watchPath != "" {
		store := opts.Store
		err := storage.Watch(ctx, watchPath, constants.WatchDebounce, func() {
			if err := store.Load(ctx); err != nil {
				logger.Debug("Reload after file change skipped", "error", err)
			}
		})
		if err != nil {
			logger.Warn("File watching disabled", "error", err)
		}
	}

	resume := logger.SuspendConsole()
	defer resume()

	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
