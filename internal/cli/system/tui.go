package system

import (
	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/logger"
	"github.com/losebird/lifelog-ai/internal/storage"
	"github.com/losebird/lifelog-ai/internal/tui"
)

type TuiCmd struct {
	NoWatch bool `help:"Do not reload when the data file changes on disk."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// Perform automatic backup on TUI startup (after successful load)
	ctx.PerformAutomaticBackup()

	var watchPath string
	if !c.NoWatch && ctx.Config.Storage.Backend == string(storage.BackendJSON) {
		watchPath = ctx.Backend.GetConfigPath()
	}
	logger.Debug("Starting dashboard", "watch", watchPath)

	return tui.Run(ctx.Ctx, tui.Options{
		Store:    ctx.Store,
		Enricher: ctx.Enricher,
		Now:      ctx.Now,
	}, watchPath)
}
