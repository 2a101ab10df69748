package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/config"
	"github.com/losebird/lifelog-ai/internal/storage"
)

type InitCmd struct {
	Force    bool `help:"Force reset by deleting the existing data file before initialization."`
	NoConfig bool `help:"Do not write a default config file."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if !c.NoConfig && ctx.Config.File == "" {
		path, err := config.WriteDefault(ctx.Config.Dir)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote default config to: %s\n", path)
	}

	if c.Force && ctx.Config.Storage.Backend != string(storage.BackendPostgres) {
		dataPath := ctx.Backend.GetConfigPath()
		if _, err := os.Stat(dataPath); err == nil {
			// Close first to release the SQLite file handle
			if err := ctx.Backend.Close(); err != nil {
				return fmt.Errorf("failed to close existing storage: %w", err)
			}
			if err := os.Remove(dataPath); err != nil {
				return fmt.Errorf("failed to delete existing data: %w", err)
			}
			fmt.Printf("Deleted existing data at: %s\n", dataPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing data: %w", err)
		}
	}

	if err := ctx.Backend.Init(); err != nil {
		if errors.Is(err, storage.ErrAlreadyInitialized) {
			fmt.Printf("lifelog storage already initialized at: %s\n", ctx.Backend.GetConfigPath())
			return nil
		}
		return err
	}
	fmt.Printf("Initialized lifelog storage at: %s\n", ctx.Backend.GetConfigPath())
	return nil
}
