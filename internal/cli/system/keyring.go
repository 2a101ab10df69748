package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/losebird/lifelog-ai/internal/cli"
	"github.com/losebird/lifelog-ai/internal/config"
	"github.com/losebird/lifelog-ai/internal/keyring"
)

// KeyringSetCmd stores a secret in the OS keyring
type KeyringSetCmd struct {
	Secret string `arg:"" enum:"ai-api-key,database-password" help:"Secret to store (ai-api-key|database-password)."`
	Value  string `arg:"" optional:"" help:"Secret value. Prompted for when omitted."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}

	value := cmd.Value
	if value == "" {
		err := huh.NewInput().
			Title(fmt.Sprintf("Enter %s", secret)).
			EchoMode(huh.EchoModePassword).
			Value(&value).
			Run()
		if err != nil {
			return err
		}
	}

	if err := keyring.Set(secret, strings.TrimSpace(value)); err != nil {
		return err
	}
	fmt.Printf("✓ %s stored in OS keyring (%s)\n", secret, keyring.Mask(strings.TrimSpace(value)))
	return nil
}

// KeyringDeleteCmd removes a secret from the OS keyring
type KeyringDeleteCmd struct {
	Secret string `arg:"" enum:"ai-api-key,database-password" help:"Secret to delete (ai-api-key|database-password)."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}
	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", secret)
		}
		return err
	}
	fmt.Printf("✓ %s deleted from OS keyring\n", secret)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Println("✓ OS keyring is available")

	env := map[keyring.Secret]string{
		keyring.APIKey:     config.APIKeyFromEnv(),
		keyring.DBPassword: config.DBPasswordFromEnv(),
	}
	for _, s := range keyring.Names {
		v, err := keyring.Get(s)
		switch {
		case err == nil:
			fmt.Printf("✓ %s is stored in keyring (%s)\n", s, keyring.Mask(v))
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Printf("ℹ No %s stored in keyring\n", s)
		default:
			fmt.Printf("❌ %s: %v\n", s, err)
		}
		if env[s] != "" {
			fmt.Printf("  %s is also set in the environment, which takes precedence\n", s)
		}
	}
	return nil
}
