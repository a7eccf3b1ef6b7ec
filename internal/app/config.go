package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config controls runtime behavior for the TUI app.
type Config struct {
	LogPath    string
	DataDir    string
	CatalogDir string
	ASCIIOnly  bool
	Debug      bool
	UI         UIConfig
	Run        RunConfig
}

type UIConfig struct {
	MotionLevel string
	MouseScope  string
}

type RunConfig struct {
	Interpreter    string
	TimeoutSeconds int
}

func DefaultConfig() Config {
	return Config{
		CatalogDir: "catalog",
		UI: UIConfig{
			MotionLevel: "full",
			MouseScope:  "scoped",
		},
		Run: RunConfig{
			Interpreter:    "python3",
			TimeoutSeconds: 10,
		},
	}
}

func (c *Config) Validate() error {
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}
	switch c.UI.MouseScope {
	case "", "off", "scoped", "full":
	default:
		return fmt.Errorf("invalid ui mouse scope %q", c.UI.MouseScope)
	}
	if c.UI.MouseScope == "" {
		c.UI.MouseScope = "scoped"
	}

	if c.Run.Interpreter == "" {
		c.Run.Interpreter = "python3"
	}
	if c.Run.TimeoutSeconds <= 0 {
		c.Run.TimeoutSeconds = 10
	}

	if c.CatalogDir == "" {
		c.CatalogDir = "catalog"
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "codeaid")
	}

	return nil
}
