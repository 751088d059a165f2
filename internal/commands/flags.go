// Package commands implements the gymdesk CLI commands.
package commands

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/javiercm/gymdesk/internal/api"
	"github.com/javiercm/gymdesk/internal/core/config"
	"github.com/javiercm/gymdesk/internal/core/notify"
	"github.com/javiercm/gymdesk/internal/core/session"
)

// Flags holds the global flag values and the state built from them in
// the Before hook.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands.
	Config *config.Config
}

// App bundles the wired components every command operates on.
type App struct {
	Client  *api.Client
	Session *session.Manager
	Notify  *notify.Store
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "gymdesk", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gymdesk")
}

// DefaultLogFile returns the default log file path using the system's
// state directory.
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "gymdesk", "gymdesk.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "gymdesk", "gymdesk.log")
	}

	return filepath.Join(home, ".local", "state", "gymdesk", "gymdesk.log")
}
