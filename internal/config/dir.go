// Package config resolves flakegen's configuration directory and settings.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user configuration directory.
const appName = "flakegen"

// Dir returns the flakegen configuration directory.
//
// Resolution:
//   - $FLAKEGEN_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/flakegen if set (respects XDG on any platform)
//   - %AppData%/flakegen on Windows
//   - ~/.config/flakegen on macOS and Linux
func Dir() string {
	if dir := os.Getenv("FLAKEGEN_CONFIG_HOME"); dir != "" {
		return dir
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// GlobalTemplatesDir returns the user-wide template directory, or "" when no
// configuration directory can be determined.
func GlobalTemplatesDir() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "templates")
}

// ProjectTemplatesDir returns the project-local template directory relative
// to root.
func ProjectTemplatesDir(root string) string {
	return filepath.Join(root, ".flakegen", "templates")
}
