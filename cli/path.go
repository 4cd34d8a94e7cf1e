package cli

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardnew/cose/pkg"
)

// baseConfig is the base name of the configuration file and the key of its
// top-level association.
const baseConfig = "config"

// dirMode is the permission mode of created directories.
const dirMode os.FileMode = 0o700

// appName returns the name used for the configuration and cache
// directories: the base name of the executable without extension or leading
// dots. Debugger builds ("__debug_bin*") use [pkg.Name].
var appName = sync.OnceValue(
	func() string {
		exe, err := os.Executable()
		if err != nil {
			exe = os.Args[0]
		}

		name := filepath.Base(exe)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		name = strings.TrimLeft(name, ".")

		if name == "" || strings.HasPrefix(name, "__debug_bin") {
			return pkg.Name
		}

		return name
	},
)

// userDir joins appName to the directory returned by locate, falling back to
// fallback under the home directory, and finally the working directory.
func userDir(locate func() (string, error), fallback string) string {
	dir, err := locate()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, appName())
}

// configDir returns the directory holding the configuration files.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the directory holding the REPL history and profiles.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath joins elem to [configDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, dirMode); err != nil {
			return err
		}
	}

	return nil
}
