// Package filestore reads and writes small JSON state files with atomic
// writes, under the per-user config directory.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options controls file and directory permissions.
type Options struct {
	FilePerm      os.FileMode
	DirectoryPerm os.FileMode
}

func defaultOptions() Options {
	return Options{
		FilePerm:      0o600,
		DirectoryPerm: 0o700,
	}
}

// WriteJSON marshals v as pretty JSON and writes it atomically to path.
func WriteJSON[T any](path string, v T, opt ...Options) error {
	o := mergeOptions(opt...)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), o.DirectoryPerm); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	return atomicWriteFile(path, data, o.FilePerm)
}

// ReadJSON reads path into a T. A missing file is reported with os.ErrNotExist.
func ReadJSON[T any](path string) (T, error) {
	var zero T

	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", path, err)
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return out, nil
}

// Exists reports whether path is a regular file.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// PathCandidates returns state file paths to try, in priority order.
// QW3_ENV adds a local/ or develop/ subfolder.
func PathCandidates(app, filename string) ([]string, error) {
	envFolder, err := EnvFolder()
	if err != nil {
		return nil, err
	}
	return pathCandidatesForEnvFolder(app, filename, envFolder)
}

// Resolve picks the first existing candidate, else the first candidate.
func Resolve(app, filename string) (string, error) {
	candidates, err := PathCandidates(app, filename)
	if err != nil {
		return "", err
	}
	for _, p := range candidates {
		if Exists(p) {
			return p, nil
		}
	}
	return candidates[0], nil
}

// pathCandidatesForEnvFolder: envFolder == "" is the production layout.
func pathCandidatesForEnvFolder(app, filename, envFolder string) ([]string, error) {
	if app == "" {
		return nil, errors.New("app must not be empty")
	}
	if filename == "" {
		return nil, errors.New("filename must not be empty")
	}

	var paths []string
	seen := map[string]bool{}
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	// <home>/.config/<app>/<env?>/<filename>
	joinHomeStyle := func(homeLike string) string {
		dir := filepath.Join(homeLike, ".config", app)
		if envFolder != "" {
			dir = filepath.Join(dir, envFolder)
		}
		return filepath.Join(dir, filename)
	}

	if realHome := os.Getenv("SNAP_REAL_HOME"); realHome != "" {
		add(joinHomeStyle(realHome))
	}
	if home := os.Getenv("HOME"); home != "" {
		add(joinHomeStyle(home))
	}

	if dir, err := os.UserConfigDir(); err == nil {
		baseDir := filepath.Join(dir, app)
		if envFolder != "" {
			baseDir = filepath.Join(baseDir, envFolder)
		}
		add(filepath.Join(baseDir, filename))
	} else if len(paths) == 0 {
		return nil, fmt.Errorf("UserConfigDir: %w", err)
	}

	return paths, nil
}

func mergeOptions(opt ...Options) Options {
	o := defaultOptions()
	if len(opt) == 0 {
		return o
	}
	in := opt[0]
	if in.FilePerm != 0 {
		o.FilePerm = in.FilePerm
	}
	if in.DirectoryPerm != 0 {
		o.DirectoryPerm = in.DirectoryPerm
	}
	return o
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// EnvFolder maps QW3_ENV to a subfolder name.
func EnvFolder() (string, error) {
	raw := strings.TrimSpace(os.Getenv("QW3_ENV"))
	switch strings.ToLower(raw) {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", fmt.Errorf("invalid QW3_ENV %q (allowed: prod, local, dev, empty)", raw)
	}
}
