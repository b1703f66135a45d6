// Package paths resolves the fixed project directories the build and deploy
// commands operate on.
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"shipctl/internal/config"
)

// ErrNoSolution is returned when no *.sln file exists under the project root.
var ErrNoSolution = errors.New("no dotnet solution (*.sln) found")

// Frontend resolves the webpack project folders.
type Frontend struct {
	Dir      string
	BuildDir string
}

// NewFrontend builds a Frontend resolver from the project config.
func NewFrontend(cfg config.FrontendConfig) Frontend {
	return Frontend{Dir: cfg.Dir, BuildDir: cfg.BuildDir}
}

// ProjectDir is the frontend project's folder, relative to the project root.
func (f Frontend) ProjectDir() string {
	return filepath.ToSlash(f.Dir)
}

// PublishDir is the frontend release folder, always with forward slashes.
func (f Frontend) PublishDir() string {
	return filepath.ToSlash(filepath.Join(f.Dir, f.BuildDir))
}

// DefaultSource is the copy source used when --source is not given.
func (f Frontend) DefaultSource() string {
	return f.PublishDir() + "/*"
}

// Dotnet resolves the dotnet solution folders.
type Dotnet struct {
	// Root is where the solution search starts.
	Root string
	// Solution, when set, skips the search.
	Solution   string
	ReleaseDir string
}

// NewDotnet builds a Dotnet resolver rooted at root.
func NewDotnet(root string, cfg config.DotnetConfig) Dotnet {
	return Dotnet{Root: root, Solution: cfg.SolutionDir, ReleaseDir: cfg.ReleaseDir}
}

// skipDirs are never descended into while looking for a solution.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"bin":          true,
	"obj":          true,
}

// SolutionDir returns the absolute folder holding the solution file.
func (d Dotnet) SolutionDir() (string, error) {
	if d.Solution != "" {
		return filepath.Abs(filepath.Join(d.Root, d.Solution))
	}

	var found string
	err := filepath.WalkDir(d.Root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if p != d.Root && skipDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(p) == ".sln" {
			found = filepath.Dir(p)
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("search solution under %s: %w", d.Root, err)
	}
	if found == "" {
		return "", ErrNoSolution
	}
	return filepath.Abs(found)
}

// ReleaseDirPath returns the absolute release output folder of the solution.
func (d Dotnet) ReleaseDirPath() (string, error) {
	dir, err := d.SolutionDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, d.ReleaseDir), nil
}
