package dirstack

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrEmpty is returned by Pop when nothing has been pushed.
var ErrEmpty = errors.New("directory stack is empty")

// Stack records working-directory changes so they can be undone in order.
// It is not safe for concurrent use; the process working directory is global.
type Stack struct {
	dirs []string

	getwd func() (string, error)
	chdir func(string) error
}

// New creates an empty Stack operating on the process working directory.
func New() *Stack {
	return &Stack{getwd: os.Getwd, chdir: os.Chdir}
}

// Push records the current directory and changes into path.
func (s *Stack) Push(path string) error {
	cwd, err := s.getwd()
	if err != nil {
		return fmt.Errorf("pushd %s: %w", path, err)
	}
	if err := s.chdir(path); err != nil {
		return fmt.Errorf("pushd %s: %w", path, err)
	}
	s.dirs = append(s.dirs, cwd)
	slog.Debug("pushd", "from", cwd, "to", path, "depth", len(s.dirs))
	return nil
}

// Pop restores the most recently pushed directory.
func (s *Stack) Pop() error {
	if len(s.dirs) == 0 {
		return ErrEmpty
	}
	prev := s.dirs[len(s.dirs)-1]
	if err := s.chdir(prev); err != nil {
		return fmt.Errorf("popd %s: %w", prev, err)
	}
	s.dirs = s.dirs[:len(s.dirs)-1]
	slog.Debug("popd", "to", prev, "depth", len(s.dirs))
	return nil
}

// Len returns the number of directories currently pushed.
func (s *Stack) Len() int {
	return len(s.dirs)
}

// Within runs fn with path as the working directory and restores the previous
// directory afterwards, whether fn succeeds, fails, or panics.
func (s *Stack) Within(path string, fn func() error) (err error) {
	if err := s.Push(path); err != nil {
		return err
	}
	defer func() {
		if popErr := s.Pop(); popErr != nil && err == nil {
			err = popErr
		}
	}()
	return fn()
}
