// Package runnertest provides a recording Runner for tests.
package runnertest

import (
	"context"
	"strings"

	"shipctl/internal/runner"
)

// MockRunner records every command it is asked to run.
type MockRunner struct {
	Cmds []string
	// FailOnCmd makes any command containing this substring exit with FailCode.
	FailOnCmd string
	FailCode  int
	// Missing lists binaries LookPath reports as absent.
	Missing []string
	// OnRun, when set, is called before a command is recorded.
	OnRun func(cmd runner.Command)
}

func (m *MockRunner) Run(_ context.Context, cmd runner.Command) (runner.ProcessResult, error) {
	if m.OnRun != nil {
		m.OnRun(cmd)
	}
	line := cmd.String()
	m.Cmds = append(m.Cmds, line)

	result := runner.ProcessResult{Command: line}
	if m.FailOnCmd != "" && strings.Contains(line, m.FailOnCmd) {
		result.Code = m.FailCode
		if result.Code == 0 {
			result.Code = 1
		}
	}
	return result, nil
}

func (m *MockRunner) LookPath(name string) bool {
	for _, missing := range m.Missing {
		if missing == name {
			return false
		}
	}
	return true
}

// Count returns how many recorded commands contain substr.
func (m *MockRunner) Count(substr string) int {
	n := 0
	for _, c := range m.Cmds {
		if strings.Contains(c, substr) {
			n++
		}
	}
	return n
}

// Index returns the position of the first recorded command containing substr, or -1.
func (m *MockRunner) Index(substr string) int {
	for i, c := range m.Cmds {
		if strings.Contains(c, substr) {
			return i
		}
	}
	return -1
}
