package dotnet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"shipctl/internal/console"
	"shipctl/internal/dirstack"
	"shipctl/internal/paths"
	"shipctl/internal/runner"
)

// Publisher cleans the release directory and runs `dotnet publish` from the
// solution folder.
type Publisher struct {
	runner  runner.Runner
	console *console.Console
	dirs    *dirstack.Stack
	paths   paths.Dotnet

	// removeAll is swapped in tests to simulate cleanup failures.
	removeAll func(string) error
}

// NewPublisher creates a Publisher.
func NewPublisher(r runner.Runner, c *console.Console, dirs *dirstack.Stack, p paths.Dotnet) *Publisher {
	return &Publisher{
		runner:    r,
		console:   c,
		dirs:      dirs,
		paths:     p,
		removeAll: os.RemoveAll,
	}
}

// Command returns the publish invocation for outputDir ("" publishes to the
// project's own default location).
func Command(outputDir string) runner.Command {
	if outputDir == "" {
		return runner.Command{Name: "dotnet", Args: []string{"publish"}}
	}
	return runner.Command{
		Name:    "dotnet",
		Args:    []string{"publish", "-o", outputDir},
		Display: fmt.Sprintf(`dotnet publish -o "%s"`, outputDir),
	}
}

// Description is the one-line help text for the publish command.
func Description() string {
	return fmt.Sprintf("Publishes the dotnet solution from the root of the project (via %s)", Command(""))
}

// Clean removes outputDir, defaulting to the solution's release folder.
func (p *Publisher) Clean(outputDir string) error {
	dir, err := p.resolveOutput(outputDir)
	if err != nil {
		return err
	}

	p.console.Messagef("Cleaning release directory '%s'...", dir)
	if err := p.removeAll(dir); err != nil {
		p.console.Error("Failed to delete output directory")
		return runner.Fail(fmt.Sprintf("clean %s", dir), err)
	}
	p.console.Success(" - Successfully cleaned released directory")
	return nil
}

// Publish cleans outputDir and publishes the solution into it. An empty
// outputDir means the solution's release folder. The working directory is
// restored whether or not the publish succeeds.
func (p *Publisher) Publish(ctx context.Context, outputDir string) error {
	dir, err := p.resolveOutput(outputDir)
	if err != nil {
		return err
	}
	if err := p.Clean(dir); err != nil {
		return err
	}
	p.console.NewLine()

	solutionDir, err := p.paths.SolutionDir()
	if err != nil {
		p.console.Error("Failed to locate dotnet solution")
		return runner.Fail("locate dotnet solution", err)
	}

	return p.dirs.Within(solutionDir, func() error {
		cmd := Command(dir)
		p.console.Messagef("Publishing dotnet solution (via %s)...", cmd)

		result, err := p.runner.Run(ctx, cmd)
		if err := runner.Check(result, err, "dotnet publish failed"); err != nil {
			p.console.Error("Failed to publish dotnet project")
			return err
		}

		p.console.Success(" - Dotnet solution published")
		return nil
	})
}

// resolveOutput returns an absolute directory, so the folder cleaned is the one
// dotnet publishes into from the solution dir.
func (p *Publisher) resolveOutput(outputDir string) (string, error) {
	if outputDir != "" {
		dir, err := filepath.Abs(outputDir)
		if err != nil {
			p.console.Error("Failed to resolve output directory")
			return "", runner.Fail("resolve output directory", err)
		}
		return dir, nil
	}
	dir, err := p.paths.ReleaseDirPath()
	if err != nil {
		p.console.Error("Failed to resolve release directory")
		return "", runner.Fail("resolve release directory", err)
	}
	return dir, nil
}
