package webpack

import (
	"context"
	"fmt"
	"os"

	"shipctl/internal/console"
	"shipctl/internal/dirstack"
	"shipctl/internal/paths"
	"shipctl/internal/runner"
)

var (
	installCmd = runner.Command{Name: "npm", Args: []string{"install"}}
	buildCmd   = runner.Command{Name: "npm", Args: []string{"run", "build"}}
)

// Publisher builds the frontend project into its publish folder.
type Publisher struct {
	runner   runner.Runner
	console  *console.Console
	dirs     *dirstack.Stack
	frontend paths.Frontend

	removeAll func(string) error
}

// NewPublisher creates a Publisher.
func NewPublisher(r runner.Runner, c *console.Console, dirs *dirstack.Stack, f paths.Frontend) *Publisher {
	return &Publisher{
		runner:    r,
		console:   c,
		dirs:      dirs,
		frontend:  f,
		removeAll: os.RemoveAll,
	}
}

// Description is the one-line help text for the publish command.
func Description() string {
	return fmt.Sprintf("Publishes the frontend application (via %s and %s)", installCmd, buildCmd)
}

// Clean removes the frontend publish folder.
func (p *Publisher) Clean() error {
	dir := p.frontend.PublishDir()
	p.console.Messagef("Cleaning frontend build directory '%s'...", dir)
	if err := p.removeAll(dir); err != nil {
		p.console.Error("Failed to delete frontend build directory")
		return runner.Fail(fmt.Sprintf("clean %s", dir), err)
	}
	p.console.Success(" - Successfully cleaned frontend build directory")
	return nil
}

// Publish cleans the publish folder, then installs dependencies and builds from
// inside the frontend project. The working directory is always restored.
func (p *Publisher) Publish(ctx context.Context) error {
	if err := p.Clean(); err != nil {
		return err
	}
	p.console.NewLine()

	return p.dirs.Within(p.frontend.ProjectDir(), func() error {
		p.console.Messagef("Installing frontend dependencies (via %s)...", installCmd)
		result, err := p.runner.Run(ctx, installCmd)
		if err := runner.Check(result, err, "npm install failed"); err != nil {
			p.console.Error("Failed to install frontend dependencies")
			return err
		}

		p.console.Messagef("Publishing frontend (via %s)...", buildCmd)
		result, err = p.runner.Run(ctx, buildCmd)
		if err := runner.Check(result, err, "npm run build failed"); err != nil {
			p.console.Error("Failed to publish frontend")
			return err
		}

		p.console.Success(" - Frontend published")
		return nil
	})
}
