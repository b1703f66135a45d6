package azure

import (
	"context"
	"fmt"

	"shipctl/internal/runner"
)

// InstallCommand installs the Azure CLI through pip.
func InstallCommand() runner.Command {
	return runner.Command{Name: Pip, Args: []string{"install", "azure-cli"}}
}

// EnsureCLI makes sure `az` is on PATH, installing it with pip when it is not.
// Every failure is reported with exit status 1.
func (c *Client) EnsureCLI(ctx context.Context) error {
	if c.runner.LookPath(CLI) {
		return nil
	}

	c.console.Message("Azure CLI not found. Attempting install via PIP...")

	if !c.runner.LookPath(Pip) {
		msg := fmt.Sprintf("PIP is required - %s", PythonInstallerURL)
		c.console.Error(msg)
		return runner.Fail(msg, nil)
	}

	result, err := c.runner.Run(ctx, InstallCommand())
	if result.Code != 0 || err != nil {
		msg := "Failed to install azure cli via pip"
		c.console.Error(msg)
		return runner.Fail(msg, err)
	}

	c.console.Success(" - Successfully installed Azure CLI")
	return nil
}
