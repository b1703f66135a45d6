package azure

import (
	"context"
	"fmt"

	"shipctl/internal/console"
	"shipctl/internal/runner"
)

const (
	// CLI is the Azure command line binary.
	CLI = "az"
	// Pip installs the Azure CLI when it is missing.
	Pip = "pip"
	// PythonInstallerURL is offered when pip itself is missing.
	PythonInstallerURL = "https://www.python.org/ftp/python/3.7.4/python-3.7.4-amd64.exe"

	// RecursiveFlag is appended to the copy command for folder uploads.
	RecursiveFlag = "--recursive"

	masked = "****"
)

// Client wraps the `az` invocations a deploy needs.
type Client struct {
	runner  runner.Runner
	console *console.Console
}

// NewClient creates a Client.
func NewClient(r runner.Runner, c *console.Console) *Client {
	return &Client{runner: r, console: c}
}

// CopyCommand builds `az storage copy` for the given source and destination.
// The source is quoted in the displayed form; it is passed verbatim to az so a
// trailing wildcard is expanded by the storage CLI, not a shell.
func CopyCommand(source, destination string, recursive bool) runner.Command {
	args := []string{"storage", "copy", "-s", source, "-d", destination}
	display := fmt.Sprintf(`%s storage copy -s "%s" -d %s`, CLI, source, destination)
	if recursive {
		args = append(args, RecursiveFlag)
		display += " " + RecursiveFlag
	}
	return runner.Command{Name: CLI, Args: args, Display: display}
}

// UserLoginCommand logs in with account credentials.
func UserLoginCommand(username, secret string) runner.Command {
	return runner.Command{
		Name:    CLI,
		Args:    []string{"login", "-u", username, "-p", secret},
		Display: fmt.Sprintf("%s login -u %s -p %s", CLI, username, masked),
	}
}

// ServicePrincipalLoginCommand logs in as a service principal.
func ServicePrincipalLoginCommand(clientID, tenantID, secret string) runner.Command {
	return runner.Command{
		Name:    CLI,
		Args:    []string{"login", "--service-principal", "-u", clientID, "--tenant", tenantID, "-p", secret},
		Display: fmt.Sprintf("%s login --service-principal -u %s --tenant %s -p %s", CLI, clientID, tenantID, masked),
	}
}

// LogoutCommand ends the current az session.
func LogoutCommand() runner.Command {
	return runner.Command{Name: CLI, Args: []string{"logout"}}
}

// LoginUser authenticates with a username and password.
func (c *Client) LoginUser(ctx context.Context, username, secret string) error {
	c.console.Messagef("Logging into Azure as %s...", username)
	return c.login(ctx, UserLoginCommand(username, secret))
}

// LoginServicePrincipal authenticates with a service principal.
func (c *Client) LoginServicePrincipal(ctx context.Context, clientID, tenantID, secret string) error {
	c.console.Messagef("Logging into Azure with service principal %s...", clientID)
	return c.login(ctx, ServicePrincipalLoginCommand(clientID, tenantID, secret))
}

func (c *Client) login(ctx context.Context, cmd runner.Command) error {
	result, err := c.runner.Run(ctx, cmd)
	if err := runner.Check(result, err, "azure login failed"); err != nil {
		c.console.Error(" - Failed to login to Azure")
		return err
	}
	c.console.Success(" - Successfully logged into Azure")
	return nil
}

// Logout ends the az session.
func (c *Client) Logout(ctx context.Context) error {
	c.console.Message("Logging out of Azure...")
	result, err := c.runner.Run(ctx, LogoutCommand())
	if err := runner.Check(result, err, "azure logout failed"); err != nil {
		c.console.Error(" - Failed to logout of Azure")
		return err
	}
	c.console.Success(" - Successfully logged out of Azure")
	return nil
}

// Copy uploads source to destination with `az storage copy`.
func (c *Client) Copy(ctx context.Context, source, destination string, recursive bool) error {
	cmd := CopyCommand(source, destination, recursive)
	c.console.Message("Copying local build artifacts to Azure Storage...")
	c.console.Detail("Source path: " + source)
	c.console.Detail("Destination path: " + destination)
	c.console.Detail("Command: " + cmd.String())

	result, err := c.runner.Run(ctx, cmd)
	if err := runner.Check(result, err, "azure storage copy failed"); err != nil {
		c.console.Error(" - Failed to deploy to Azure Storage")
		return err
	}
	return nil
}
