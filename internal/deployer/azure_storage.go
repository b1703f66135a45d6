package deployer

import (
	"context"
	"log/slog"

	"shipctl/internal/console"
	"shipctl/internal/runner"
)

// AzureStorageOptions holds the raw `deploy azure-storage` arguments
type AzureStorageOptions struct {
	ClientID    string
	TenantID    string
	Username    string
	Secret      string
	Destination string
	Source      string // Empty = DefaultSource
	Recursive   bool
	PublicURL   string // Optional, written to the frontend env before publishing
	Publish     bool
	Webpack     bool

	DefaultSource string
	// ReadSecret, when set, supplies the secret once every other argument is valid
	ReadSecret func() (string, error)
}

// Validate checks every argument and returns the resolved options, or a
// *ValidationError listing all problems at once
func (o AzureStorageOptions) Validate() (AzureStorageOptions, error) {
	var errs problems

	missingServicePrincipal := o.ClientID == "" || o.TenantID == ""
	if o.Username == "" && missingServicePrincipal {
		errs.add("when --client-id or --tenant-id not provided, --username is required")
	}
	if o.Secret == "" && o.ReadSecret == nil {
		errs.add("--secret is required")
	}
	if o.Destination == "" {
		errs.add("--destination is required")
	}

	if err := errs.err(); err != nil {
		return AzureStorageOptions{}, err
	}

	resolved := o
	if resolved.Source == "" {
		resolved.Source = o.DefaultSource
	}
	return resolved, nil
}

// usesAccount reports whether login should use username/password
func (o AzureStorageOptions) usesAccount() bool {
	return o.Username != ""
}

// AzureStorage deploys build artifacts to an Azure Storage container
type AzureStorage struct {
	azure     AzureCLI
	publisher FrontendPublisher
	env       PublicURLWriter
	console   *console.Console
}

// NewAzureStorage creates an AzureStorage deployer
func NewAzureStorage(az AzureCLI, publisher FrontendPublisher, env PublicURLWriter, c *console.Console) *AzureStorage {
	return &AzureStorage{
		azure:     az,
		publisher: publisher,
		env:       env,
		console:   c,
	}
}

// Description is the one-line help text for the command
func (d *AzureStorage) Description() string {
	return "Publish build artifacts to Azure Storage"
}

// Run executes the deployment. Steps run strictly in order and the first
// failure is returned; a failed copy still logs out before returning.
func (d *AzureStorage) Run(ctx context.Context, opts AzureStorageOptions) error {
	// 1. Arguments, then tooling
	cfg, err := opts.Validate()
	if err != nil {
		report(d.console, err)
		return err
	}
	if cfg.Secret == "" {
		secret, err := cfg.ReadSecret()
		if err != nil {
			d.console.Error("Failed to read secret")
			return runner.Fail("read secret", err)
		}
		if secret == "" {
			err := &ValidationError{Problems: []string{"--secret is required"}}
			report(d.console, err)
			return err
		}
		cfg.Secret = secret
	}
	if err := d.azure.EnsureCLI(ctx); err != nil {
		return err
	}

	// 2. Public URL must be in place before the bundler runs
	if cfg.PublicURL != "" {
		if err := d.env.ConfigurePublicURL(cfg.PublicURL); err != nil {
			return err
		}
	}

	// 3. Local publish
	if cfg.Publish && cfg.Webpack {
		if err := d.publisher.Publish(ctx); err != nil {
			return err
		}
	}

	// 4. Login
	if cfg.usesAccount() {
		err = d.azure.LoginUser(ctx, cfg.Username, cfg.Secret)
	} else {
		err = d.azure.LoginServicePrincipal(ctx, cfg.ClientID, cfg.TenantID, cfg.Secret)
	}
	if err != nil {
		return err
	}

	// 5. Copy; never leave the session behind
	if err := d.azure.Copy(ctx, cfg.Source, cfg.Destination, cfg.Recursive); err != nil {
		if logoutErr := d.azure.Logout(ctx); logoutErr != nil {
			slog.Warn("logout after failed copy", "error", logoutErr)
		}
		return err
	}

	// 6. Logout
	if err := d.azure.Logout(ctx); err != nil {
		return err
	}

	d.console.NewLine()
	d.console.Success("Application successfully deployed to Azure Storage!")
	return nil
}
