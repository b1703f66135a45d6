package deployer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"shipctl/internal/console"
	"shipctl/internal/runner"
)

// SFTPOptions holds the raw `deploy sftp` arguments
type SFTPOptions struct {
	Host      string // SSH alias or hostname
	RemoteDir string
	Source    string // Glob; empty = DefaultSource
	Recursive bool
	PublicURL string
	Publish   bool
	Webpack   bool

	DefaultSource string
}

// Validate checks every argument and returns the resolved options
func (o SFTPOptions) Validate() (SFTPOptions, error) {
	var errs problems

	if o.Host == "" {
		errs.add("--host is required")
	}
	if o.RemoteDir == "" {
		errs.add("--remote-dir is required")
	} else if !strings.HasPrefix(o.RemoteDir, "/") {
		errs.add("--remote-dir must be an absolute path")
	}

	if err := errs.err(); err != nil {
		return SFTPOptions{}, err
	}

	resolved := o
	if resolved.Source == "" {
		resolved.Source = o.DefaultSource
	}
	return resolved, nil
}

// SFTP deploys build artifacts to a host over SFTP
type SFTP struct {
	connect   UploaderFactory
	publisher FrontendPublisher
	env       PublicURLWriter
	console   *console.Console
}

// NewSFTP creates an SFTP deployer
func NewSFTP(connect UploaderFactory, publisher FrontendPublisher, env PublicURLWriter, c *console.Console) *SFTP {
	return &SFTP{
		connect:   connect,
		publisher: publisher,
		env:       env,
		console:   c,
	}
}

// Description is the one-line help text for the command
func (d *SFTP) Description() string {
	return "Publish build artifacts to a remote host over SFTP"
}

// Run executes the deployment. The connection is closed on every path once opened.
func (d *SFTP) Run(ctx context.Context, opts SFTPOptions) error {
	cfg, err := opts.Validate()
	if err != nil {
		report(d.console, err)
		return err
	}

	if cfg.PublicURL != "" {
		if err := d.env.ConfigurePublicURL(cfg.PublicURL); err != nil {
			return err
		}
	}
	if cfg.Publish && cfg.Webpack {
		if err := d.publisher.Publish(ctx); err != nil {
			return err
		}
	}

	// Expand before connecting so an empty build fails fast
	matches, err := doublestar.FilepathGlob(cfg.Source)
	if err != nil {
		d.console.Error(fmt.Sprintf("Invalid source pattern '%s'", cfg.Source))
		return runner.Fail("expand source", err)
	}
	if len(matches) == 0 {
		d.console.Error(fmt.Sprintf("No files match source '%s'", cfg.Source))
		return runner.Fail("expand source", fmt.Errorf("no matches for %s", cfg.Source))
	}

	d.console.Messagef("Connecting to %s...", cfg.Host)
	up, err := d.connect(cfg.Host)
	if err != nil {
		d.console.Error(" - Failed to resolve host")
		return runner.Fail("resolve host", err)
	}
	if err := up.Connect(); err != nil {
		d.console.Error(" - Failed to connect")
		return runner.Fail("connect", err)
	}
	defer func() {
		if closeErr := up.Close(); closeErr != nil {
			slog.Warn("close sftp connection", "error", closeErr)
		}
	}()

	d.console.Message("Copying local build artifacts over SFTP...")
	d.console.Detail("Source path: " + cfg.Source)
	d.console.Detail("Destination path: " + cfg.Host + ":" + cfg.RemoteDir)

	if err := up.MkdirAll(cfg.RemoteDir); err != nil {
		d.console.Error(" - Failed to create remote directory")
		return runner.Fail("mkdir "+cfg.RemoteDir, err)
	}

	uploaded := 0
	for _, local := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := d.uploadOne(up, local, cfg)
		if err != nil {
			d.console.Error(fmt.Sprintf(" - Failed to upload %s", local))
			return runner.Fail("upload "+local, err)
		}
		uploaded += n
	}

	d.console.Detail(fmt.Sprintf("Uploaded %d file(s)", uploaded))
	d.console.NewLine()
	d.console.Success(fmt.Sprintf("Application successfully deployed to %s!", cfg.Host))
	return nil
}

func (d *SFTP) uploadOne(up Uploader, local string, cfg SFTPOptions) (int, error) {
	info, err := os.Stat(local)
	if err != nil {
		return 0, err
	}
	remote := path.Join(cfg.RemoteDir, filepath.Base(local))

	if !info.IsDir() {
		return 1, up.Upload(local, remote)
	}
	if !cfg.Recursive {
		d.console.Detail(fmt.Sprintf("Skipping directory %s (use --recursive)", local))
		return 0, nil
	}
	return up.UploadDir(local, remote)
}
