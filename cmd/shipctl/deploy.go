package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"shipctl/internal/azure"
	"shipctl/internal/deployer"
	"shipctl/internal/envfile"
	"shipctl/internal/paths"
	"shipctl/internal/webpack"
)

// secretPrompt is the --secret value that asks for the secret interactively
const secretPrompt = "-"

// artifactFlags are shared by every deploy target
type artifactFlags struct {
	source    string
	recursive bool
	publicURL string
	publish   bool
	webpack   bool
}

func (f *artifactFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.source, "source", "s", "", "Source glob to deploy (default: the frontend build folder)")
	fs.BoolVarP(&f.recursive, "recursive", "r", false, "Copy sub folders of the source")
	fs.StringVar(&f.publicURL, "public-url", "", "Public URL written to the frontend env before publishing")
	fs.BoolVarP(&f.publish, "publish", "p", false, "Publish locally before deploying (requires --webpack)")
	fs.BoolVarP(&f.webpack, "webpack", "w", false, "Publish the webpack frontend (requires --publish)")
}

// flagOr returns the flag value when it was set on the command line, else fallback
func flagOr(fs *pflag.FlagSet, name, value, fallback string) string {
	if fs.Changed(name) || fallback == "" {
		return value
	}
	return fallback
}

func boolFlagOr(fs *pflag.FlagSet, name string, value, fallback bool) bool {
	if fs.Changed(name) {
		return value
	}
	return fallback
}

func newDeployCmd(a *app) *cobra.Command {
	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy build artifacts",
	}
	deployCmd.AddCommand(newAzureStorageCmd(a), newSFTPCmd(a))
	return deployCmd
}

// frontend wires the publisher and env writer for the configured frontend project
func (a *app) frontend() (paths.Frontend, *webpack.Publisher, *envfile.Writer) {
	f := paths.NewFrontend(a.cfg.Frontend)
	return f, webpack.NewPublisher(a.runner, a.console, a.dirs, f), envfile.NewWriter(f.ProjectDir(), a.console)
}

func newAzureStorageCmd(a *app) *cobra.Command {
	var (
		opts      deployer.AzureStorageOptions
		artifacts artifactFlags
	)

	cmd := &cobra.Command{
		Use:   "azure-storage",
		Short: "Publish build artifacts to Azure Storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			front, publisher, env := a.frontend()

			if opts.Secret == secretPrompt {
				opts.Secret = ""
				opts.ReadSecret = a.readSecret
			}

			opts.Destination = flagOr(fs, "destination", opts.Destination, a.cfg.Azure.Destination)
			opts.Source = flagOr(fs, "source", artifacts.source, a.cfg.Azure.Source)
			opts.Recursive = boolFlagOr(fs, "recursive", artifacts.recursive, a.cfg.Azure.Recursive)
			opts.PublicURL = artifacts.publicURL
			opts.Publish = artifacts.publish
			opts.Webpack = artifacts.webpack
			opts.DefaultSource = front.DefaultSource()

			az := azure.NewClient(a.runner, a.console)
			return deployer.NewAzureStorage(az, publisher, env, a.console).Run(cmd.Context(), opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.ClientID, "client-id", "c", "", "Service principal client id")
	fs.StringVarP(&opts.TenantID, "tenant-id", "t", "", "Service principal tenant id")
	fs.StringVarP(&opts.Username, "username", "u", "", "Azure account username")
	fs.StringVar(&opts.Secret, "secret", "", `Password or client secret ("-" to prompt)`)
	fs.StringVarP(&opts.Destination, "destination", "d", "", "Absolute URL of the storage container")
	artifacts.register(fs)

	return cmd
}

func newSFTPCmd(a *app) *cobra.Command {
	var (
		opts      deployer.SFTPOptions
		artifacts artifactFlags
	)

	cmd := &cobra.Command{
		Use:   "sftp",
		Short: "Publish build artifacts to a remote host over SFTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			front, publisher, env := a.frontend()

			opts.Host = flagOr(fs, "host", opts.Host, a.cfg.SFTP.Host)
			opts.RemoteDir = flagOr(fs, "remote-dir", opts.RemoteDir, a.cfg.SFTP.RemoteDir)
			opts.Source = artifacts.source
			opts.Recursive = artifacts.recursive
			opts.PublicURL = artifacts.publicURL
			opts.Publish = artifacts.publish
			opts.Webpack = artifacts.webpack
			opts.DefaultSource = front.DefaultSource()

			return deployer.NewSFTP(a.connect, publisher, env, a.console).Run(cmd.Context(), opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.Host, "host", "H", "", "SSH alias from ~/.ssh/config, or a hostname")
	fs.StringVar(&opts.RemoteDir, "remote-dir", "", "Absolute directory on the remote host")
	artifacts.register(fs)

	return cmd
}
