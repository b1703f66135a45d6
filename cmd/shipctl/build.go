package main

import (
	"github.com/spf13/cobra"

	"shipctl/internal/dotnet"
	"shipctl/internal/paths"
	"shipctl/internal/webpack"
)

func newDotnetCmd(a *app) *cobra.Command {
	dotnetCmd := &cobra.Command{
		Use:   "dotnet",
		Short: "Build the dotnet solution",
	}

	var output string
	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: dotnet.Description(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dotnet().Publish(cmd.Context(), output)
		},
	}
	publishCmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default: the solution's release folder)")

	var cleanOutput string
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Removes the dotnet release directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dotnet().Clean(cleanOutput)
		},
	}
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "Directory to remove (default: the solution's release folder)")

	dotnetCmd.AddCommand(publishCmd, cleanCmd)
	return dotnetCmd
}

func (a *app) dotnet() *dotnet.Publisher {
	return dotnet.NewPublisher(a.runner, a.console, a.dirs, paths.NewDotnet(".", a.cfg.Dotnet))
}

func newWebpackCmd(a *app) *cobra.Command {
	webpackCmd := &cobra.Command{
		Use:   "webpack",
		Short: "Build the webpack frontend",
	}

	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: webpack.Description(),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, publisher, _ := a.frontend()
			return publisher.Publish(cmd.Context())
		},
	}

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Removes the frontend build directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, publisher, _ := a.frontend()
			return publisher.Clean()
		},
	}

	webpackCmd.AddCommand(publishCmd, cleanCmd)
	return webpackCmd
}
