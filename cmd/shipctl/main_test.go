package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipctl/internal/console"
	"shipctl/internal/deployer"
	"shipctl/internal/dirstack"
	"shipctl/internal/runner"
	"shipctl/internal/runner/runnertest"
)

type testApp struct {
	*app
	runner *runnertest.MockRunner
	out    *bytes.Buffer
	errOut *bytes.Buffer
	hosts  []string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		runner: &runnertest.MockRunner{},
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}
	ta.app = &app{
		runner:  ta.runner,
		console: console.New(ta.out, ta.errOut),
		dirs:    dirstack.New(),
		connect: func(alias string) (deployer.Uploader, error) {
			ta.hosts = append(ta.hosts, alias)
			return &fakeUploader{}, nil
		},
		readSecret: func() (string, error) { return "", errors.New("no terminal") },
	}
	return ta
}

// execute runs the command tree with a config file that does not exist unless written
func (ta *testApp) execute(t *testing.T, configYAML string, args ...string) error {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), ".shipctl.yaml")
	if configYAML != "" {
		require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o644))
	}

	cmd := newRootCmd(ta.app)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.ExecuteContext(context.Background())
}

type fakeUploader struct{ uploads int }

func (f *fakeUploader) Connect() error        { return nil }
func (f *fakeUploader) Close() error          { return nil }
func (f *fakeUploader) MkdirAll(string) error { return nil }

func (f *fakeUploader) Upload(string, string) error {
	f.uploads++
	return nil
}

func (f *fakeUploader) UploadDir(string, string) (int, error) {
	return 0, nil
}

func TestDeployAzureStorage_DefaultsFromConfig(t *testing.T) {
	ta := newTestApp(t)
	cfg := "azure:\n  destination: https://cfg.blob.core.windows.net/site\n  recursive: true\n"

	err := ta.execute(t, cfg, "deploy", "azure-storage", "-u", "deployer", "--secret", "s")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"az login -u deployer -p ****",
		`az storage copy -s "frontend/build/*" -d https://cfg.blob.core.windows.net/site --recursive`,
		"az logout",
	}, ta.runner.Cmds)
}

func TestDeployAzureStorage_FlagsOverrideConfig(t *testing.T) {
	ta := newTestApp(t)
	cfg := "azure:\n  destination: https://cfg.blob.core.windows.net/site\n  recursive: true\n"

	err := ta.execute(t, cfg, "deploy", "azure-storage",
		"-u", "deployer", "--secret", "s",
		"-d", "https://flag.blob.core.windows.net/site",
		"--recursive=false",
		"-s", "dist/*",
	)
	require.NoError(t, err)

	assert.Equal(t, 1, ta.runner.Count(`az storage copy -s "dist/*" -d https://flag.blob.core.windows.net/site`))
	assert.Equal(t, 0, ta.runner.Count("--recursive"))
}

func TestDeployAzureStorage_PromptsForSecret(t *testing.T) {
	ta := newTestApp(t)
	ta.readSecret = func() (string, error) { return "hunter2", nil }

	var login []string
	ta.runner.OnRun = func(cmd runner.Command) {
		if len(cmd.Args) > 0 && cmd.Args[0] == "login" {
			login = cmd.Args
		}
	}

	err := ta.execute(t, "", "deploy", "azure-storage",
		"-c", "cid", "-t", "tid", "--secret", "-",
		"-d", "https://acct.blob.core.windows.net/c",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "--service-principal", "-u", "cid", "--tenant", "tid", "-p", "hunter2"}, login)
}

func TestDeployAzureStorage_ReportsProblemsBeforePrompting(t *testing.T) {
	ta := newTestApp(t)
	prompted := false
	ta.readSecret = func() (string, error) { prompted = true; return "hunter2", nil }

	err := ta.execute(t, "", "deploy", "azure-storage", "-u", "deployer", "--secret", "-")

	assert.Equal(t, 1, exitCode(ta.console, err))
	assert.False(t, prompted, "secret requested before argument problems were reported")
	assert.Contains(t, ta.errOut.String(), "--destination is required")
	assert.Empty(t, ta.runner.Cmds)
}

func TestDeployAzureStorage_InvalidArgs(t *testing.T) {
	ta := newTestApp(t)

	err := ta.execute(t, "", "deploy", "azure-storage")

	assert.Equal(t, 1, exitCode(ta.console, err))
	assert.Empty(t, ta.runner.Cmds)
	assert.Equal(t, 3, strings.Count(ta.errOut.String(), "\n"), ta.errOut.String())
}

func TestDeployAzureStorage_PropagatesCopyCode(t *testing.T) {
	ta := newTestApp(t)
	ta.runner.FailOnCmd = "storage copy"
	ta.runner.FailCode = 4

	err := ta.execute(t, "", "deploy", "azure-storage",
		"-u", "deployer", "--secret", "s", "-d", "https://acct.blob.core.windows.net/c")

	assert.Equal(t, 4, exitCode(ta.console, err))
	assert.Equal(t, 1, ta.runner.Count("az logout"))
}

func TestDeploySFTP_HostFromConfig(t *testing.T) {
	ta := newTestApp(t)
	build := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(build, "index.html"), []byte("<html/>"), 0o644))

	cfg := "sftp:\n  host: web01\n  remote_dir: /var/www/site\n"
	err := ta.execute(t, cfg, "deploy", "sftp", "-s", filepath.Join(build, "*"))

	require.NoError(t, err)
	assert.Equal(t, []string{"web01"}, ta.hosts)
	assert.Contains(t, ta.out.String(), "Application successfully deployed to web01!")
}

func TestWebpackClean_UsesConfiguredFrontend(t *testing.T) {
	ta := newTestApp(t)
	frontend := t.TempDir()
	build := filepath.Join(frontend, "dist")
	require.NoError(t, os.MkdirAll(build, 0o755))

	cfg := fmt.Sprintf("frontend:\n  dir: %q\n  build_dir: dist\n", frontend)
	require.NoError(t, ta.execute(t, cfg, "webpack", "clean"))

	_, err := os.Stat(build)
	assert.True(t, os.IsNotExist(err), "expected %s removed", build)
}

func TestInvalidConfig(t *testing.T) {
	ta := newTestApp(t)

	err := ta.execute(t, "sftp:\n  remote_dir: www\n", "webpack", "clean")

	assert.Equal(t, 1, exitCode(ta.console, err))
	assert.Contains(t, ta.errOut.String(), "sftp.remote_dir")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantPrint bool
	}{
		{"success", nil, 0, false},
		{"validation already reported", &deployer.ValidationError{Problems: []string{"--secret is required"}}, 1, false},
		{"process failure already reported", &runner.ExitError{Code: 7, Message: "dotnet publish failed"}, 7, false},
		{"failure with cause", runner.Fail("connect", errors.New("connection refused")), 1, true},
		{"plain error", errors.New("unknown flag: --nope"), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errOut bytes.Buffer
			c := console.New(io.Discard, &errOut)

			assert.Equal(t, tt.wantCode, exitCode(c, tt.err))
			assert.Equal(t, tt.wantPrint, errOut.Len() > 0, errOut.String())
		})
	}
}
