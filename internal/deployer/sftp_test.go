package deployer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipctl/internal/console"
	"shipctl/internal/runner"
)

// MockUploader records remote operations
type MockUploader struct {
	Connected bool
	Closed    bool
	Dirs      []string
	Uploads   []string
	FailOn    string // fail any upload whose local path contains this
	FailConn  bool
}

func (m *MockUploader) Connect() error {
	if m.FailConn {
		return fmt.Errorf("mock connection failed")
	}
	m.Connected = true
	return nil
}

func (m *MockUploader) Close() error {
	m.Closed = true
	return nil
}

func (m *MockUploader) MkdirAll(dir string) error {
	m.Dirs = append(m.Dirs, dir)
	return nil
}

func (m *MockUploader) Upload(local, remote string) error {
	if m.FailOn != "" && strings.Contains(local, m.FailOn) {
		return fmt.Errorf("mock upload failed: %s", local)
	}
	m.Uploads = append(m.Uploads, filepath.Base(local)+" -> "+remote)
	return nil
}

func (m *MockUploader) UploadDir(local, remote string) (int, error) {
	m.Uploads = append(m.Uploads, filepath.Base(local)+"/ -> "+remote)
	return 2, nil
}

// buildTree creates frontend/build with two files and one sub folder
func buildTree(t *testing.T) string {
	t.Helper()
	build := filepath.Join(t.TempDir(), "frontend", "build")
	require.NoError(t, os.MkdirAll(filepath.Join(build, "static"), 0o755))
	for _, f := range []string{"index.html", "app.js", "static/logo.svg"} {
		require.NoError(t, os.WriteFile(filepath.Join(build, f), []byte(f), 0o644))
	}
	return build
}

func newSFTPFixture(up *MockUploader) (*SFTP, *MockPublisher, *[]string) {
	var hosts []string
	factory := func(alias string) (Uploader, error) {
		hosts = append(hosts, alias)
		return up, nil
	}
	pub := &MockPublisher{}
	d := NewSFTP(factory, pub, &MockEnvWriter{}, console.New(io.Discard, io.Discard))
	return d, pub, &hosts
}

func TestSFTPOptions_Validate(t *testing.T) {
	_, err := SFTPOptions{}.Validate()
	v, ok := err.(*ValidationError)
	require.True(t, ok, "expected *ValidationError, got %v", err)
	assert.Equal(t, []string{"--host is required", "--remote-dir is required"}, v.Problems)

	_, err = SFTPOptions{Host: "web", RemoteDir: "www"}.Validate()
	assert.Error(t, err)

	cfg, err := SFTPOptions{Host: "web", RemoteDir: "/var/www", DefaultSource: "frontend/build/*"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, "frontend/build/*", cfg.Source)
}

func TestSFTP_UploadsFilesSkipsDirsWithoutRecursive(t *testing.T) {
	build := buildTree(t)
	up := &MockUploader{}
	d, _, hosts := newSFTPFixture(up)

	err := d.Run(context.Background(), SFTPOptions{
		Host:      "web01",
		RemoteDir: "/var/www",
		Source:    filepath.Join(build, "*"),
	})
	require.NoError(t, err)

	sort.Strings(up.Uploads)
	assert.Equal(t, []string{"app.js -> /var/www/app.js", "index.html -> /var/www/index.html"}, up.Uploads)
	assert.Equal(t, []string{"/var/www"}, up.Dirs)
	assert.Equal(t, []string{"web01"}, *hosts)
	assert.True(t, up.Closed)
}

func TestSFTP_RecursiveUploadsDirs(t *testing.T) {
	build := buildTree(t)
	up := &MockUploader{}
	d, _, _ := newSFTPFixture(up)

	err := d.Run(context.Background(), SFTPOptions{
		Host:      "web01",
		RemoteDir: "/var/www",
		Source:    filepath.Join(build, "*"),
		Recursive: true,
	})
	require.NoError(t, err)
	assert.Contains(t, up.Uploads, "static/ -> /var/www/static")
}

func TestSFTP_UploadFailureClosesConnection(t *testing.T) {
	build := buildTree(t)
	up := &MockUploader{FailOn: "index.html"}
	d, _, _ := newSFTPFixture(up)

	err := d.Run(context.Background(), SFTPOptions{
		Host:      "web01",
		RemoteDir: "/var/www",
		Source:    filepath.Join(build, "index.html"),
	})

	assert.Equal(t, 1, runner.ExitCode(err))
	assert.True(t, up.Closed)
}

func TestSFTP_NoMatchesNeverConnects(t *testing.T) {
	up := &MockUploader{}
	d, _, hosts := newSFTPFixture(up)

	err := d.Run(context.Background(), SFTPOptions{
		Host:      "web01",
		RemoteDir: "/var/www",
		Source:    filepath.Join(t.TempDir(), "missing", "*"),
	})

	assert.Error(t, err)
	assert.Empty(t, *hosts)
	assert.False(t, up.Connected)
}

func TestSFTP_ConnectFailure(t *testing.T) {
	build := buildTree(t)
	up := &MockUploader{FailConn: true}
	d, _, _ := newSFTPFixture(up)

	err := d.Run(context.Background(), SFTPOptions{
		Host:      "web01",
		RemoteDir: "/var/www",
		Source:    filepath.Join(build, "*"),
	})

	assert.Equal(t, 1, runner.ExitCode(err))
	assert.Empty(t, up.Uploads)
	assert.False(t, up.Closed)
}

func TestSFTP_PublishesFirst(t *testing.T) {
	build := buildTree(t)
	up := &MockUploader{}
	d, pub, _ := newSFTPFixture(up)

	err := d.Run(context.Background(), SFTPOptions{
		Host:      "web01",
		RemoteDir: "/var/www",
		Source:    filepath.Join(build, "*"),
		Publish:   true,
		Webpack:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pub.Calls)
}
