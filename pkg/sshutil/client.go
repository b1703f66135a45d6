package sshutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/kevinburke/ssh_config"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Client holds the connection settings resolved for an SSH alias
type Client struct {
	Alias string
	Host  string
	Port  string
	User  string
	Key   string

	conn  *ssh.Client
	sftp  *sftp.Client
	agent net.Conn // ssh-agent socket, held until Close
}

// NewClient resolves alias through ~/.ssh/config; unknown aliases are used as hostnames
func NewClient(alias string) (*Client, error) {
	f, err := os.Open(filepath.Join(homeDir(), ".ssh", "config"))
	if errors.Is(err, fs.ErrNotExist) {
		return resolve(alias, &ssh_config.Config{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ssh config: %w", err)
	}
	defer f.Close()

	cfg, err := ssh_config.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse ssh config: %w", err)
	}
	return resolve(alias, cfg), nil
}

func resolve(alias string, cfg *ssh_config.Config) *Client {
	host, _ := cfg.Get(alias, "HostName")
	if host == "" {
		// No HostName entry: the alias is the hostname itself
		host = alias
	}

	user, _ := cfg.Get(alias, "User")
	if user == "" {
		user = os.Getenv("USER")
	}

	port, _ := cfg.Get(alias, "Port")
	if port == "" {
		port = "22"
	}

	key, _ := cfg.Get(alias, "IdentityFile")

	return &Client{
		Alias: alias,
		Host:  host,
		Port:  port,
		User:  user,
		Key:   key,
	}
}

// Addr is the host:port dialed by Connect
func (c *Client) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Connect opens the SSH connection and an SFTP session on top of it
func (c *Client) Connect() error {
	hostKeys, err := hostKeyCallback()
	if err != nil {
		return err
	}

	config := &ssh.ClientConfig{
		User:            c.User,
		Auth:            c.authMethods(),
		HostKeyCallback: hostKeys,
		Timeout:         5 * time.Second,
	}

	conn, err := ssh.Dial("tcp", c.Addr(), config)
	if err != nil {
		c.closeAgent()
		return fmt.Errorf("ssh connect [%s]: %w", c.Addr(), err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		c.closeAgent()
		return fmt.Errorf("start sftp session: %w", err)
	}

	c.conn = conn
	c.sftp = client
	slog.Debug("ssh connected", "alias", c.Alias, "addr", c.Addr(), "user", c.User)
	return nil
}

// Close ends the SFTP session and the connection
func (c *Client) Close() error {
	var errs []error
	if c.sftp != nil {
		errs = append(errs, c.sftp.Close())
		c.sftp = nil
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
		c.conn = nil
	}
	errs = append(errs, c.closeAgent())
	return errors.Join(errs...)
}

func (c *Client) closeAgent() error {
	if c.agent == nil {
		return nil
	}
	err := c.agent.Close()
	c.agent = nil
	return err
}

// MkdirAll creates remoteDir and any missing parents
func (c *Client) MkdirAll(remoteDir string) error {
	if c.sftp == nil {
		return errNotConnected
	}
	return c.sftp.MkdirAll(remoteDir)
}

// Upload copies one local file to remotePath, replacing it if present
func (c *Client) Upload(localPath, remotePath string) error {
	if c.sftp == nil {
		return errNotConnected
	}

	src, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := c.sftp.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create %s: %w", remotePath, err)
	}

	if err := copyAndClose(dst, src); err != nil {
		return fmt.Errorf("copy %s -> %s: %w", localPath, remotePath, err)
	}
	slog.Debug("uploaded", "local", localPath, "remote", remotePath)
	return nil
}

// copyAndClose writes src into dst and closes it; a failed close (the remote
// flush) fails the copy
func copyAndClose(dst io.WriteCloser, src io.Reader) error {
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// UploadDir mirrors localDir into remoteDir and returns the number of files copied
func (c *Client) UploadDir(localDir, remoteDir string) (int, error) {
	if c.sftp == nil {
		return 0, errNotConnected
	}

	count := 0
	err := filepath.WalkDir(localDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil {
			return err
		}
		target := RemotePath(remoteDir, rel)

		if d.IsDir() {
			return c.sftp.MkdirAll(target)
		}
		if err := c.Upload(p, target); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

var errNotConnected = errors.New("sftp: not connected")

// RemotePath joins a local relative path onto a remote (always slash separated) directory
func RemotePath(remoteDir, rel string) string {
	return path.Join(remoteDir, filepath.ToSlash(rel))
}

func (c *Client) authMethods() []ssh.AuthMethod {
	authMethods := []ssh.AuthMethod{}

	// 1. SSH agent
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" && c.agent == nil {
		conn, err := net.Dial("unix", sock)
		if err == nil {
			signers, err := agent.NewClient(conn).Signers()
			if err == nil {
				authMethods = append(authMethods, ssh.PublicKeys(signers...))
				c.agent = conn
			} else {
				conn.Close()
			}
		}
	}

	// 2. IdentityFile from config, then the default keys that exist
	keyFiles := []string{}
	if c.Key != "" && c.Key != "~/.ssh/identity" {
		keyFiles = append(keyFiles, expandPath(c.Key))
	}
	for _, name := range []string{"id_rsa", "id_ed25519", "id_ecdsa"} {
		dk := filepath.Join(homeDir(), ".ssh", name)
		if _, err := os.Stat(dk); err == nil {
			keyFiles = append(keyFiles, dk)
		}
	}

	for _, kPath := range keyFiles {
		key, err := os.ReadFile(kPath)
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			slog.Debug("skip identity file", "path", kPath, "error", err)
			continue
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	return authMethods
}

// hostKeyCallback verifies against ~/.ssh/known_hosts when it exists
func hostKeyCallback() (ssh.HostKeyCallback, error) {
	file := filepath.Join(homeDir(), ".ssh", "known_hosts")
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("no known_hosts file, host key not verified", "path", file)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts: %w", err)
	}
	return cb, nil
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}
