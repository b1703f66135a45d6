package deployer

import "context"

// AzureCLI abstracts the az invocations a storage deploy sequences
type AzureCLI interface {
	EnsureCLI(ctx context.Context) error
	LoginUser(ctx context.Context, username, secret string) error
	LoginServicePrincipal(ctx context.Context, clientID, tenantID, secret string) error
	Copy(ctx context.Context, source, destination string, recursive bool) error
	Logout(ctx context.Context) error
}

// FrontendPublisher builds the frontend before it is shipped
type FrontendPublisher interface {
	Publish(ctx context.Context) error
}

// PublicURLWriter persists the public URL into the frontend build configuration
type PublicURLWriter interface {
	ConfigurePublicURL(url string) error
}

// Uploader abstracts the remote side of an SFTP deploy
type Uploader interface {
	Connect() error
	Close() error
	MkdirAll(remoteDir string) error
	Upload(localPath, remotePath string) error
	UploadDir(localDir, remoteDir string) (int, error)
}

// UploaderFactory resolves an SSH alias into an unconnected Uploader
type UploaderFactory func(alias string) (Uploader, error)
