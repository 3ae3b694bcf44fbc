package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	reportapp "github.com/pentol/backend/internal/application/report"
	infraconfig "github.com/pentol/backend/internal/infrastructure/config"
	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
)

var _ reportapp.ArtifactSink = (*SFTPSink)(nil)

const defaultSFTPTimeout = 15 * time.Second

// sftpConnector opens a session; closeFn tears down the client and transport
type sftpConnector func(ctx context.Context) (client *sftp.Client, closeFn func() error, err error)

// SFTPSink pushes export artifacts to the estate file-drop server
type SFTPSink struct {
	baseDir string
	connect sftpConnector
	now     func() time.Time
	logger  *zap.Logger
}

// NewSFTPSink builds a sink from configuration. Host key verification may only
// be skipped when allowInsecure is set.
func NewSFTPSink(cfg *infraconfig.SFTPConfig, allowInsecure bool, logger *zap.Logger) (*SFTPSink, error) {
	if cfg == nil {
		return nil, errors.New("sftp configuration is required")
	}
	if cfg.Host == "" {
		return nil, errors.New("sftp host is required")
	}
	if cfg.User == "" {
		return nil, errors.New("sftp user is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	auth, err := sshAuthMethods(cfg)
	if err != nil {
		return nil, err
	}
	hostKey, err := sshHostKeyCallback(cfg.HostKey, allowInsecure)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSFTPTimeout
	}
	port := cfg.Port
	if port == 0 {
		port = 22
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	return &SFTPSink{
		baseDir: cfg.BaseDir,
		connect: dialSFTP(addr, clientConfig),
		now:     time.Now,
		logger:  logger,
	}, nil
}

func dialSFTP(addr string, clientConfig *ssh.ClientConfig) sftpConnector {
	return func(ctx context.Context) (*sftp.Client, func() error, error) {
		dialer := net.Dialer{Timeout: clientConfig.Timeout}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to reach sftp server: %w", err)
		}

		sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("ssh handshake failed: %w", err)
		}
		sshClient := ssh.NewClient(sshConn, chans, reqs)

		client, err := sftp.NewClient(sshClient)
		if err != nil {
			_ = sshClient.Close()
			return nil, nil, fmt.Errorf("failed to open sftp session: %w", err)
		}

		return client, func() error {
			err := client.Close()
			if cerr := sshClient.Close(); err == nil {
				err = cerr
			}
			return err
		}, nil
	}
}

func sshAuthMethods(cfg *infraconfig.SFTPConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cfg.PrivateKeyPath != "" {
		pem, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read sftp private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sftp private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if len(methods) == 0 {
		return nil, errors.New("sftp password or private key is required")
	}
	return methods, nil
}

func sshHostKeyCallback(authorizedKey string, allowInsecure bool) (ssh.HostKeyCallback, error) {
	if strings.TrimSpace(authorizedKey) == "" {
		if !allowInsecure {
			return nil, errors.New("sftp host key is required outside development")
		}
		return ssh.InsecureIgnoreHostKey(), nil
	}
	pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(authorizedKey))
	if err != nil {
		return nil, fmt.Errorf("invalid sftp host key: %w", err)
	}
	return ssh.FixedHostKey(pub), nil
}

// Publish writes the artifact to <base>/<YYYY-MM-DD>/<file> and returns the
// remote path
func (s *SFTPSink) Publish(ctx context.Context, fileName, _ string, data []byte) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", errors.New("file name is required")
	}

	client, closeFn, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil {
			s.logger.Warn("Failed to close sftp session", zap.Error(cerr))
		}
	}()

	dir := path.Join(s.baseDir, s.now().UTC().Format("2006-01-02"))
	if err := client.MkdirAll(dir); err != nil {
		return "", fmt.Errorf("failed to create remote directory %s: %w", dir, err)
	}

	remote := path.Join(dir, path.Base(fileName))
	f, err := client.Create(remote)
	if err != nil {
		return "", fmt.Errorf("failed to create remote file %s: %w", remote, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write remote file %s: %w", remote, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize remote file %s: %w", remote, err)
	}

	s.logger.Info("Export pushed to file drop",
		zap.String("path", remote),
		zap.Int("bytes", len(data)))
	return remote, nil
}
