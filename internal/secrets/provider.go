// Package secrets resolves the token signing secret from an external
// provider. The value is cached process-wide and refetched after a TTL.
package secrets

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Provider returns the current signing secret.
type Provider interface {
	SigningSecret(ctx context.Context) ([]byte, error)
}

type ManagerConfig struct {
	Region    string
	Name      string
	AccessKey string
	SecretKey string
	Endpoint  string
	CacheTTL  time.Duration
}

// Manager fetches the secret from AWS Secrets Manager.
type Manager struct {
	cfg   ManagerConfig
	fetch func(ctx context.Context) ([]byte, error)

	mu        sync.Mutex
	cached    []byte
	fetchedAt time.Time
}

func NewManager(ctx context.Context, cfg ManagerConfig) (*Manager, error) {
	if cfg.Region == "" || cfg.Name == "" {
		return nil, errors.New("secrets region and name are required")
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	m := &Manager{cfg: cfg}
	m.fetch = func(ctx context.Context) ([]byte, error) {
		out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(cfg.Name),
		})
		if err != nil {
			return nil, err
		}
		switch {
		case out.SecretString != nil:
			return []byte(*out.SecretString), nil
		case out.SecretBinary != nil:
			return out.SecretBinary, nil
		default:
			return nil, errors.New("secret value is empty")
		}
	}
	return m, nil
}

func (m *Manager) SigningSecret(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil && time.Since(m.fetchedAt) < m.cfg.CacheTTL {
		return m.cached, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	secret, err := m.fetch(fetchCtx)
	if err != nil {
		// Serve the stale value rather than failing every request while
		// the provider is unreachable.
		if m.cached != nil {
			return m.cached, nil
		}
		return nil, err
	}

	m.cached = secret
	m.fetchedAt = time.Now()
	return secret, nil
}

// Static is a fixed-value provider for development and tests.
type Static struct {
	Secret []byte
}

func (s Static) SigningSecret(context.Context) ([]byte, error) {
	if len(s.Secret) == 0 {
		return nil, errors.New("static secret not configured")
	}
	return s.Secret, nil
}
