package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// Defaults for the PostgreSQL container of a generated project.
const (
	ContainerName    = "postgres_db"
	DefaultImage     = "postgres"
	DefaultTag       = "latest"
	DefaultUser      = "postgres"
	DefaultPassword  = "postgres"
	DefaultHostPort  = "5432"
	postgresPort     = "5432/tcp"
	defaultReadyWait = time.Minute
)

// ErrContainerUnavailable is returned when no container engine can be reached.
var ErrContainerUnavailable = errors.New("container engine unavailable")

// DatabaseConfig describes the PostgreSQL container.
type DatabaseConfig struct {
	Image    string
	Tag      string
	User     string
	Password string
	HostPort string
	// ReadyWait bounds how long to wait for the database to accept connections.
	ReadyWait time.Duration
}

// DefaultDatabaseConfig returns the configuration generated projects expect.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Image:     DefaultImage,
		Tag:       DefaultTag,
		User:      DefaultUser,
		Password:  DefaultPassword,
		HostPort:  DefaultHostPort,
		ReadyWait: defaultReadyWait,
	}
}

// containerPool is the part of *dockertest.Pool used here.
type containerPool interface {
	ContainerByName(name string) (*dockertest.Resource, bool)
	RunWithOptions(opts *dockertest.RunOptions, hcOpts ...func(*docker.HostConfig)) (*dockertest.Resource, error)
	Retry(op func() error) error
}

// Database provisions the PostgreSQL container of a generated project. One
// Database is shared by all pipeline workers; Ensure calls are serialised.
type Database struct {
	mu     sync.Mutex
	pool   containerPool
	cfg    DatabaseConfig
	ping   func(ctx context.Context, dsn string) error
	logger *slog.Logger
}

// NewDatabase connects to the container engine named by DOCKER_HOST (a
// Docker or Podman socket) or the platform default.
func NewDatabase(cfg DatabaseConfig, logger *slog.Logger) (*Database, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContainerUnavailable, err)
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContainerUnavailable, err)
	}
	if cfg.ReadyWait > 0 {
		pool.MaxWait = cfg.ReadyWait
	}
	return newDatabase(pool, cfg, pingPostgres, logger), nil
}

func newDatabase(pool containerPool, cfg DatabaseConfig, ping func(context.Context, string) error, logger *slog.Logger) *Database {
	def := DefaultDatabaseConfig()
	if cfg.Image == "" {
		cfg.Image = def.Image
	}
	if cfg.Tag == "" {
		cfg.Tag = def.Tag
	}
	if cfg.User == "" {
		cfg.User = def.User
	}
	if cfg.Password == "" {
		cfg.Password = def.Password
	}
	if cfg.HostPort == "" {
		cfg.HostPort = def.HostPort
	}
	return &Database{
		pool:   pool,
		cfg:    cfg,
		ping:   ping,
		logger: logger.With("component", "database_provisioner"),
	}
}

// Ensure starts the postgres_db container unless it already exists, waits
// until it accepts connections and returns its connection string.
func (d *Database) Ensure(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	resource, err := d.container(ctx)
	if err != nil {
		return "", err
	}

	port := resource.GetPort(postgresPort)
	if port == "" {
		port = d.cfg.HostPort
	}
	dsn := d.DSN(port)

	err = d.pool.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return d.ping(ctx, dsn)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("waiting for database: %w", ctxErr)
		}
		return "", fmt.Errorf("database did not become ready: %w", err)
	}
	return dsn, nil
}

// container finds or creates postgres_db. Another process may create it
// between the lookup and the create, so a name conflict falls back to a
// second lookup.
func (d *Database) container(ctx context.Context) (*dockertest.Resource, error) {
	if resource, found := d.pool.ContainerByName(ContainerName); found {
		d.logger.InfoContext(ctx, "reusing existing database container", "name", ContainerName)
		return resource, nil
	}

	resource, err := d.pool.RunWithOptions(d.runOptions(), func(hc *docker.HostConfig) {
		hc.RestartPolicy = docker.RestartPolicy{Name: "unless-stopped"}
	})
	if err == nil {
		d.logger.InfoContext(ctx, "started database container", "name", ContainerName, "image", d.cfg.Image+":"+d.cfg.Tag)
		return resource, nil
	}
	if isNameConflict(err) {
		if resource, found := d.pool.ContainerByName(ContainerName); found {
			d.logger.InfoContext(ctx, "database container created concurrently, reusing it", "name", ContainerName)
			return resource, nil
		}
	}
	return nil, fmt.Errorf("failed to start database container: %w", err)
}

func isNameConflict(err error) bool {
	if errors.Is(err, docker.ErrContainerAlreadyExists) {
		return true
	}
	var apiErr *docker.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// DSN returns the connection string for the container on the given host port.
func (d *Database) DSN(port string) string {
	return fmt.Sprintf("postgres://%s:%s@localhost:%s/postgres?sslmode=disable",
		d.cfg.User, d.cfg.Password, port)
}

func (d *Database) runOptions() *dockertest.RunOptions {
	return &dockertest.RunOptions{
		Name:       ContainerName,
		Repository: d.cfg.Image,
		Tag:        d.cfg.Tag,
		Env: []string{
			"POSTGRES_USER=" + d.cfg.User,
			"POSTGRES_PASSWORD=" + d.cfg.Password,
		},
		ExposedPorts: []string{postgresPort},
		PortBindings: map[docker.Port][]docker.PortBinding{
			postgresPort: {{HostIP: "0.0.0.0", HostPort: d.cfg.HostPort}},
		},
	}
}

func pingPostgres(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(pingCtx)
}
