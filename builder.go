package authvault

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/keplerhq/authvault/cache"
	"github.com/keplerhq/authvault/directory"
	"github.com/keplerhq/authvault/keystore"
	"github.com/keplerhq/authvault/password"
	"github.com/keplerhq/authvault/token"
)

// Builder assembles a [Service] from explicit dependencies. There is no
// ambient state: the redis client, stores, and logger are handed in and
// owned by the Service after Build.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	users  directory.UserStore
	roles  directory.RoleStore
	keys   keystore.Store
	logger *zap.Logger

	built bool
}

// New returns a Builder preloaded with defaults.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the full configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the client backing the user snapshot cache.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the user persistence collaborator.
func (b *Builder) WithUserStore(users directory.UserStore) *Builder {
	b.users = users
	return b
}

// WithRoleStore sets the role lookup collaborator.
func (b *Builder) WithRoleStore(roles directory.RoleStore) *Builder {
	b.roles = roles
	return b
}

// WithKeystore sets the session entry store. Defaults to an in-memory
// store, which is only suitable for single-process deployments and tests.
func (b *Builder) WithKeystore(keys keystore.Store) *Builder {
	b.keys = keys
	return b
}

// WithLogger sets the structured logger. Defaults to a nop logger.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration, loads the signing keys, and returns
// an immutable Service. A key load failure surfaces as KindKeyUnavailable
// and must abort startup: the engine never serves without working keys.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := b.config.validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.users == nil {
		return nil, errors.New("user store is required")
	}
	if b.roles == nil {
		return nil, errors.New("role store is required")
	}
	if b.keys == nil {
		b.keys = keystore.NewMemory()
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}

	signer, err := token.NewSigner(token.Config{
		Issuer:         b.config.Token.Issuer,
		Audience:       b.config.Token.Audience,
		AccessTTL:      b.config.Token.AccessTTL,
		RefreshTTL:     b.config.Token.RefreshTTL,
		PrivateKeyPEM:  b.config.Token.PrivateKeyPEM,
		PublicKeyPEM:   b.config.Token.PublicKeyPEM,
		PrivateKeyPath: b.config.Token.PrivateKeyPath,
		PublicKeyPath:  b.config.Token.PublicKeyPath,
	})
	if err != nil {
		return nil, Wrap(KindKeyUnavailable, "loading signing keys", err)
	}

	hasher, err := password.NewBcrypt(b.config.Password.BcryptCost)
	if err != nil {
		return nil, err
	}

	snapshots := cache.New(b.redis, b.config.Cache.Prefix, b.logger)
	dir := directory.New(b.users, b.roles, snapshots, b.keys, b.config.Cache.TTL, b.logger)

	return &Service{
		config:    b.config,
		signer:    signer,
		keys:      b.keys,
		directory: dir,
		snapshots: snapshots,
		hasher:    hasher,
		log:       b.logger,
		metrics:   &Metrics{},
	}, nil
}
