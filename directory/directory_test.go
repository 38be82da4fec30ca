package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keplerhq/authvault/cache"
	"github.com/keplerhq/authvault/keystore"
)

type fixture struct {
	dir   *Directory
	users *MemoryUsers
	keys  *keystore.Memory
	mr    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := NewMemoryUsers()
	roles := NewMemoryRoles(
		Role{ID: "r1", Code: "user", Active: true},
		Role{ID: "r2", Code: "retired", Active: false},
	)
	keys := keystore.NewMemory()
	dir := New(users, roles, cache.New(rdb, "av", nil), keys, 10*time.Minute, nil)
	return &fixture{dir: dir, users: users, keys: keys, mr: mr}
}

func (f *fixture) create(t *testing.T, name, email string) *User {
	t.Helper()
	user, entry, err := f.dir.Create(context.Background(),
		&User{Name: name, Email: email, PasswordHash: "$2a$10$hash"},
		"user", "primary-"+email, "secondary-"+email)
	require.NoError(t, err)
	require.NotNil(t, entry)
	return user
}

func TestCreateAssignsRoleAndSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, entry, err := f.dir.Create(ctx,
		&User{Name: "Ada", Email: "ada@x.com", PasswordHash: "h"},
		"user", "pk", "sk")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.True(t, user.Active)
	assert.Equal(t, []string{"user"}, user.RoleCodes())
	assert.Equal(t, user.ID, entry.ClientID)

	got, err := f.keys.FindByPair(ctx, user.ID, "pk", "sk")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
}

func TestCreateUnknownRole(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.dir.Create(context.Background(),
		&User{Name: "Ada", Email: "ada@x.com"}, "nonexistent", "pk", "sk")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestCreateInactiveRole(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.dir.Create(context.Background(),
		&User{Name: "Ada", Email: "ada@x.com"}, "retired", "pk", "sk")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestCreateDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Ada", "ada@x.com")

	_, _, err := f.dir.Create(context.Background(),
		&User{Name: "Other", Email: "ada@x.com"}, "user", "pk", "sk")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

// failingKeystore rejects Create so compensation paths can be observed.
type failingKeystore struct {
	keystore.Store
}

func (failingKeystore) Create(ctx context.Context, clientID, primaryKey, secondaryKey string) (*keystore.Entry, error) {
	return nil, errors.New("keystore down")
}

func TestCreateCompensatesOnKeystoreFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dir := New(f.users, NewMemoryRoles(Role{ID: "r1", Code: "user", Active: true}),
		cache.New(redis.NewClient(&redis.Options{Addr: f.mr.Addr()}), "av", nil),
		failingKeystore{f.keys}, time.Minute, nil)

	_, _, err := dir.Create(ctx, &User{Name: "Ada", Email: "ada@x.com"}, "user", "pk", "sk")
	require.Error(t, err)

	// No half-created account survives.
	_, err = f.users.FindByEmail(ctx, "ada@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindByIDReadThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.create(t, "Ada", "ada@x.com")

	got, err := f.dir.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@x.com", got.Email)

	// A cached snapshot serves the read even after the backing record
	// disappears.
	require.NoError(t, f.users.Delete(ctx, user.ID))
	got, err = f.dir.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestFindByEmailPrimesBothKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.create(t, "Ada", "ada@x.com")
	f.mr.FlushAll()

	_, err := f.dir.FindByEmail(ctx, "ada@x.com")
	require.NoError(t, err)

	assert.True(t, f.mr.Exists("av:user:id:"+user.ID))
	assert.True(t, f.mr.Exists("av:user:email:ada@x.com"))
}

func TestFindUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.dir.FindByID(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.dir.FindByEmail(context.Background(), "absent@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateInfoInvalidatesBothKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.create(t, "Ada", "ada@x.com")

	_, err := f.dir.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, f.mr.Exists("av:user:id:"+user.ID))

	user.Name = "Ada L"
	require.NoError(t, f.dir.UpdateInfo(ctx, user))

	assert.False(t, f.mr.Exists("av:user:id:"+user.ID))
	assert.False(t, f.mr.Exists("av:user:email:ada@x.com"))

	got, err := f.dir.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L", got.Name)
}

func TestEmailChangeEvictsOldEmailKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.create(t, "Ada", "ada@x.com")

	_, err := f.dir.FindByEmail(ctx, "ada@x.com")
	require.NoError(t, err)
	require.True(t, f.mr.Exists("av:user:email:ada@x.com"))

	user.Email = "lovelace@x.com"
	require.NoError(t, f.dir.UpdateInfo(ctx, user))

	// The old address must not resolve from a stale snapshot.
	assert.False(t, f.mr.Exists("av:user:email:ada@x.com"))
	_, err = f.dir.FindByEmail(ctx, "ada@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	got, err := f.dir.FindByEmail(ctx, "lovelace@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestUpdateMintsFreshEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.create(t, "Ada", "ada@x.com")

	user.Name = "Ada L"
	_, entry, err := f.dir.Update(ctx, user, "new-pk", "new-sk")
	require.NoError(t, err)

	got, err := f.keys.FindByPair(ctx, user.ID, "new-pk", "new-sk")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
}

func TestPrivateProfileStripsCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.create(t, "Ada", "ada@x.com")

	view, err := f.dir.FindPrivateProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, view.ID)
	assert.Equal(t, "ada@x.com", view.Email)
	assert.Equal(t, []string{"user"}, view.Roles)

	public := PublicProfile(user)
	assert.Equal(t, "Ada", public.Name)
	assert.Equal(t, []string{"user"}, public.Roles)
}
