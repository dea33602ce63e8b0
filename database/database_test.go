package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/database"
	"socialnet/database/databasetest"
	"socialnet/models"
)

func newRequest(from, to *models.User, at time.Time) *models.FriendRequest {
	return &models.FriendRequest{
		ID:         uuid.New().String(),
		FromUserID: from.ID,
		ToUserID:   to.ID,
		CreatedAt:  at,
	}
}

func TestParseDialect(t *testing.T) {
	d, err := database.ParseDialect("mysql")
	require.NoError(t, err)
	assert.Equal(t, database.MySQL, d)

	_, err = database.ParseDialect("postgres")
	assert.Error(t, err)
}

func TestCreateTablesIsIdempotent(t *testing.T) {
	store := databasetest.NewStore(t)
	assert.NoError(t, store.CreateTables(context.Background()))
}

func TestUserQueries(t *testing.T) {
	ctx := context.Background()
	store := databasetest.NewStore(t)
	alice := databasetest.CreateUser(t, store, "alice@example.com")

	got, err := store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Nil(t, got.LastLogin)

	got, err = store.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = store.GetUserByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, database.ErrNotFound)

	dup := *alice
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, store.CreateUser(ctx, &dup), database.ErrDuplicate)

	require.NoError(t, store.UpdateLastLogin(ctx, alice.ID, time.Now().UTC()))
	got, err = store.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin)
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	store := databasetest.NewStore(t)
	databasetest.CreateUser(t, store, "alice@example.com")
	databasetest.CreateUser(t, store, "bob@example.com")
	databasetest.CreateUser(t, store, "under_score@example.com")

	users, err := store.SearchUsers(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	users, err = store.SearchUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, users, 3)

	// wildcard characters in the term are literal
	users, err = store.SearchUsers(ctx, "_")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "under_score", users[0].Username)

	users, err = store.FindUsersByEmail(ctx, "Bob@Example.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
}

func TestFriendRequestLifecycle(t *testing.T) {
	ctx := context.Background()
	store := databasetest.NewStore(t)
	alice := databasetest.CreateUser(t, store, "alice@example.com")
	bob := databasetest.CreateUser(t, store, "bob@example.com")
	now := time.Now().UTC()

	fr := newRequest(alice, bob, now)
	require.NoError(t, store.CreateFriendRequest(ctx, fr))
	assert.ErrorIs(t, store.CreateFriendRequest(ctx, newRequest(alice, bob, now)), database.ErrDuplicate)

	exists, err := store.FriendRequestExists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = store.FriendRequestExists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.GetReceivedFriendRequest(ctx, fr.ID, alice.ID)
	assert.ErrorIs(t, err, database.ErrNotFound)

	pending, err := store.ListPendingFriendRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, alice.ID, pending[0].FromUser.ID)
	assert.Equal(t, "alice@example.com", pending[0].FromUser.Email)

	require.NoError(t, store.AcceptFriendRequest(ctx, fr.ID))
	got, err := store.GetReceivedFriendRequest(ctx, fr.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, got.Accepted)

	pending, err = store.ListPendingFriendRequests(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	ids, err := store.FriendIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{alice.ID: true}, ids)

	require.NoError(t, store.DeleteFriendRequest(ctx, fr.ID))
	assert.ErrorIs(t, store.DeleteFriendRequest(ctx, fr.ID), database.ErrNotFound)
}

func TestListFriendsIsSymmetricAndDeduplicated(t *testing.T) {
	ctx := context.Background()
	store := databasetest.NewStore(t)
	alice := databasetest.CreateUser(t, store, "alice@example.com")
	bob := databasetest.CreateUser(t, store, "bob@example.com")
	carol := databasetest.CreateUser(t, store, "carol@example.com")
	now := time.Now().UTC()

	ab := newRequest(alice, bob, now.Add(-2*time.Minute))
	ba := newRequest(bob, alice, now.Add(-time.Minute))
	ca := newRequest(carol, alice, now)
	for _, fr := range []*models.FriendRequest{ab, ba, ca} {
		require.NoError(t, store.CreateFriendRequest(ctx, fr))
		require.NoError(t, store.AcceptFriendRequest(ctx, fr.ID))
	}

	friends, err := store.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, bob.ID, friends[0].ID)
	assert.Equal(t, carol.ID, friends[1].ID)

	friends, err = store.ListFriends(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice.ID, friends[0].ID)
}

func TestCountFriendRequestsSince(t *testing.T) {
	ctx := context.Background()
	store := databasetest.NewStore(t)
	alice := databasetest.CreateUser(t, store, "alice@example.com")
	now := time.Now().UTC()

	for i, offset := range []time.Duration{-90 * time.Second, -30 * time.Second, -time.Second} {
		other := databasetest.CreateUser(t, store, string(rune('a'+i))+"x@example.com")
		require.NoError(t, store.CreateFriendRequest(ctx, newRequest(alice, other, now.Add(offset))))
	}

	count, err := store.CountFriendRequestsSince(ctx, alice.ID, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestInTxRollsBack(t *testing.T) {
	ctx := context.Background()
	store := databasetest.NewStore(t)
	alice := databasetest.CreateUser(t, store, "alice@example.com")
	bob := databasetest.CreateUser(t, store, "bob@example.com")

	fr := newRequest(alice, bob, time.Now().UTC())
	err := store.InTx(ctx, func(tx *database.Store) error {
		require.NoError(t, tx.LockUser(ctx, alice.ID))
		require.NoError(t, tx.CreateFriendRequest(ctx, fr))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	exists, err := store.FriendRequestExists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
