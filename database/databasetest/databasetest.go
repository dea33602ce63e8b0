// Package databasetest provides throwaway SQLite stores for tests.
package databasetest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"socialnet/database"
	"socialnet/models"
)

var counter atomic.Int64

// NewStore opens a private in-memory database with the schema applied. It is
// closed when the test finishes.
func NewStore(t testing.TB) *database.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:socialnet_test_%d?mode=memory&cache=shared&_foreign_keys=1&_txlock=immediate", counter.Add(1))

	store, err := database.Open(string(database.SQLite), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.CreateTables(context.Background()))
	return store
}

// CreateUser inserts a user with the given email and a known password hash.
// The username is the part of the email before the @.
func CreateUser(t testing.TB, store *database.Store, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Username:  strings.SplitN(email, "@", 2)[0],
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}
