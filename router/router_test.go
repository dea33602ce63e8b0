package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"socialnet/config"
	"socialnet/database/databasetest"
	"socialnet/middleware"
	"socialnet/services"
	"socialnet/utils"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	now    time.Time
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	store := databasetest.NewStore(t)

	ts := &testServer{t: t, now: time.Now().UTC()}
	cfg := &config.Config{CORSAllowedOrigins: []string{"http://localhost:3000"}}
	ts.router = New(cfg, Deps{
		Users:       services.NewUserService(store).WithHashCost(bcrypt.MinCost),
		Friends:     services.NewFriendService(store, nil, 3, time.Minute).WithClock(func() time.Time { return ts.now }),
		Tokens:      utils.NewTokenManager("test-secret", time.Hour, 24*time.Hour),
		AuthLimiter: middleware.NewIPRateLimiter(100, 100),
	})
	return ts
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

// signup registers and logs in a user, returning its id and access token.
func (ts *testServer) signup(email, first string) (string, string) {
	rr := ts.do(http.MethodPost, "/signup/", "", gin.H{"email": email, "password": "Secret123!", "first_name": first})
	require.Equal(ts.t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(ts.t, rr, &created)

	rr = ts.do(http.MethodPost, "/login/", "", gin.H{"email": email, "password": "Secret123!"})
	require.Equal(ts.t, http.StatusOK, rr.Code, rr.Body.String())
	var pair utils.TokenPair
	decode(ts.t, rr, &pair)
	return created.User.ID, pair.AccessToken
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rr, &body)
	return body.Error
}

func TestWelcome(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Welcome to social network."}`, rr.Body.String())
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodPost, "/signup/", "", gin.H{"email": "User@Test.com", "password": "Secret123!"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgInvalidEmail, errorMessage(t, rr))

	rr = ts.do(http.MethodPost, "/signup/", "", gin.H{"email": "user@test.com", "password": "Abc12345"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, services.MsgPasswordSpecial, errorMessage(t, rr))

	rr = ts.do(http.MethodPost, "/signup/", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.signup("alice@example.com", "Alice")

	rr := ts.do(http.MethodPost, "/login/", "", gin.H{"email": "ALICE@example.com", "password": "Secret123!"})
	require.Equal(t, http.StatusOK, rr.Code)
	var pair utils.TokenPair
	decode(t, rr, &pair)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	rr = ts.do(http.MethodPost, "/login/", "", gin.H{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid Credentials", errorMessage(t, rr))

	rr = ts.do(http.MethodPost, "/login/", "", gin.H{"password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodPost, "/login/refresh/", "", gin.H{"refresh_token": pair.RefreshToken})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodPost, "/login/refresh/", "", gin.H{"refresh_token": pair.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/search/", "/friends/", "/friend-requests/pending/", "/me/"} {
		rr := ts.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)

		rr = ts.do(http.MethodGet, path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	id, token := ts.signup("alice@example.com", "Alice")

	rr := ts.do(http.MethodGet, "/me/", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var me struct {
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
	}
	decode(t, rr, &me)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "Alice", me.FirstName)
}

func TestSearch(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.signup("alice@example.com", "Alice")
	ts.signup("bob@example.com", "Bob")

	var users []map[string]any
	rr := ts.do(http.MethodGet, "/search/?search=BOB@example.com", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "bob@example.com", users[0]["email"])
	assert.NotContains(t, users[0], "password")

	rr = ts.do(http.MethodGet, "/search/?search=ali", token, nil)
	decode(t, rr, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0]["first_name"])

	rr = ts.do(http.MethodGet, "/search/", token, nil)
	decode(t, rr, &users)
	assert.Len(t, users, 2)
}

func TestFriendRequestFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceID, alice := ts.signup("alice@example.com", "Alice")
	bobID, bob := ts.signup("bob@example.com", "Bob")

	rr := ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{"to_user_id": bobID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var sent struct {
		Request struct {
			ID       string `json:"id"`
			FromUser struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"from_user"`
			ToUserID string `json:"to_user_id"`
			Accepted bool   `json:"accepted"`
		} `json:"request"`
	}
	decode(t, rr, &sent)
	assert.Equal(t, aliceID, sent.Request.FromUser.ID)
	assert.Equal(t, "alice@example.com", sent.Request.FromUser.Email)
	assert.Equal(t, bobID, sent.Request.ToUserID)
	assert.False(t, sent.Request.Accepted)

	rr = ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{"to_user_id": bobID})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Friend request already sent", errorMessage(t, rr))

	rr = ts.do(http.MethodGet, "/friend-requests/pending/", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var pending []struct {
		ID       string `json:"id"`
		FromUser struct {
			ID string `json:"id"`
		} `json:"from_user"`
	}
	decode(t, rr, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, sent.Request.ID, pending[0].ID)
	assert.Equal(t, aliceID, pending[0].FromUser.ID)

	// only the recipient may answer
	rr = ts.do(http.MethodPost, "/friend-request/respond/"+sent.Request.ID+"/accept/", alice, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(http.MethodPost, "/friend-request/respond/"+sent.Request.ID+"/maybe/", bob, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid action", errorMessage(t, rr))

	rr = ts.do(http.MethodPost, "/friend-request/respond/"+sent.Request.ID+"/accept/", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Friend request accepted"}`, rr.Body.String())

	for _, tc := range []struct {
		token, friendID string
	}{{alice, bobID}, {bob, aliceID}} {
		rr = ts.do(http.MethodGet, "/friends/", tc.token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var friends []struct {
			ID string `json:"id"`
		}
		decode(t, rr, &friends)
		require.Len(t, friends, 1)
		assert.Equal(t, tc.friendID, friends[0].ID)
	}

	rr = ts.do(http.MethodPost, "/friend-request/send/", bob, gin.H{"to_user_id": aliceID})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Already friends", errorMessage(t, rr))
}

func TestRejectThenRespondIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	_, alice := ts.signup("alice@example.com", "Alice")
	bobID, bob := ts.signup("bob@example.com", "Bob")

	rr := ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{"to_user_id": bobID})
	require.Equal(t, http.StatusCreated, rr.Code)
	var sent struct {
		Request struct {
			ID string `json:"id"`
		} `json:"request"`
	}
	decode(t, rr, &sent)

	rr = ts.do(http.MethodPost, "/friend-request/respond/"+sent.Request.ID+"/reject/", bob, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Friend request rejected"}`, rr.Body.String())

	rr = ts.do(http.MethodPost, "/friend-request/respond/"+sent.Request.ID+"/reject/", bob, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Friend request not found", errorMessage(t, rr))
}

func TestSendErrors(t *testing.T) {
	ts := newTestServer(t)
	aliceID, alice := ts.signup("alice@example.com", "Alice")

	rr := ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{"to_user_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User does not exist", errorMessage(t, rr))

	rr = ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{"to_user_id": aliceID})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Cannot send friend request to yourself", errorMessage(t, rr))

	rr = ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSendRateLimited(t *testing.T) {
	ts := newTestServer(t)
	_, alice := ts.signup("alice@example.com", "Alice")
	var targets []string
	for _, email := range []string{"b@example.com", "c@example.com", "d@example.com", "e@example.com"} {
		id, _ := ts.signup(email, "")
		targets = append(targets, id)
	}

	for _, id := range targets[:3] {
		rr := ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{"to_user_id": id})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{"to_user_id": targets[3]})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "Too many friend requests", errorMessage(t, rr))

	ts.now = ts.now.Add(61 * time.Second)
	rr = ts.do(http.MethodPost, "/friend-request/send/", alice, gin.H{"to_user_id": targets[3]})
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rr := ts.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
