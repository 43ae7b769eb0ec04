package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scholarmind/application/store"
	"scholarmind/infrastructure/identity"
	"scholarmind/infrastructure/persistence/memory"
	"scholarmind/pkg/auth"
	"scholarmind/pkg/observability"
)

// envelope mirrors the wire shape of every response
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testAPI struct {
	handler  http.Handler
	sessions *store.SessionStore
	data     *store.DataStore
	tokens   *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	kv := memory.NewStore()
	logger := zap.NewNop()
	provider := identity.NewProvider(kv, logger)

	data := store.NewDataStore(kv, observability.Noop{}, logger)
	sessions := store.NewSessionStore(kv, provider, data, logger)
	data.ObserveIdentity(provider)
	sessions.ObserveIdentity()
	t.Cleanup(func() {
		sessions.Close()
		data.Close()
	})

	tokens, err := auth.NewTokenService("test-secret", "scholarmind", time.Hour)
	require.NoError(t, err)

	router := NewRouter(sessions, data, tokens, prometheus.NewRegistry(), logger)
	return &testAPI{
		handler:  router.Setup(),
		sessions: sessions,
		data:     data,
		tokens:   tokens,
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (a *testAPI) signup(t *testing.T, email string) string {
	t.Helper()

	rec, env := a.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SignupAndState(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, http.MethodGet, "/api/v1/auth/state", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state struct {
		Authenticated bool `json:"authenticated"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.False(t, state.Authenticated)

	api.signup(t, "ada@example.com")

	rec, env = api.do(t, http.MethodGet, "/api/v1/auth/state", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.True(t, state.Authenticated)
}

func TestRouter_RejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	api.signup(t, "ada@example.com")

	rec, env := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTHENTICATION", env.Error.Type)
}

func TestRouter_GoalLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup(t, "ada@example.com")

	t.Run("rejects missing token", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodPost, "/api/v1/goals", "", map[string]string{
			"title": "x", "subject": "Math", "date": "2026-03-10",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a token for another identity", func(t *testing.T) {
		foreign, err := api.tokens.GenerateToken("someone-else", "x@example.com", "")
		require.NoError(t, err)
		rec, _ := api.do(t, http.MethodGet, "/api/v1/goals", foreign, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	var goalID string
	t.Run("creates a goal", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPost, "/api/v1/goals", token, map[string]string{
			"title":   "Read chapter 4",
			"subject": "Biology",
			"date":    "2026-03-10",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var goal struct {
			ID        string `json:"id"`
			Completed bool   `json:"completed"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &goal))
		require.NotEmpty(t, goal.ID)
		assert.False(t, goal.Completed)
		goalID = goal.ID
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodPost, "/api/v1/goals", token, map[string]string{
			"title": "x", "subject": "Math", "date": "03/10/2026",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("filters by date", func(t *testing.T) {
		rec, env := api.do(t, http.MethodGet, "/api/v1/goals?date=2026-03-10", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var goals []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &goals))
		assert.Len(t, goals, 1)

		rec, env = api.do(t, http.MethodGet, "/api/v1/goals?date=2026-03-11", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(env.Data, &goals))
		assert.Empty(t, goals)
	})

	t.Run("toggles and reports completion", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodPost, "/api/v1/goals/"+goalID+"/toggle", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, env := api.do(t, http.MethodGet, "/api/v1/stats/completion", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var rate struct {
			Completed int `json:"completed"`
			Total     int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &rate))
		assert.Equal(t, 1, rate.Completed)
		assert.Equal(t, 1, rate.Total)
	})

	t.Run("deletes the goal", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodDelete, "/api/v1/goals/"+goalID, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, env := api.do(t, http.MethodGet, "/api/v1/goals", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var goals []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &goals))
		assert.Empty(t, goals)
	})
}

func TestRouter_SubjectConflicts(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup(t, "ada@example.com")

	rec, env := api.do(t, http.MethodPost, "/api/v1/subjects", token, map[string]string{"name": "Physics"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var subject struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &subject))

	t.Run("duplicate name returns a conflict", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPost, "/api/v1/subjects", token, map[string]string{"name": "physics"})
		require.Equal(t, http.StatusConflict, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "DUPLICATE_SUBJECT", env.Error.Code)
	})

	t.Run("deletion is blocked by referencing goals", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodPost, "/api/v1/goals", token, map[string]string{
			"title": "Momentum", "subject": "Physics", "date": "2026-03-10",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, env := api.do(t, http.MethodDelete, "/api/v1/subjects/"+subject.ID, token, nil)
		require.Equal(t, http.StatusConflict, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "SUBJECT_IN_USE", env.Error.Code)
	})
}

func TestRouter_PasscodeFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup(t, "ada@example.com")

	t.Run("rejects a short code", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodPost, "/api/v1/auth/passcode", token, map[string]string{"code": "12"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rec, _ := api.do(t, http.MethodPost, "/api/v1/auth/passcode", token, map[string]string{"code": "1234"})
	require.Equal(t, http.StatusOK, rec.Code)

	verify := func(code string) bool {
		rec, env := api.do(t, http.MethodPost, "/api/v1/auth/passcode/verify", token, map[string]string{"code": code})
		require.Equal(t, http.StatusOK, rec.Code)
		var result struct {
			Unlocked bool `json:"unlocked"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		return result.Unlocked
	}

	assert.True(t, verify("1234"))
	assert.False(t, verify("4321"))
	assert.True(t, verify("biometric"))

	t.Run("biometric unlock path", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPost, "/api/v1/auth/unlock", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var result struct {
			Unlocked bool `json:"unlocked"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.True(t, result.Unlocked)
	})
}

func TestRouter_LogoutErasesEverything(t *testing.T) {
	api := newTestAPI(t)
	token := api.signup(t, "ada@example.com")

	rec, _ := api.do(t, http.MethodPost, "/api/v1/goals", token, map[string]string{
		"title": "Before logout", "subject": "Math", "date": "2026-03-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	api.data.Flush()

	rec, _ = api.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("old token no longer works", func(t *testing.T) {
		rec, _ := api.do(t, http.MethodGet, "/api/v1/goals", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("relogin starts with empty collections", func(t *testing.T) {
		rec, env := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "secret1",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		var data struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))

		rec, env = api.do(t, http.MethodGet, "/api/v1/goals", data.Token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var goals []json.RawMessage
		require.NoError(t, json.Unmarshal(env.Data, &goals))
		assert.Empty(t, goals)
	})
}
