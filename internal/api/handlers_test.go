package api

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhonesBR/go-ledger/internal/api/account"
	"github.com/JhonesBR/go-ledger/internal/helper"
)

type stubStore struct {
	pingErr error
}

func (s stubStore) Ping(context.Context) error { return s.pingErr }

func (s stubStore) Get(context.Context, int64) (account.Account, error) {
	return account.Account{}, account.ErrNotFound
}

func (s stubStore) List(context.Context, int, int) ([]account.Account, int, error) {
	return nil, 0, nil
}

func (s stubStore) Mutate(context.Context, int64, string, account.Mutation) (account.Account, error) {
	return account.Account{}, account.ErrNotFound
}

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func newApp(store Store) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: helper.ErrorHandler})
	InitializeRoutes(context.Background(), app, store, "1.2.3")
	return app
}

func TestVersion(t *testing.T) {
	code, body := get(t, newApp(stubStore{}), "/version")
	assert.Equal(t, 200, code)
	assert.Equal(t, "1.2.3", body)
}

func TestHealth(t *testing.T) {
	code, body := get(t, newApp(stubStore{}), "/health")
	assert.Equal(t, 200, code)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	code, body = get(t, newApp(stubStore{pingErr: errors.New("dial tcp: refused")}), "/health")
	assert.Equal(t, 503, code)
	assert.JSONEq(t, `{"error":"database unavailable"}`, body)
}

func TestAccountRoutesMounted(t *testing.T) {
	code, body := get(t, newApp(stubStore{}), "/balance/5")
	assert.Equal(t, 404, code)
	assert.JSONEq(t, `{"error":"account not found"}`, body)
}
