package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-verify/pkg/account"
	"github.com/tendant/simple-verify/pkg/config"
	"github.com/tendant/simple-verify/pkg/resetpassword"
)

const testSecretKey = "test-secret-key"

func newFormHandler(t *testing.T) (*Handler, *account.InMemRepository) {
	t.Helper()
	accounts := account.NewInMemRepository()
	cfg := config.ResetConfig{
		AppName:   "testapp",
		SecretKey: testSecretKey,
	}
	svc := resetpassword.NewService(accounts, nil, cfg)
	return NewHandler(svc, cfg), accounts
}

func formURL(acct *account.Account, code string, expireAt int64) string {
	return fmt.Sprintf("/reset-password/form?code=%s&user_id=%s&expire_at=%d",
		code, acct.ID, expireAt)
}

func TestShowForm(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidLinkRendersForm", func(t *testing.T) {
		h, accounts := newFormHandler(t)
		acct, err := accounts.Save(ctx, &account.Account{Email: "alice@example.com"})
		require.NoError(t, err)

		expireAt := time.Now().UTC().Add(time.Hour).Unix()
		code := resetpassword.GenerateCode(testSecretKey, acct, expireAt)

		w := httptest.NewRecorder()
		h.ShowForm(w, httptest.NewRequest(http.MethodGet, formURL(acct, code, expireAt), nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "password")
	})

	t.Run("UniformMessageForDeadLinks", func(t *testing.T) {
		// The page must not reveal whether the code was wrong or merely
		// expired; both failures render the exact same response.
		h, accounts := newFormHandler(t)
		acct, err := accounts.Save(ctx, &account.Account{Email: "alice@example.com"})
		require.NoError(t, err)

		pastExpire := time.Now().UTC().Add(-time.Hour).Unix()
		expiredCode := resetpassword.GenerateCode(testSecretKey, acct, pastExpire)
		expired := httptest.NewRecorder()
		h.ShowForm(expired, httptest.NewRequest(http.MethodGet, formURL(acct, expiredCode, pastExpire), nil))

		futureExpire := time.Now().UTC().Add(time.Hour).Unix()
		wrong := httptest.NewRecorder()
		h.ShowForm(wrong, httptest.NewRequest(http.MethodGet, formURL(acct, "deadbeef", futureExpire), nil))

		assert.Equal(t, http.StatusBadRequest, expired.Code)
		assert.Equal(t, http.StatusBadRequest, wrong.Code)
		assert.Equal(t, expired.Body.String(), wrong.Body.String())
		assert.Contains(t, wrong.Body.String(), "invalid or has expired")
	})
}

func TestSubmitForm(t *testing.T) {
	ctx := context.Background()

	post := func(h *Handler, form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/reset-password/form",
			strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.SubmitForm(w, req)
		return w
	}

	t.Run("ResetsPassword", func(t *testing.T) {
		h, accounts := newFormHandler(t)
		acct, err := accounts.Save(ctx, &account.Account{Email: "alice@example.com"})
		require.NoError(t, err)

		expireAt := time.Now().UTC().Add(time.Hour).Unix()
		code := resetpassword.GenerateCode(testSecretKey, acct, expireAt)

		w := post(h, url.Values{
			"code":      {code},
			"user_id":   {acct.ID.String()},
			"expire_at": {fmt.Sprintf("%d", expireAt)},
			"password":  {"new-password"},
			"confirm":   {"new-password"},
		})
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := accounts.GetByID(ctx, acct.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.PasswordHash)
	})

	t.Run("ConfirmMismatchRerendersForm", func(t *testing.T) {
		h, accounts := newFormHandler(t)
		acct, err := accounts.Save(ctx, &account.Account{Email: "alice@example.com"})
		require.NoError(t, err)

		expireAt := time.Now().UTC().Add(time.Hour).Unix()
		code := resetpassword.GenerateCode(testSecretKey, acct, expireAt)

		w := post(h, url.Values{
			"code":      {code},
			"user_id":   {acct.ID.String()},
			"expire_at": {fmt.Sprintf("%d", expireAt)},
			"password":  {"new-password"},
			"confirm":   {"different"},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Passwords do not match")
	})

	t.Run("UniformMessageForDeadLinks", func(t *testing.T) {
		h, accounts := newFormHandler(t)
		acct, err := accounts.Save(ctx, &account.Account{Email: "alice@example.com"})
		require.NoError(t, err)

		pastExpire := time.Now().UTC().Add(-time.Hour).Unix()
		expired := post(h, url.Values{
			"code":      {resetpassword.GenerateCode(testSecretKey, acct, pastExpire)},
			"user_id":   {acct.ID.String()},
			"expire_at": {fmt.Sprintf("%d", pastExpire)},
			"password":  {"new-password"},
			"confirm":   {"new-password"},
		})

		futureExpire := time.Now().UTC().Add(time.Hour).Unix()
		wrong := post(h, url.Values{
			"code":      {"deadbeef"},
			"user_id":   {acct.ID.String()},
			"expire_at": {fmt.Sprintf("%d", futureExpire)},
			"password":  {"new-password"},
			"confirm":   {"new-password"},
		})

		assert.Equal(t, http.StatusBadRequest, expired.Code)
		assert.Equal(t, http.StatusBadRequest, wrong.Code)
		assert.Equal(t, expired.Body.String(), wrong.Body.String())
	})
}
