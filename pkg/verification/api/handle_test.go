package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-verify/pkg/account"
	"github.com/tendant/simple-verify/pkg/config"
	"github.com/tendant/simple-verify/pkg/notification"
	"github.com/tendant/simple-verify/pkg/verification"
)

func formConfig() *config.VerificationConfig {
	return &config.VerificationConfig{
		Criteria:   config.CriteriaAny,
		AutoUpdate: true,
		Keys: map[string]config.ChannelConfig{
			"email": {
				CodeFormat:      verification.CodeFormatComplex,
				Provider:        config.ProviderConfig{Name: "debug"},
				SuccessRedirect: "http://app.example.com/email-verified",
			},
			"phone": {
				CodeFormat:      verification.CodeFormatNumeric,
				Provider:        config.ProviderConfig{Name: "debug"},
				SuccessRedirect: "http://app.example.com/phone-verified",
			},
		},
	}
}

type formFixture struct {
	handler  *Handler
	svc      *verification.Service
	accounts *account.InMemRepository
	email    *notification.MockProvider
	phone    *notification.MockProvider
}

func newFormFixture(t *testing.T, cfg *config.VerificationConfig) *formFixture {
	t.Helper()
	f := &formFixture{
		accounts: account.NewInMemRepository(),
		email:    &notification.MockProvider{},
		phone:    &notification.MockProvider{},
	}
	svc, err := verification.NewService(f.accounts, verification.NewInMemCodeRepository(), cfg,
		verification.WithAppInfo("testapp", "http://localhost:4000"),
		verification.WithProvider("email", f.email),
		verification.WithProvider("phone", f.phone),
	)
	require.NoError(t, err)
	f.svc = svc
	f.handler = NewHandler(svc, cfg)
	return f
}

func TestHandleForm(t *testing.T) {
	ctx := context.Background()

	t.Run("RedirectsToSubmittedChannel", func(t *testing.T) {
		// With another channel already verified, the redirect still follows
		// the channel the submitted code belongs to. Repeated to cover map
		// iteration order over the configured channels.
		for i := 0; i < 10; i++ {
			f := newFormFixture(t, formConfig())
			acct, err := f.accounts.Save(ctx, &account.Account{
				Email:         "alice@example.com",
				Phone:         "+15551234567",
				VerifiedFlags: map[string]bool{"email": true},
			})
			require.NoError(t, err)

			require.NoError(t, f.svc.RequestVerification(ctx, acct.ID, "phone"))
			require.Len(t, f.phone.Sent, 1)
			code := f.phone.Sent[0].Data["Code"]

			req := httptest.NewRequest(http.MethodGet,
				"/verify-code/form?auth_id="+acct.ID.String()+"&code="+code, nil)
			w := httptest.NewRecorder()
			f.handler.HandleForm(w, req)

			require.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "http://app.example.com/phone-verified", w.Header().Get("Location"))
		}
	})

	t.Run("RendersSuccessPageWithoutRedirect", func(t *testing.T) {
		cfg := formConfig()
		emailCfg := cfg.Keys["email"]
		emailCfg.SuccessRedirect = ""
		cfg.Keys["email"] = emailCfg

		f := newFormFixture(t, cfg)
		acct, err := f.accounts.Save(ctx, &account.Account{Email: "alice@example.com"})
		require.NoError(t, err)

		require.NoError(t, f.svc.RequestVerification(ctx, acct.ID, "email"))
		code := f.email.Sent[0].Data["Code"]

		req := httptest.NewRequest(http.MethodGet,
			"/verify-code/form?auth_id="+acct.ID.String()+"&code="+code, nil)
		w := httptest.NewRecorder()
		f.handler.HandleForm(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "verified")
	})

	t.Run("WrongCodeRendersError", func(t *testing.T) {
		f := newFormFixture(t, formConfig())
		acct, err := f.accounts.Save(ctx, &account.Account{Email: "alice@example.com"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet,
			"/verify-code/form?auth_id="+acct.ID.String()+"&code=nope", nil)
		w := httptest.NewRecorder()
		f.handler.HandleForm(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingParameters", func(t *testing.T) {
		f := newFormFixture(t, formConfig())

		req := httptest.NewRequest(http.MethodGet, "/verify-code/form", nil)
		w := httptest.NewRecorder()
		f.handler.HandleForm(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
