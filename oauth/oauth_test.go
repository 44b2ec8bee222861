package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newFakeProviderServer(t *testing.T, profileJSON string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Nil(t, r.ParseForm())
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, profileJSON)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func pointAt(p *Provider, srv *httptest.Server) *Provider {
	p.Config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	p.UserInfoURL = srv.URL + "/userinfo"
	return p
}

func TestGoogleProfile(t *testing.T) {
	srv := newFakeProviderServer(t, `{"sub":"g-1","email":"ann@example.com","given_name":"Ann","family_name":"Lee","name":"Ann Lee","picture":"https://img/ann.jpg"}`)
	p := pointAt(NewGoogleProvider("id", "secret", "http://localhost/auth/google/callback"), srv)

	profile, err := p.Profile(context.Background(), "the-code")
	require.Nil(t, err)
	assert.Equal(t, &account.OAuthProfile{
		Provider:  account.ProviderGoogle,
		Subject:   "g-1",
		Email:     "ann@example.com",
		Firstname: "Ann",
		Lastname:  "Lee",
		Fullname:  "Ann Lee",
		Image:     "https://img/ann.jpg",
	}, profile)
}

func TestFacebookProfile(t *testing.T) {
	srv := newFakeProviderServer(t, `{"id":"fb-9","first_name":"Bo","last_name":"Ng","name":"Bo Ng","picture":{"data":{"url":"https://img/bo.jpg"}}}`)
	p := pointAt(NewFacebookProvider("id", "secret", "http://localhost/auth/facebook/callback"), srv)

	profile, err := p.Profile(context.Background(), "the-code")
	require.Nil(t, err)
	assert.Equal(t, account.ProviderFacebook, profile.Provider)
	assert.Equal(t, "fb-9", profile.Subject)
	assert.Equal(t, "", profile.Email)
	assert.Equal(t, "Bo", profile.Firstname)
	assert.Equal(t, "https://img/bo.jpg", profile.Image)
}

func TestProfileWithoutSubject(t *testing.T) {
	srv := newFakeProviderServer(t, `{"email":"x@example.com"}`)
	p := pointAt(NewGoogleProvider("id", "secret", ""), srv)
	_, err := p.Profile(context.Background(), "the-code")
	assert.NotNil(t, err)
}

func TestAuthCodeURL(t *testing.T) {
	p := NewGoogleProvider("client-1", "secret", "http://localhost/auth/google/callback")
	parsed, err := url.Parse(p.AuthCodeURL("state-xyz"))
	require.Nil(t, err)
	q := parsed.Query()
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "state-xyz", q.Get("state"))
	assert.Equal(t, "http://localhost/auth/google/callback", q.Get("redirect_uri"))
}

func TestNewProvidersFromEnv(t *testing.T) {
	os.Setenv("GOOGLE_CLIENT_ID", "gid")
	os.Unsetenv("FB_APP_ID")
	defer os.Unsetenv("GOOGLE_CLIENT_ID")

	providers := NewProvidersFromEnv()
	_, err := providers.Get(account.ProviderGoogle)
	assert.Nil(t, err)
	_, err = providers.Get(account.ProviderFacebook)
	assert.Equal(t, ErrUnknownProvider, err)
	assert.NotEqual(t, NewState(), NewState())
}
