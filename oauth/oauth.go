package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/Luismorlan/rambagiza/account"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	GoogleUserInfoURL   = "https://openidconnect.googleapis.com/v1/userinfo"
	FacebookUserInfoURL = "https://graph.facebook.com/v12.0/me?fields=id,email,first_name,last_name,name,picture.type(large)"
)

var (
	googleEndpoint = oauth2.Endpoint{
		AuthURL:   "https://accounts.google.com/o/oauth2/auth",
		TokenURL:  "https://oauth2.googleapis.com/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	facebookEndpoint = oauth2.Endpoint{
		AuthURL:  "https://www.facebook.com/v12.0/dialog/oauth",
		TokenURL: "https://graph.facebook.com/v12.0/oauth/access_token",
	}
)

var ErrUnknownProvider = account.ErrUnknownProvider

// Provider is one OAuth login option.
type Provider struct {
	Name        string
	Config      *oauth2.Config
	UserInfoURL string
}

// userInfo covers both the google and the facebook profile shapes.
type userInfo struct {
	Sub        string          `json:"sub"`
	Id         string          `json:"id"`
	Email      string          `json:"email"`
	GivenName  string          `json:"given_name"`
	FamilyName string          `json:"family_name"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Name       string          `json:"name"`
	Picture    json.RawMessage `json:"picture"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// pictureUrl reads google's plain url or facebook's {"data":{"url":...}}.
func pictureUrl(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var url string
	if err := json.Unmarshal(raw, &url); err == nil {
		return url
	}
	var nested struct {
		Data struct {
			Url string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested.Data.Url
	}
	return ""
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.Config.AuthCodeURL(state)
}

// Profile exchanges the callback code and fetches who logged in.
func (p *Provider) Profile(ctx context.Context, code string) (*account.OAuthProfile, error) {
	token, err := p.Config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to exchange %s oauth code", p.Name)
	}
	resp, err := p.Config.Client(ctx, token).Get(p.UserInfoURL)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to fetch %s profile", p.Name)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s profile request returned %s", p.Name, resp.Status)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.Wrapf(err, "fail to decode %s profile", p.Name)
	}
	profile := &account.OAuthProfile{
		Provider:  p.Name,
		Subject:   firstNonEmpty(info.Sub, info.Id),
		Email:     info.Email,
		Firstname: firstNonEmpty(info.GivenName, info.FirstName),
		Lastname:  firstNonEmpty(info.FamilyName, info.LastName),
		Fullname:  info.Name,
		Image:     pictureUrl(info.Picture),
	}
	if profile.Subject == "" {
		return nil, fmt.Errorf("%s profile has no subject", p.Name)
	}
	return profile, nil
}

func NewGoogleProvider(clientID string, clientSecret string, callbackURL string) *Provider {
	return &Provider{
		Name: account.ProviderGoogle,
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     googleEndpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		UserInfoURL: GoogleUserInfoURL,
	}
}

func NewFacebookProvider(appID string, appSecret string, callbackURL string) *Provider {
	return &Provider{
		Name: account.ProviderFacebook,
		Config: &oauth2.Config{
			ClientID:     appID,
			ClientSecret: appSecret,
			RedirectURL:  callbackURL,
			Endpoint:     facebookEndpoint,
			Scopes:       []string{"email", "public_profile"},
		},
		UserInfoURL: FacebookUserInfoURL,
	}
}

// Providers is the set of configured login options by name.
type Providers map[string]*Provider

// NewProvidersFromEnv enables each provider whose client id is set.
func NewProvidersFromEnv() Providers {
	providers := Providers{}
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		providers[account.ProviderGoogle] = NewGoogleProvider(id, os.Getenv("GOOGLE_CLIENT_SECRET"), os.Getenv("GOOGLE_CALLBACK_URL"))
	}
	if id := os.Getenv("FB_APP_ID"); id != "" {
		providers[account.ProviderFacebook] = NewFacebookProvider(id, os.Getenv("FB_APP_SECRET"), os.Getenv("FACEBOOK_CALLBACK_URL"))
	}
	return providers
}

func (ps Providers) Get(name string) (*Provider, error) {
	p, ok := ps[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// NewState returns an unguessable value for the oauth state parameter.
func NewState() string {
	return uuid.New().String()
}
