package vkapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL  = "https://oauth.vk.com/authorize"
	DefaultTokenURL = "https://oauth.vk.com/access_token"
)

// AuthCodeFlow exchanges a one-time authorization code for a user access token.
type AuthCodeFlow struct {
	config     oauth2.Config
	httpClient *http.Client
}

// NewAuthCodeFlow creates an AuthCodeFlow for an application. If tokenURL is empty,
// DefaultTokenURL is used; if httpClient is nil, http.DefaultClient is used.
func NewAuthCodeFlow(appID int, clientSecret, redirectURI, tokenURL string, httpClient *http.Client) *AuthCodeFlow {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &AuthCodeFlow{
		config: oauth2.Config{
			ClientID:     strconv.Itoa(appID),
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   DefaultAuthURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
	}
}

// Exchange performs the code exchange. The code is single-use, so callers must not retry
// with the same code.
func (f *AuthCodeFlow) Exchange(ctx context.Context, code string) (UserAuthResponse, error) {
	if f.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.httpClient)
	}
	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		return UserAuthResponse{}, err
	}
	userID, ok := extraInt(token, "user_id")
	if !ok {
		return UserAuthResponse{}, errors.New("token response did not contain a user_id")
	}
	expiresIn, _ := extraInt(token, "expires_in")
	return UserAuthResponse{
		UserID:      userID,
		AccessToken: token.AccessToken,
		ExpiresIn:   expiresIn,
	}, nil
}

func extraInt(token *oauth2.Token, key string) (int, bool) {
	switch v := token.Extra(key).(type) {
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
