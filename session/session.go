// Package session resolves the user identity and access token that every test in a run acts as.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vkqa/likes-contract-tests/config"
	"github.com/vkqa/likes-contract-tests/vkapi"
)

// Credential is the resolved identity for a run. It is created once by Resolve and never
// modified; pass it to whatever needs it.
type Credential struct {
	userID      int
	accessToken string
}

// NewCredential creates a Credential and checks its invariants.
func NewCredential(userID int, accessToken string) (Credential, error) {
	c := Credential{userID: userID, accessToken: accessToken}
	if err := c.Validate(); err != nil {
		return Credential{}, err
	}
	return c, nil
}

func (c Credential) UserID() int { return c.userID }

func (c Credential) AccessToken() string { return c.accessToken }

// Actor returns the credential in the form the API client takes.
func (c Credential) Actor() vkapi.UserActor {
	return vkapi.UserActor{ID: c.userID, AccessToken: c.accessToken}
}

func (c Credential) Validate() error {
	if c.userID <= 0 {
		return fmt.Errorf("user id must be positive, got %d", c.userID)
	}
	if c.accessToken == "" {
		return errors.New("access token is empty")
	}
	return nil
}

// String never includes the token.
func (c Credential) String() string {
	return fmt.Sprintf("user %d", c.userID)
}

// Exchanger trades an authorization code for a user token. *vkapi.AuthCodeFlow implements it.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (vkapi.UserAuthResponse, error)
}

// AuthorizationError means the code exchange failed. The run cannot continue.
type AuthorizationError struct {
	AppID int
	Err   error
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization code flow for app %d failed: %s", e.AppID, e.Err)
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// Bootstrap holds what Resolve needs besides the credentials themselves.
type Bootstrap struct {
	// TokenURL overrides vkapi.DefaultTokenURL.
	TokenURL string
	// HTTPClient is used for the exchange; nil means http.DefaultClient.
	HTTPClient *http.Client
	Logger     logrus.FieldLogger
	// NewExchanger overrides how the Exchanger is built; nil means a vkapi.AuthCodeFlow.
	NewExchanger func(config.Credentials) Exchanger
}

// Resolve validates the credentials and performs a single authorization-code exchange.
//
// Missing settings are reported as a *config.ValidationError before any network call. A failed
// exchange is reported as an *AuthorizationError; it is not retried since the code is single-use.
func (b Bootstrap) Resolve(ctx context.Context, creds config.Credentials) (Credential, error) {
	logger := b.Logger
	if logger == nil {
		silent := logrus.New()
		silent.SetOutput(ioutil.Discard)
		logger = silent
	}

	if err := creds.Validate(); err != nil {
		return Credential{}, err
	}

	var exchanger Exchanger
	if b.NewExchanger != nil {
		exchanger = b.NewExchanger(creds)
	} else {
		exchanger = vkapi.NewAuthCodeFlow(creds.AppID, creds.ClientSecret, creds.RedirectURI, b.TokenURL, b.HTTPClient)
	}

	log := logger.WithField("appId", creds.AppID)
	log.Info("Exchanging authorization code")
	auth, err := exchanger.Exchange(ctx, creds.AuthorizationCode)
	if err != nil {
		log.WithError(err).Warn("API server error")
		return Credential{}, &AuthorizationError{AppID: creds.AppID, Err: err}
	}

	cred, err := NewCredential(auth.UserID, auth.AccessToken)
	if err != nil {
		log.WithError(err).Warn("Token response was unusable")
		return Credential{}, &AuthorizationError{AppID: creds.AppID, Err: err}
	}

	log.WithField("userId", cred.UserID()).Infof("Authorization Code Flow for userId: %d successfully done", cred.UserID())
	return cred, nil
}
