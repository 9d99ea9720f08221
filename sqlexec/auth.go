package sqlexec

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Credentials for the password grant against <apiBase>/token.
type Credentials struct {
	ClientID     string
	ClientSecret string
	User         string
	Password     string
}

// NewHTTPClient returns a plain client with the given timeout, or, when
// credentials carry a user, a client that attaches (and refreshes) a bearer
// token obtained with the password grant.
func NewHTTPClient(ctx context.Context, apiBase string, creds Credentials, timeout time.Duration) (*http.Client, error) {
	base := &http.Client{Timeout: timeout}
	if creds.User == "" {
		return base, nil
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  apiBase + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	tok, err := conf.PasswordCredentialsToken(ctx, creds.User, creds.Password)
	if err != nil {
		return nil, errors.Wrap(err, "obtain proxy token")
	}

	client := conf.Client(ctx, tok)
	client.Timeout = timeout
	return client, nil
}
