package edmapi

import (
	"context"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
)

// LoginResult is the payload of /auth/login
type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

// Login exchanges the stored credentials for a bearer token and attaches it to every later request
func (c *Client) Login(ctx context.Context) error {
	if c.Creds == nil {
		return errors.Wrap(errors.ErrLoginFailed, "no credentials configured")
	}

	var result LoginResult
	if err := c.Post(ctx, "/auth/login", c.Creds, &result); err != nil {
		return errors.Wrap(errors.ErrLoginFailed, err.Error())
	}
	if result.AccessToken == "" {
		return errors.Wrap(errors.ErrLoginFailed, "response carried no access token")
	}

	c.Client.SetCommonBearerAuthToken(result.AccessToken)
	return nil
}

// UserInfo is the signed-in admin as reported by /user/info
type UserInfo struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	RealName string   `json:"realName"`
	Roles    []string `json:"roles"`
}

// CurrentUser returns the account the client is authenticated as
func (c *Client) CurrentUser(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.Get(ctx, "/user/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}
