package authmw

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/logging"
)

// Gate authenticates bearer tokens. Checks run in a fixed order: header
// presence, revocation, then signature and expiry.
type Gate struct {
	Codec       *auth.Codec
	Revocations auth.RevocationSet
	Strict      bool
}

// Required rejects the request with 401 unless a valid token is presented.
func (g *Gate) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, token, err := g.authenticate(c)
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) && he.Code == http.StatusUnauthorized {
					c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="api"`)
				}
				return err
			}
			setUserContext(c, id, token)
			return next(c)
		}
	}
}

// Optional attaches the identity when the token is valid and otherwise lets
// the request through anonymously.
func (g *Gate) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, token, err := g.authenticate(c)
			if err != nil {
				logging.FromContext(c.Request().Context()).Debug("optional_auth_skipped", "reason", err.Error())
				return next(c)
			}
			setUserContext(c, id, token)
			return next(c)
		}
	}
}

func (g *Gate) authenticate(c echo.Context) (auth.Identity, string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return auth.Identity{}, "", echo.NewHTTPError(http.StatusUnauthorized, "No authorization header provided")
	}

	token, ok := bearerToken(header, g.Strict)
	if !ok {
		return auth.Identity{}, "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization scheme")
	}
	if token == "" {
		return auth.Identity{}, "", echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
	}

	revoked, err := g.Revocations.IsRevoked(c.Request().Context(), token)
	if err != nil {
		return auth.Identity{}, "", echo.NewHTTPError(http.StatusInternalServerError, "Token verification failed").SetInternal(err)
	}
	if revoked {
		// a revoked token is never accepted, but expiry is still reported first
		if _, err := g.Codec.Verify(token); errors.Is(err, auth.ErrTokenExpired) {
			return auth.Identity{}, "", echo.NewHTTPError(http.StatusUnauthorized, "Token has expired").SetInternal(err)
		}
		return auth.Identity{}, "", echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
	}

	id, err := g.Codec.Verify(token)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return auth.Identity{}, "", echo.NewHTTPError(http.StatusUnauthorized, "Token has expired").SetInternal(err)
	case err != nil:
		return auth.Identity{}, "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid token").SetInternal(err)
	}
	return id, token, nil
}
