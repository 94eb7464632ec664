package authmw

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/auth"
)

const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxIdentity = "identity"
	CtxToken    = "token"
)

const bearerPrefix = "Bearer "

// bearerToken strips the Bearer scheme. Without strict, a header that has no
// scheme is taken as the raw token.
func bearerToken(header string, strict bool) (string, bool) {
	if len(header) >= len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):]), true
	}
	if strict {
		return "", false
	}
	return strings.TrimSpace(header), true
}

func setUserContext(c echo.Context, id auth.Identity, token string) {
	c.Set(CtxIdentity, id)
	c.Set(CtxToken, token)
	c.Set(CtxUserID, id.ID)
	c.Set(CtxRole, id.Role)
}

func IdentityFrom(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(CtxIdentity).(auth.Identity)
	return id, ok
}

func TokenFrom(c echo.Context) string {
	tok, _ := c.Get(CtxToken).(string)
	return tok
}
