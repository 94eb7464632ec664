package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCodec_IssueVerify(t *testing.T) {
	t.Parallel()

	now := time.Now().Truncate(time.Second)
	codec := NewCodec(testSecret, time.Hour, WithClock(fixedClock(now)))

	subjects := []Subject{
		{ID: "1", Username: "admin", Role: RoleAdmin},
		{ID: "2", Username: "user", Role: RoleUser},
		{ID: "3", Username: "guest", Role: RoleGuest},
	}

	for _, s := range subjects {
		s := s
		t.Run(s.Username, func(t *testing.T) {
			t.Parallel()

			token, exp, err := codec.Issue(s)
			require.NoError(t, err)
			require.NotEmpty(t, token)
			assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

			id, err := codec.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, s.ID, id.ID)
			assert.Equal(t, s.Username, id.Username)
			assert.Equal(t, s.Role, id.Role)
			assert.WithinDuration(t, now, id.IssuedAt, time.Second)
			assert.WithinDuration(t, exp, id.ExpiresAt, time.Second)
		})
	}
}

func TestCodec_Issue_RejectsBadSubject(t *testing.T) {
	t.Parallel()

	codec := NewCodec(testSecret, time.Hour)

	_, _, err := codec.Issue(Subject{Username: "x", Role: RoleUser})
	require.Error(t, err)

	_, _, err = codec.Issue(Subject{ID: "1", Username: "x"})
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestCodec_Verify_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Now().Add(-3 * time.Hour)
	issuer := NewCodec(testSecret, time.Hour, WithClock(fixedClock(issued)))
	token, _, err := issuer.Issue(Subject{ID: "1", Username: "admin", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = NewCodec(testSecret, time.Hour).Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenMalformed)
}

func TestCodec_Verify_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec(testSecret, time.Hour)
	good, _, err := codec.Issue(Subject{ID: "1", Username: "admin", Role: RoleAdmin})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: "root",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-jwt"},
		{name: "empty", token: ""},
		{name: "tampered payload", token: tamper(good)},
		{name: "other secret", token: mustIssue(t, NewCodec([]byte("other"), time.Hour))},
		{name: "alg none", token: noneToken},
		{name: "unknown role", token: badRole},
		{name: "no expiry", token: noExp},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := codec.Verify(tt.token)
			require.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func mustIssue(t *testing.T, c *Codec) string {
	t.Helper()
	tok, _, err := c.Issue(Subject{ID: "1", Username: "admin", Role: RoleAdmin})
	require.NoError(t, err)
	return tok
}

func tamper(token string) string {
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'e' {
		payload[0] = 'f'
	} else {
		payload[0] = 'e'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}
