package bearer_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/posternauth/postern/pkg/bearer"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testCodec(t *testing.T) *bearer.Codec {
	t.Helper()
	return bearer.NewCodec(testSecret)
}

func TestIssue(t *testing.T) {
	c := testCodec(t)
	c.Now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 30, 45, 678_000_000, time.UTC)
	}

	tok := c.Issue("user-1", time.Hour, "1.2.3.4")
	require.Equal(t, "user-1", tok.Subject)
	require.Equal(t, time.Hour, tok.Lifespan)
	require.Equal(t, "1.2.3.4", tok.Origin)

	// Issue time carries wire precision: whole seconds, UTC.
	require.Equal(t, time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC), tok.IssuedAt)
}

func TestRoundTrip(t *testing.T) {
	c := testCodec(t)

	cases := []struct {
		name     string
		subject  string
		lifespan time.Duration
		origin   string
	}{
		{"bounded with origin", "user-1", 90 * time.Minute, "10.0.0.7"},
		{"bounded without origin", "user-2", 1500 * time.Millisecond, ""},
		{"unbounded with origin", "svc-account", bearer.Unbounded, "192.168.1.1"},
		{"unbounded without origin", "user-3", bearer.Unbounded, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			issued := c.Issue(tc.subject, tc.lifespan, tc.origin)

			compact, err := c.Encode(issued)
			require.NoError(t, err)
			require.NotEmpty(t, compact)

			decoded, err := c.Decode(compact)
			require.NoError(t, err)

			require.Equal(t, issued.Subject, decoded.Subject)
			require.Equal(t, issued.Lifespan, decoded.Lifespan)
			require.Equal(t, issued.Origin, decoded.Origin)
			require.WithinDuration(t, issued.IssuedAt, decoded.IssuedAt, 0)
		})
	}
}

func TestTamperDetection(t *testing.T) {
	c := testCodec(t)

	compact, err := c.Encode(c.Issue("user-1", time.Hour, "1.2.3.4"))
	require.NoError(t, err)

	parts := strings.Split(compact, ".")
	require.Len(t, parts, 3)

	flip := func(s string) string {
		b := []byte(s)
		if b[0] == 'A' {
			b[0] = 'B'
		} else {
			b[0] = 'A'
		}
		return string(b)
	}

	t.Run("tampered field block", func(t *testing.T) {
		mangled := parts[0] + "." + flip(parts[1]) + "." + parts[2]
		_, err := c.Decode(mangled)
		require.ErrorIs(t, err, bearer.ErrMalformed)
	})

	t.Run("tampered signature", func(t *testing.T) {
		mangled := parts[0] + "." + parts[1] + "." + flip(parts[2])
		_, err := c.Decode(mangled)
		require.ErrorIs(t, err, bearer.ErrMalformed)
	})

	t.Run("signed with a different secret", func(t *testing.T) {
		other := bearer.NewCodec([]byte("another-secret-another-secret-ab"))
		foreign, err := other.Encode(other.Issue("user-1", time.Hour, ""))
		require.NoError(t, err)

		_, err = c.Decode(foreign)
		require.ErrorIs(t, err, bearer.ErrMalformed)
	})

	t.Run("garbage input", func(t *testing.T) {
		for _, s := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
			_, err := c.Decode(s)
			require.ErrorIs(t, err, bearer.ErrMalformed)
		}
	})
}

func TestDecodeRequiresSubjectAndIssuedAt(t *testing.T) {
	c := testCodec(t)

	sign := func(t *testing.T, cl jwt.MapClaims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(testSecret)
		require.NoError(t, err)
		return s
	}

	t.Run("missing subject", func(t *testing.T) {
		compact := sign(t, jwt.MapClaims{"iat": time.Now().Unix(), "lsp": int64(1000)})
		_, err := c.Decode(compact)
		require.ErrorIs(t, err, bearer.ErrMalformed)
	})

	t.Run("missing issued-at", func(t *testing.T) {
		compact := sign(t, jwt.MapClaims{"sub": "user-1", "lsp": int64(1000)})
		_, err := c.Decode(compact)
		require.ErrorIs(t, err, bearer.ErrMalformed)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "user-1",
			"iat": time.Now().Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = c.Decode(unsigned)
		require.ErrorIs(t, err, bearer.ErrMalformed)
	})
}

func TestDecodeDoesNotEnforceExpiry(t *testing.T) {
	c := testCodec(t)
	c.Now = func() time.Time { return time.Now().Add(-time.Hour) }

	// Issued an hour ago with a one-second lifespan: long expired, but
	// expiry is acceptance policy, not decoding.
	compact, err := c.Encode(c.Issue("user-1", time.Second, ""))
	require.NoError(t, err)

	tok, err := c.Decode(compact)
	require.NoError(t, err)
	require.ErrorIs(t, tok.VerifyExpiry(time.Now()), bearer.ErrExpired)
}
