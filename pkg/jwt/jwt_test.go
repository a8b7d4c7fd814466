package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		expiration time.Duration
		secret     string
		wantErr    bool
	}{
		{
			name:       "valid token generation",
			username:   "alice",
			expiration: 15 * time.Minute,
			secret:     "test-secret-key-32-characters!",
			wantErr:    false,
		},
		{
			name:       "short expiration",
			username:   "bob",
			expiration: 1 * time.Second,
			secret:     "test-secret",
			wantErr:    false,
		},
		{
			name:       "default lifetime",
			username:   "carol",
			expiration: 24 * time.Hour,
			secret:     "test-secret",
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.username, tt.expiration, tt.secret)

			if tt.wantErr {
				if err == nil {
					t.Error("GenerateToken() expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("GenerateToken() error = %v", err)
				return
			}

			if token == "" {
				t.Error("GenerateToken() returned empty token")
			}

			if strings.Count(token, ".") != 2 {
				t.Errorf("GenerateToken() token is not compact JWS: %s", token)
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	username := "test-user"
	secret := "validation-secret-key-32-chars"

	validToken, _ := GenerateToken(username, 1*time.Hour, secret)
	expiredToken, _ := GenerateToken(username, -1*time.Hour, secret)

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErr   error
		checkName bool
	}{
		{
			name:      "valid token",
			token:     validToken,
			secret:    secret,
			checkName: true,
		},
		{
			name:    "expired token",
			token:   expiredToken,
			secret:  secret,
			wantErr: ErrTokenExpired,
		},
		{
			name:    "wrong secret",
			token:   validToken,
			secret:  "wrong-secret",
			wantErr: ErrTokenSignature,
		},
		{
			name:    "invalid token format",
			token:   "invalid.token.format",
			secret:  secret,
			wantErr: ErrTokenMalformed,
		},
		{
			name:    "empty token",
			token:   "",
			secret:  secret,
			wantErr: ErrTokenEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateToken() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("ValidateToken() error = %v", err)
				return
			}

			if claims == nil {
				t.Error("ValidateToken() returned nil claims")
				return
			}

			if tt.checkName && claims.Username != username {
				t.Errorf("ValidateToken() username = %v, want %v", claims.Username, username)
			}
			if tt.checkName && claims.Subject != username {
				t.Errorf("ValidateToken() subject = %v, want %v", claims.Subject, username)
			}
		})
	}
}

func TestCodec_VerifyCollapsesFailures(t *testing.T) {
	codec := NewCodec("codec-secret", time.Hour)
	other := NewCodec("other-secret", time.Hour)
	expired := NewCodec("codec-secret", -time.Minute)

	issued, err := codec.Issue("dave")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	forged, _ := other.Issue("dave")
	stale, _ := expired.Issue("dave")

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "freshly issued", token: issued, want: true},
		{name: "forged with other secret", token: forged, want: false},
		{name: "expired", token: stale, want: false},
		{name: "garbage", token: "not-a-token", want: false},
		{name: "empty", token: "", want: false},
		{name: "truncated signature", token: issued[:len(issued)-4], want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codec.Verify(tt.token); got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodec_Subject(t *testing.T) {
	codec := NewCodec("subject-secret", time.Hour)

	token, err := codec.Issue("erin")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if got := codec.Subject(token); got != "erin" {
		t.Errorf("Subject() = %q, want %q", got, "erin")
	}

	if got := codec.Subject("bogus"); got != "" {
		t.Errorf("Subject() on invalid token = %q, want empty", got)
	}
}

func TestClaimsTimestamps(t *testing.T) {
	username := "timestamp-user"
	secret := "timestamp-test-secret"
	expiration := 24 * time.Hour

	before := time.Now().Add(-1 * time.Second)
	token, err := GenerateToken(username, expiration, secret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	after := time.Now().Add(1 * time.Second)

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	issuedAt := claims.IssuedAt.Time
	if issuedAt.Before(before) || issuedAt.After(after) {
		t.Errorf("IssuedAt timestamp out of expected range: got %v, range [%v, %v]",
			issuedAt, before, after)
	}

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := before.Add(expiration)
	upperBound := after.Add(expiration)
	if expiresAt.Before(expectedExpiry) || expiresAt.After(upperBound) {
		t.Errorf("ExpiresAt timestamp out of expected range: got %v, range [%v, %v]",
			expiresAt, expectedExpiry, upperBound)
	}
}

func BenchmarkGenerateToken(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := GenerateToken("benchmark-user", 15*time.Minute, "benchmark-secret-key")
		if err != nil {
			b.Fatalf("GenerateToken() error = %v", err)
		}
	}
}

func BenchmarkValidateToken(b *testing.B) {
	token, _ := GenerateToken("benchmark-user", 15*time.Minute, "benchmark-secret-key")

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := ValidateToken(token, "benchmark-secret-key")
		if err != nil {
			b.Fatalf("ValidateToken() error = %v", err)
		}
	}
}
