package jwt

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"ridepool/internal/domain/user"
)

func TestIssueAndParseRoundtrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	token, claims, err := mgr.IssueUserToken("user-1", user.RoleRider)
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != user.RoleRider {
		t.Fatalf("claims = %+v", claims)
	}

	_, parsed, err := mgr.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if parsed.Subject != "user-1" || parsed.Role != user.RoleRider {
		t.Fatalf("parsed claims = %+v", parsed)
	}
}

func TestIssueRejectsInvalidRole(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	if _, _, err := mgr.IssueUserToken("user-1", user.Role("DRIVER")); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	token, _, err := mgr.IssueUserToken("user-1", user.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}

	if _, _, err := other.ParseAndValidate(token); err == nil {
		t.Fatal("expected signature validation failure")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)

	token, _, err := mgr.IssueUserToken("user-1", user.RoleRider)
	if err != nil {
		t.Fatalf("IssueUserToken: %v", err)
	}

	if _, _, err := mgr.ParseAndValidate(token); err == nil {
		t.Fatal("expected expiry validation failure")
	}
}

func TestFromAuthorization(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"missing", "", ErrNoAuthHeader},
		{"wrong scheme", "Basic abc", ErrBadAuthScheme},
		{"empty token", "Bearer   ", ErrEmptyToken},
		{"ok", "Bearer abc.def.ghi", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			token, err := FromAuthorization(r)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || token != "abc.def.ghi" {
				t.Fatalf("token = %q, err = %v", token, err)
			}
		})
	}
}

func TestRoleAllowed(t *testing.T) {
	cl := NewUserClaims("user-1", user.RoleRider, time.Hour)

	if err := RoleAllowed(cl, user.RoleRider, user.RoleAdmin); err != nil {
		t.Fatalf("RoleAllowed: %v", err)
	}
	if err := RoleAllowed(cl, user.RoleAdmin); !errors.Is(err, ErrRoleForbidden) {
		t.Fatalf("err = %v, want ErrRoleForbidden", err)
	}
}
