package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthJWTRoundTrip(t *testing.T) {
	const secret = "test-secret"
	token, err := SignJWT(secret, TokenClaims{
		Sub:    "user-1",
		Org:    "org-1",
		Locale: "id",
		Exp:    time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	var gotUser, gotOrg, gotLocale string
	handler := AuthJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotOrg = OrgIDFromContext(r.Context())
		gotLocale = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != "user-1" || gotOrg != "org-1" || gotLocale != "id" {
		t.Fatalf("identity = %q/%q/%q", gotUser, gotOrg, gotLocale)
	}
}

func TestAuthJWTRejections(t *testing.T) {
	const secret = "test-secret"
	okToken, _ := SignJWT(secret, TokenClaims{Sub: "u", Org: "o"})
	noOrgToken, _ := SignJWT(secret, TokenClaims{Sub: "u"})
	expiredToken, _ := SignJWT(secret, TokenClaims{Sub: "u", Org: "o", Exp: time.Now().Add(-time.Minute).Unix()})
	wrongKeyToken, _ := SignJWT("other-secret", TokenClaims{Sub: "u", Org: "o"})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + wrongKeyToken, http.StatusUnauthorized},
		{"expired", "Bearer " + expiredToken, http.StatusUnauthorized},
		{"missing org claim", "Bearer " + noOrgToken, http.StatusUnauthorized},
		{"valid", "Bearer " + okToken, http.StatusOK},
	}
	handler := AuthJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
