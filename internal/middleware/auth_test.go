package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerAuth(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		expectedCode int
		expectedJWT  string
	}{
		{
			name:         "missing header",
			header:       "",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "wrong scheme",
			header:       "Basic dXNlcjpwYXNz",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "bearer with empty token",
			header:       "Bearer ",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "lowercase scheme",
			header:       "bearer abc.def.ghi",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "valid token",
			header:       "Bearer abc.def.ghi",
			expectedCode: http.StatusOK,
			expectedJWT:  "abc.def.ghi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotJWT string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotJWT = GetJWTFromContext(r.Context())
			})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/repos/list", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			BearerAuth(next).ServeHTTP(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if gotJWT != tt.expectedJWT {
				t.Errorf("expected jwt %q in context, got %q", tt.expectedJWT, gotJWT)
			}
		})
	}
}

func TestGetJWTFromContext_Missing(t *testing.T) {
	if got := GetJWTFromContext(context.Background()); got != "" {
		t.Errorf("expected empty jwt for a bare context, got %q", got)
	}
}
