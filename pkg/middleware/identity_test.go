package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/provenance/pkg/middleware"
)

func TestExtractIdentity(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		wantOK  bool
		want    middleware.Identity
	}{
		{
			name: "full identity",
			headers: map[string]string{
				"X-User-Email":        "maker@pharma.example",
				"X-User-Role":         "manufacturer",
				"X-User-Organization": "Pharma Labs",
			},
			wantOK: true,
			want: middleware.Identity{
				Email:        "maker@pharma.example",
				Role:         "manufacturer",
				Organization: "Pharma Labs",
			},
		},
		{
			name: "email only",
			headers: map[string]string{
				"X-User-Email": "scanner@clinic.example",
			},
			wantOK: true,
			want:   middleware.Identity{Email: "scanner@clinic.example"},
		},
		{
			name:    "no headers yields zero identity",
			headers: map[string]string{},
			wantOK:  true,
			want:    middleware.Identity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got middleware.Identity
			var ok bool

			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, ok = middleware.IdentityFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			middleware.ExtractIdentity()(inner).ServeHTTP(rec, req)

			if ok != tt.wantOK {
				t.Fatalf("IdentityFrom ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("identity: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIdentityFromEmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := middleware.IdentityFrom(req.Context()); ok {
		t.Error("expected no identity on bare context")
	}
}
