package postgres

import (
	"net/url"
	"testing"
	"time"
)

func TestWithConnectTimeout(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		timeout time.Duration
		want    string
	}{
		{
			name:    "adds parameter",
			dsn:     "postgres://insights:pw@localhost:5432/insights?sslmode=disable",
			timeout: 5 * time.Second,
			want:    "5",
		},
		{
			name:    "rounds sub-second up to one",
			dsn:     "postgres://localhost/insights",
			timeout: 250 * time.Millisecond,
			want:    "1",
		},
		{
			name:    "truncates to whole seconds",
			dsn:     "postgres://localhost/insights",
			timeout: 2500 * time.Millisecond,
			want:    "2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn, err := withConnectTimeout(tt.dsn, tt.timeout)
			if err != nil {
				t.Fatalf("withConnectTimeout: %v", err)
			}
			u, err := url.Parse(dsn)
			if err != nil {
				t.Fatalf("result does not parse: %v", err)
			}
			if got := u.Query().Get("connect_timeout"); got != tt.want {
				t.Errorf("connect_timeout = %q, want %q", got, tt.want)
			}
			if u.Query().Get("sslmode") != "" && u.Query().Get("sslmode") != "disable" {
				t.Errorf("existing query parameters were mangled: %s", dsn)
			}
		})
	}

	if _, err := withConnectTimeout("://not-a-url", time.Second); err == nil {
		t.Error("expected error for malformed DSN")
	}
}
