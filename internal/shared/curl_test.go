package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantURL     string
		wantErr     bool
	}{
		{
			name:        "single header with single quotes",
			curlCmd:     `curl -H 'Authorization: Bearer token123' https://api.example.com`,
			wantHeaders: map[string]string{"Authorization": "Bearer token123"},
		},
		{
			name:        "single header with double quotes",
			curlCmd:     `curl -H "Authorization: Bearer token123" https://api.example.com`,
			wantHeaders: map[string]string{"Authorization": "Bearer token123"},
		},
		{
			name:        "cookie header is excluded from regular headers",
			curlCmd:     `curl -H 'Cookie: session=abc123' -H 'Authorization: Bearer token' https://api.example.com`,
			wantHeaders: map[string]string{"Authorization": "Bearer token"},
			wantCookie:  "session=abc123",
		},
		{
			name: "multiline curl with backslashes",
			curlCmd: `curl 'http://localhost:3001/api/users/profile' \
  -H 'accept: application/json' \
  -H 'authorization: Bearer abc.def.ghi' \
  --compressed`,
			wantHeaders: map[string]string{
				"accept":        "application/json",
				"authorization": "Bearer abc.def.ghi",
			},
			wantURL: "http://localhost:3001/api/users/profile",
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=value",
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl https://api.example.com`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand(tc.curlCmd)

			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("ParseCurlCommand() headers count = %v, want %v", len(result.Headers), len(tc.wantHeaders))
			}
			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("ParseCurlCommand() header[%s] = %v, want %v", key, got, want)
				}
			}
			if result.Cookie != tc.wantCookie {
				t.Errorf("ParseCurlCommand() cookie = %v, want %v", result.Cookie, tc.wantCookie)
			}
			if tc.wantURL != "" && result.URL != tc.wantURL {
				t.Errorf("ParseCurlCommand() url = %v, want %v", result.URL, tc.wantURL)
			}
		})
	}
}

func TestCurlRequest_BearerToken(t *testing.T) {
	tt := []struct {
		name    string
		headers map[string]string
		want    string
		wantErr bool
	}{
		{name: "canonical header", headers: map[string]string{"Authorization": "Bearer abc"}, want: "abc"},
		{name: "lowercase header and scheme", headers: map[string]string{"authorization": "bearer xyz"}, want: "xyz"},
		{name: "other scheme", headers: map[string]string{"Authorization": "Basic dXNlcg=="}, wantErr: true},
		{name: "empty token", headers: map[string]string{"Authorization": "Bearer "}, wantErr: true},
		{name: "missing header", headers: map[string]string{"Accept": "*/*"}, wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			req := &CurlRequest{Headers: tc.headers}
			got, err := req.BearerToken()
			if tc.wantErr {
				if !errors.Is(err, ErrMissingCredentials) {
					t.Errorf("expected ErrMissingCredentials, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("BearerToken() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")

		curlCmd := `curl -H 'Authorization: Bearer token123' -H 'Content-Type: application/json' https://api.example.com`
		if err := os.WriteFile(curlFile, []byte(curlCmd), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}

		if token, _ := result.BearerToken(); token != "token123" {
			t.Errorf("ParseCurlFile() token = %v, want token123", token)
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/file.sh"); err == nil {
			t.Error("ParseCurlFile() expected error for nonexistent file")
		}
	})
}
