package shared

import (
	"errors"
	"reflect"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	orig := getRuntime
	t.Cleanup(func() { getRuntime = orig })

	tests := []struct {
		name    string
		goos    string
		browser string
		want    []string
	}{
		{"macOS", "darwin", "", []string{"open", "http://x"}},
		{"linux", "linux", "", []string{"xdg-open", "http://x"}},
		{"windows", "windows", "", []string{"rundll32", "url.dll,FileProtocolHandler", "http://x"}},
		{"env override", "darwin", "firefox --new-tab", []string{"firefox", "--new-tab", "http://x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvBrowser, tt.browser)
			getRuntime = func() string { return tt.goos }

			cmd, err := BrowserCommand("http://x")
			if err != nil {
				t.Fatalf("BrowserCommand() error = %v", err)
			}
			if !reflect.DeepEqual(cmd.Args, tt.want) {
				t.Errorf("Args = %v, want %v", cmd.Args, tt.want)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		t.Setenv(EnvBrowser, "")
		getRuntime = func() string { return "plan9" }

		if _, err := BrowserCommand("http://x"); !errors.Is(err, ErrServiceUnavailable) {
			t.Errorf("error = %v, want ErrServiceUnavailable", err)
		}
	})
}
