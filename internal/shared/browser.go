package shared

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

var getRuntime = func() string { return runtime.GOOS }

// EnvBrowser names a browser command that takes precedence over the platform default.
const EnvBrowser = "BROWSER"

// BrowserCommand returns the command that opens url in the user's browser.
//
// $BROWSER wins when set; otherwise macOS, Linux, and Windows defaults are used.
func BrowserCommand(url string) (*exec.Cmd, error) {
	if b := strings.TrimSpace(os.Getenv(EnvBrowser)); b != "" {
		fields := strings.Fields(b)
		return exec.Command(fields[0], append(fields[1:], url)...), nil
	}

	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("%w: no browser launcher for %s", ErrServiceUnavailable, rt)
	}
}

// OpenBrowser starts the browser on url without waiting for it to exit.
func OpenBrowser(url string) error {
	cmd, err := BrowserCommand(url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
