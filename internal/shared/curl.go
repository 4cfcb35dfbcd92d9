// Utilities for parsing cURL commands copied from browser developer tools.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRe = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	curlCookieRe = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
	curlURLRe    = regexp.MustCompile(`curl\s+(?:'([^']+)'|"([^"]+)"|(https?://\S+))`)
)

// CurlRequest holds the parts of a cURL command needed to reuse a browser session.
type CurlRequest struct {
	URL     string
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and extracts its headers.
func ParseCurlFile(path string) (*CurlRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts headers, cookies and the target URL.
//
// Cookies given with -b take precedence over a Cookie header.
func ParseCurlCommand(cmd string) (*CurlRequest, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	req := &CurlRequest{Headers: make(map[string]string)}
	var headerCookie string

	for _, match := range curlHeaderRe.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		req.Headers[key] = value
	}

	if match := curlCookieRe.FindStringSubmatch(cmd); match != nil {
		req.Cookie = firstGroup(match)
	} else {
		req.Cookie = headerCookie
	}

	if match := curlURLRe.FindStringSubmatch(cmd); match != nil {
		req.URL = firstGroup(match)
	}

	if len(req.Headers) == 0 && req.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return req, nil
}

// Header returns the value of the named header, matched case-insensitively.
func (c *CurlRequest) Header(name string) string {
	key := http.CanonicalHeaderKey(name)
	for k, v := range c.Headers {
		if http.CanonicalHeaderKey(k) == key {
			return v
		}
	}
	return ""
}

// BearerToken returns the token carried by an "Authorization: Bearer" header.
func (c *CurlRequest) BearerToken() (string, error) {
	auth := c.Header("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: no bearer token in curl command", ErrMissingCredentials)
	}
	return strings.TrimSpace(token), nil
}

func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
