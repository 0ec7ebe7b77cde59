// Utilities for capturing a logged-in site session from a browser "Copy as cURL" export.
package shared

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	headerFlag = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	cookieFlag = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
)

// SiteSession is the header set and cookie string replayed on every site request.
type SiteSession struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and extracts the session.
func ParseCurlFile(path string) (*SiteSession, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(string(content))
}

// ParseCurlCommand extracts headers and cookies from a cURL command.
// A -b/--cookie flag wins over a Cookie header.
func ParseCurlCommand(curlCmd string) (*SiteSession, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	session := &SiteSession{Headers: make(map[string]string)}
	var headerCookie string

	for _, match := range headerFlag.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := splitHeader(firstGroup(match))
		if !ok {
			continue
		}
		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		session.Headers[key] = value
	}

	if match := cookieFlag.FindStringSubmatch(curlCmd); match != nil {
		session.Cookie = firstGroup(match)
	}
	if session.Cookie == "" {
		session.Cookie = headerCookie
	}

	if len(session.Headers) == 0 && session.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return session, nil
}

// LoadHeadersFile reads newline-separated "Key: Value" pairs written by [SiteSession.HeadersRaw].
func LoadHeadersFile(path string) (*SiteSession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read headers file: %w", err)
	}
	defer f.Close()

	session := &SiteSession{Headers: make(map[string]string)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitHeader(line)
		if !ok {
			continue
		}
		if strings.EqualFold(key, "cookie") {
			session.Cookie = value
			continue
		}
		session.Headers[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read headers file: %w", err)
	}
	return session, nil
}

// CookieValue returns the named cookie from the captured cookie string.
func (s *SiteSession) CookieValue(name string) string {
	if s.Cookie == "" {
		return ""
	}
	cookies, err := http.ParseCookie(s.Cookie)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// HeadersRaw renders the session as sorted "Key: Value" lines, cookie last.
func (s *SiteSession) HeadersRaw() string {
	keys := make([]string, 0, len(s.Headers))
	for k := range s.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, s.Headers[k]))
	}
	if s.Cookie != "" {
		lines = append(lines, "cookie: "+s.Cookie)
	}
	return strings.Join(lines, "\n")
}

func splitHeader(line string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}
