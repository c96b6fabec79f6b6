// Package urlutils builds and validates the HTTPS remote URLs of progress
// repositories on github.com or an allowed GitHub Enterprise host.
package urlutils

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

var (
	// ErrInvalidURL indicates that the provided URL is not valid
	ErrInvalidURL = errors.New("invalid URL format")

	// ErrInvalidHost indicates that the host is not a valid GitHub instance
	ErrInvalidHost = errors.New("invalid GitHub host")

	// ErrInvalidPath indicates that the URL path is not a valid repository path
	ErrInvalidPath = errors.New("invalid repository path")

	// ErrNotHTTPS indicates that the URL does not use HTTPS protocol
	ErrNotHTTPS = errors.New("URL must use HTTPS protocol")

	// GitHub logins are at most 39 characters
	ownerRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	repoRegex  = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,100}$`)

	hostsMu sync.RWMutex
	// GitHub Enterprise Server hosts registered through AllowHost
	allowedGHEDomains = map[string]bool{}
)

// AllowHost registers a GitHub Enterprise Server host as valid
func AllowHost(host string) {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return
	}
	hostsMu.Lock()
	defer hostsMu.Unlock()
	allowedGHEDomains[host] = true
}

// RepoURL returns the HTTPS clone URL of fullName ("owner/repo") on host
func RepoURL(host, fullName string) (string, error) {
	if host == "" {
		host = "github.com"
	}
	raw := fmt.Sprintf("https://%s/%s.git", host, strings.Trim(fullName, "/"))
	if _, err := ParseHTTPSURL(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// ParseHTTPSURL parses and validates a GitHub HTTPS URL.
// It accepts URLs in the following formats:
//   - https://github.com/owner/repo
//   - https://github.com/owner/repo.git
//   - https://<allowed enterprise host>/owner/repo
func ParseHTTPSURL(rawURL string) (*url.URL, error) {
	if strings.HasPrefix(rawURL, "git@") || strings.HasPrefix(rawURL, "ssh://") {
		return nil, ErrNotHTTPS
	}
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, ErrInvalidURL
	}

	rawURL = sanitizeURL(strings.TrimSuffix(rawURL, ".git"))

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if !isValidGitHubHost(parsedURL.Host) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidHost, parsedURL.Host)
	}

	pathParts := strings.Split(strings.Trim(parsedURL.Path, "/"), "/")
	if len(pathParts) != 2 {
		return nil, fmt.Errorf("%w: URL must include owner and repository", ErrInvalidPath)
	}

	if !ownerRegex.MatchString(pathParts[0]) {
		return nil, fmt.Errorf("%w: invalid owner name format", ErrInvalidPath)
	}

	if !repoRegex.MatchString(pathParts[1]) {
		return nil, fmt.Errorf("%w: invalid repository name format", ErrInvalidPath)
	}

	return parsedURL, nil
}

// ValidateURL checks if the provided URL is a valid GitHub repository URL
func ValidateURL(rawURL string) error {
	_, err := ParseHTTPSURL(rawURL)
	return err
}

// IsLocal reports whether rawURL names a repository on the local filesystem
func IsLocal(rawURL string) bool {
	return strings.HasPrefix(rawURL, "file://") || filepath.IsAbs(rawURL)
}

// Redact strips any credentials from rawURL for logging
func Redact(rawURL string) string {
	return sanitizeURL(rawURL)
}

// isValidGitHubHost checks if the host is github.com or an allowed GitHub Enterprise host.
// It supports the following formats:
//   - github.com (Public GitHub)
//   - *.github.com (GitHub Enterprise Cloud)
//   - Hosts registered with AllowHost
func isValidGitHubHost(host string) bool {
	host = strings.ToLower(host)
	if host == "github.com" {
		return true
	}

	if strings.HasSuffix(host, ".github.com") {
		return true
	}

	hostsMu.RLock()
	defer hostsMu.RUnlock()
	return allowedGHEDomains[host]
}

// sanitizeURL removes any sensitive information from the URL
func sanitizeURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		u.User = nil
		return u.String()
	}
	return rawURL
}
