package client

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

var (
	// ErrEmptyURL is returned for blank input.
	ErrEmptyURL = errors.New("client: URL is empty")
	// ErrInvalidURL is returned when the input cannot be turned into an absolute URL.
	ErrInvalidURL = errors.New("client: invalid URL")
)

// NormalizeURL turns user input such as "example.com" into an absolute URL.
// Input without an http:// or https:// prefix gets https:// prepended, and
// internationalized host names are converted to their ASCII form.
func NormalizeURL(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrEmptyURL
	}

	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	hostname := u.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, input)
	}

	if net.ParseIP(hostname) == nil {
		ascii, err := idna.Lookup.ToASCII(hostname)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
		}
		hostname = ascii
	}

	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(hostname, port)
	} else if strings.Contains(hostname, ":") {
		u.Host = "[" + hostname + "]"
	} else {
		u.Host = hostname
	}

	return u.String(), nil
}
