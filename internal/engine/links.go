package engine

import (
	"errors"
	"net/url"
)

// sessionParam is the query parameter a share link carries
const sessionParam = "session"

// ShareLink builds a joinable URL for a session by attaching the
// session query parameter to a base URL
func ShareLink(base, sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("session ID cannot be empty")
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	query := parsed.Query()
	query.Set(sessionParam, sessionID)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// SessionFromLink extracts the session ID from a share link. The
// second return is false when the link carries none.
func SessionFromLink(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	sessionID := parsed.Query().Get(sessionParam)
	return sessionID, sessionID != ""
}
