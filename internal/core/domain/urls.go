package domain

import (
	"net/mail"
	"net/url"
	"strings"
)

// NormalizeServerURL trims whitespace and trailing slashes so the same
// server always maps to the same storage key.
func NormalizeServerURL(serverURL string) string {
	return strings.TrimRight(strings.TrimSpace(serverURL), "/")
}

// AvatarURL returns the avatar thumbnail URL for a username
func AvatarURL(serverURL, username string) string {
	return NormalizeServerURL(serverURL) + "/avatar/" + url.PathEscape(strings.TrimRight(username, "/")) + "?format=jpeg"
}

// ServerAssetURL resolves a server asset path (favicon, tile) against the server URL
func ServerAssetURL(serverURL, asset string) string {
	return NormalizeServerURL(serverURL) + "/" + strings.TrimLeft(asset, "/")
}

// CasURL builds the CAS login URL that redirects back to the server with token
func CasURL(casLoginURL, serverURL, token string) string {
	service := NormalizeServerURL(serverURL) + "/_cas/" + token
	return strings.TrimRight(casLoginURL, "/") + "?service=" + url.QueryEscape(service)
}

// OAuthRedirectURL is the server endpoint a provider redirects back to
func OAuthRedirectURL(serverURL string, provider OAuthProvider) string {
	return NormalizeServerURL(serverURL) + "/_oauth/" + string(provider) + "?close"
}

// IsEmail reports whether s is a bare email address with a dotted domain.
// Single-label domains such as "localhost" are treated as usernames.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	return hasDottedLabels(s[at+1:])
}

func hasDottedLabels(host string) bool {
	if strings.ContainsAny(host, "[]") {
		return false
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" {
			return false
		}
	}
	return true
}

// IsBlank reports whether s is empty or only whitespace
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
