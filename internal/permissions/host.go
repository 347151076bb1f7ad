package permissions

import (
	"net/url"
	"strconv"
)

// wellKnownPorts gives the default port for URL schemes that have one, the
// same table the original source relies on its URL library to supply.
var wellKnownPorts = map[string]string{
	"http":   "80",
	"https":  "443",
	"ws":     "80",
	"wss":    "443",
	"ftp":    "21",
	"gopher": "70",
}

// matchHostPort implements §4.2: hit iff S contains the bare host, or
// (port is present and S contains "host:port" literally). Comparison is
// byte-exact: no wildcards, no suffix matching, no punycode folding.
func matchHostPort[T ~string](host, port string, set map[T]struct{}) bool {
	if _, ok := set[T(host)]; ok {
		return true
	}
	if port == "" {
		return false
	}
	_, ok := set[T(host+":"+port)]
	return ok
}

// parseHostPort splits a URL into its host and effective port: the URL's
// explicit port if set, otherwise the well-known default for its scheme.
// Returns an error if the URL fails to parse or lacks a host.
func parseHostPort(rawURL string) (host, port string, err error) {
	u, parseErr := url.Parse(rawURL)
	if parseErr != nil {
		return "", "", &Error{Kind: URIError, Message: "invalid URL: " + parseErr.Error()}
	}
	if u.Hostname() == "" {
		return "", "", invalidURLErr()
	}
	host = u.Hostname()
	port = u.Port()
	if port == "" {
		port = wellKnownPorts[u.Scheme]
	}
	return host, port, nil
}

// formatHostPort renders host:port for display and for storing in a
// denied/granted list keyed by literal host:port strings.
func formatHostPort(host string, port uint16) string {
	return host + ":" + strconv.Itoa(int(port))
}
