package wsclient

import (
	"fmt"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(
	`^(?P<scheme>[a-zA-Z][a-zA-Z0-9+.-]*)://` +
		`(?P<authority>[^/?#]+)` +
		`(?P<path>/[^?#]*)?` +
		`(?:\?(?P<query>[^#]*))?` +
		`(?:#.*)?$`,
)

// parseURL splits a ws:// or wss:// URL into the pieces the transport
// stack needs. The fragment, if any, is discarded; a non-empty query
// is folded back into path as "?query".
func parseURL(raw string) (scheme, hostname, service, path string, err error) {
	m := urlPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", "", "", "", fmt.Errorf("malformed URL %q", raw)
	}

	groups := make(map[string]string, len(m))
	for i, name := range urlPattern.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}

	scheme = strings.ToLower(groups["scheme"])
	if scheme != "ws" && scheme != "wss" {
		return "", "", "", "", fmt.Errorf("unsupported scheme %q", scheme)
	}

	authority := groups["authority"]
	if host, port, ok := strings.Cut(authority, ":"); ok {
		hostname, service = host, port
	} else {
		hostname = authority
		if scheme == "wss" {
			service = "443"
		} else {
			service = "80"
		}
	}
	if hostname == "" {
		return "", "", "", "", fmt.Errorf("missing host in %q", raw)
	}

	path = groups["path"]
	if path == "" {
		path = "/"
	}
	if q := groups["query"]; q != "" {
		path = path + "?" + q
	}

	return scheme, hostname, service, path, nil
}
