// Package urlutil provides URL canonicalization and an http(s) scheme
// filter shared by the extractor and engine packages.
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Canonicalize resolves raw against base (if raw is relative), then
// produces the canonical form used for Task equality: lowercase
// scheme, IDNA-encoded host, percent-encoded path and query (with `=`
// and `&` preserved as separators), fragment kept, trailing slash
// preserved exactly as given (callers decide whether the seed is the
// site root with or without a trailing slash). Canonicalize is
// idempotent: canonicalizing an already-canonical URL against itself
// returns the same string.
//
// An empty base means raw must already be absolute.
func Canonicalize(raw, base string) (string, error) {
	if raw == "" {
		return "", errors.New("urlutil: cannot canonicalize empty URL")
	}

	parsedRaw, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("urlutil: parse %q: %w", raw, err)
	}

	resolved := parsedRaw
	if !parsedRaw.IsAbs() && base != "" {
		baseURL, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("urlutil: parse base %q: %w", base, err)
		}
		resolved = baseURL.ResolveReference(parsedRaw)
	}

	if resolved.Scheme == "" || resolved.Host == "" {
		return "", fmt.Errorf("urlutil: %q has no scheme/host after resolution", raw)
	}

	scheme := strings.ToLower(resolved.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("urlutil: unsupported scheme %q", scheme)
	}
	resolved.Scheme = scheme

	host, err := encodeHost(resolved.Host)
	if err != nil {
		return "", fmt.Errorf("urlutil: encode host %q: %w", resolved.Host, err)
	}
	resolved.Host = host

	resolved.RawPath = ""
	resolved.Path = encodePath(resolved.Path)
	resolved.RawQuery = encodeQuery(resolved.RawQuery)

	return resolved.String(), nil
}

// encodeHost lowercases and IDNA-encodes the hostname portion of a
// host[:port] string, leaving the port untouched.
func encodeHost(hostport string) (string, error) {
	host, port, hasPort := splitHostPort(hostport)
	lower := strings.ToLower(host)

	ascii, err := idna.Lookup.ToASCII(lower)
	if err != nil {
		// Not every host round-trips through strict IDNA (IPv4/IPv6
		// literals, already-ASCII hosts with odd-but-legal labels).
		// Fall back to the lowercased original rather than fail the
		// whole canonicalization.
		ascii = lower
	}

	if hasPort {
		return ascii + ":" + port, nil
	}
	return ascii, nil
}

func splitHostPort(hostport string) (host, port string, hasPort bool) {
	idx := strings.LastIndex(hostport, ":")
	if idx == -1 {
		return hostport, "", false
	}
	// Guard against IPv6 literals like "[::1]" with no port.
	if strings.Contains(hostport, "]") && idx < strings.LastIndex(hostport, "]") {
		return hostport, "", false
	}
	return hostport[:idx], hostport[idx+1:], true
}

// encodePath percent-encodes path segments consistently, collapsing
// any double-encoding net/url may have left behind via RawPath.
func encodePath(path string) string {
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = (&url.URL{Path: seg}).EscapedPath()
	}
	return strings.Join(segments, "/")
}

// encodeQuery re-encodes the query string while preserving `=` and
// `&` as the pair/field separators.
func encodeQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	pairs := strings.Split(rawQuery, "&")
	for i, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, hasValue := strings.Cut(pair, "=")
		key = url.QueryEscape(unescapeBestEffort(key))
		if hasValue {
			value = url.QueryEscape(unescapeBestEffort(value))
			pairs[i] = key + "=" + value
		} else {
			pairs[i] = key
		}
	}
	return strings.Join(pairs, "&")
}

func unescapeBestEffort(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}
