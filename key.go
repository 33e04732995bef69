package relsync

import "strings"

var keyNormalizer = strings.NewReplacer("/", ":", "\\", ":")

// CacheKey derives a deterministic record key from the remote endpoint
// identity and a package/entity identifier. The scheme is stripped, the
// endpoint lowercased, and path separators in both parts normalized to ":"
// so keys stay delimiter-stable across ecosystems. The engine itself treats
// keys as opaque; this helper only standardizes how callers build them.
func CacheKey(endpoint, name string) string {
	host := endpoint
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	host = strings.ToLower(strings.Trim(keyNormalizer.Replace(host), ":"))
	entity := strings.Trim(keyNormalizer.Replace(name), ":")
	if host == "" {
		return entity
	}
	if entity == "" {
		return host
	}
	return host + ":" + entity
}
