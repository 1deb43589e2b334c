// Package env reads the few settings needed before config.Load runs,
// such as the bootstrap log format and the worker identity.
package env

import (
	"os"
	"strconv"
	"strings"
)

// Prefix is tried before the bare key.
const Prefix = "STOREFRONT_"

// Get returns STOREFRONT_<key>, then <key>, then fallback. Blank values count as unset.
func Get(key, fallback string) string {
	for _, name := range []string{Prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}

// Bool is Get parsed with strconv.ParseBool; unparsable values yield fallback.
func Bool(key string, fallback bool) bool {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
