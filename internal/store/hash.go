package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// DocumentKey computes the cache key of a response: the request content
// together with the dialect it is parsed as and the driver fingerprint.
func DocumentKey(content []byte, dialect, fingerprint string) string {
	h := sha256.New()
	fmt.Fprintf(h, "dialect:%s\n", dialect)
	fmt.Fprintf(h, "fingerprint:%s\n", fingerprint)
	fmt.Fprintf(h, "content:%d\n", len(content))
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash is the hash recorded for a watched file.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes named components (driver version, metadata, role
// script hash) into one value. Components are sorted by name so the order
// they are given in does not matter.
func Fingerprint(components map[string]string) string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		fmt.Fprintf(h, "%s:%s\n", name, strings.TrimSpace(components[name]))
	}
	return hex.EncodeToString(h.Sum(nil))
}
