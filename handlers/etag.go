package handlers

import (
	"fmt"
	"hash/fnv"
	"net/http"
)

// GenerateETag returns a quoted FNV-64a hash of the payload, suitable for
// the ETag header. The hash is content-addressed, so a body only gets a new
// tag when an export actually changes the data.
func GenerateETag(data []byte) string {
	h := fnv.New64a()
	h.Write(data)
	return fmt.Sprintf("\"%016x\"", h.Sum64())
}

// CheckETag reports whether the client already holds the current
// representation. Only exact matches count.
func CheckETag(r *http.Request, currentETag string) bool {
	ifNoneMatch := r.Header.Get("If-None-Match")
	return ifNoneMatch != "" && ifNoneMatch == currentETag
}
