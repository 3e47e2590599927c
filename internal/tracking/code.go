// Package tracking generates human-shareable parcel tracking codes.
package tracking

import (
	"crypto/rand"
	"regexp"
)

const (
	prefix  = "TRK-"
	charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLen = 8
)

// Pattern matches every code NewCode can produce.
var Pattern = regexp.MustCompile(`^TRK-[A-Z0-9]{8}$`)

// NewCode returns a fresh tracking code of the form TRK- followed by
// eight random uppercase alphanumeric characters. Uniqueness is enforced
// by the database index; callers retry on a collision.
func NewCode() string {
	buf := make([]byte, codeLen)
	// rand.Read never fails on supported platforms
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = charset[int(b)%len(charset)]
	}
	return prefix + string(buf)
}
