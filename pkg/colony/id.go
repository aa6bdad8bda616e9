package colony

import (
	"crypto/rand"
	"strconv"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID produces a short, sortable identifier: the millisecond timestamp in
// base 36 followed by a 4-character random suffix. Lexicographic order of
// ids generated in the same era tracks creation order.
func NewID() string {
	prefix := strconv.FormatInt(time.Now().UnixMilli(), 36)
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	suffix := make([]byte, len(b))
	for i, v := range b {
		suffix[i] = idAlphabet[int(v)%len(idAlphabet)]
	}
	return prefix + "-" + string(suffix)
}
