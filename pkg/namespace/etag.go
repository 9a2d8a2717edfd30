package namespace

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ETag derives a stable entity tag from an entity id, in the quoted
// hex form object-storage clients expect. MD5 here is an identity
// fingerprint, not an integrity check.
func ETag(entityID string) string {
	sum := md5.Sum([]byte(entityID))
	return fmt.Sprintf("%q", hex.EncodeToString(sum[:]))
}
