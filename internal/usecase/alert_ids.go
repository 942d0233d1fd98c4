package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"PulseGateway/pkg/util"
)

// StableID derives an identifier that is the same for the same category and
// action within one time bucket, so refreshes do not duplicate board entries.
func StableID(prefix, category, action string, at time.Time, bucket time.Duration) string {
	b := util.BucketStart(at, bucket)
	key := prefix + "|" + category + "|" + action + "|" + strconv.FormatInt(b.Unix(), 10)
	sum := sha256.Sum256([]byte(key))
	return prefix + hex.EncodeToString(sum[:])[:12]
}
