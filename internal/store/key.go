package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const keyTimeFormat = "20060102T150405Z"

func NormalizePrefix(prefix string) string {
	if strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}

// NewKey builds <prefix>/<utc timestamp>-<random hex>.<format>. The random
// suffix is all that keeps concurrent invocations apart.
func NewKey(prefix, format string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s%s-%s.%s", NormalizePrefix(prefix), now.UTC().Format(keyTimeFormat), suffix, format)
}

func ObjectURL(bucket, region, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
