package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLen = 9

// NewID returns "<prefix>:<unix millis>:<random suffix>". The result is used
// verbatim as the document key.
func NewID(prefix string, at time.Time) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s:%d:%s", prefix, at.UnixMilli(), raw[len(raw)-idSuffixLen:])
}
