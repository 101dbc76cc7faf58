package repositories

import (
	"fmt"
	"strings"

	"github.com/heartletter/letter_api/shared"
)

// Decode reads a stored document into v. Some Upstash clients serialise
// documents twice, so a value that is itself a JSON string is unwrapped once
// before decoding.
func Decode(raw string, v interface{}) error {
	doc := strings.TrimSpace(raw)
	if strings.HasPrefix(doc, `"`) {
		var inner string
		if err := shared.UnmarshalString(doc, &inner); err != nil {
			return fmt.Errorf("decode wrapped document: %w", err)
		}
		doc = inner
	}
	if err := shared.UnmarshalString(doc, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

func Encode(v interface{}) (string, error) {
	return shared.MarshalString(v)
}
