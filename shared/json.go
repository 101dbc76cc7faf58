package shared

import (
	"github.com/bytedance/sonic"
)

var jsonAPI = sonic.Config{
	UseNumber:            true,
	EscapeHTML:           false,
	SortMapKeys:          false,
	CompactMarshaler:     true,
	NoQuoteTextMarshaler: true,
	NoNullSliceOrMap:     true,
}.Froze()

// Marshal encodes v with the API-wide sonic configuration. It is also
// installed as the fiber JSON encoder.
func Marshal(v interface{}) ([]byte, error) {
	return jsonAPI.Marshal(v)
}

func Unmarshal(data []byte, v interface{}) error {
	return jsonAPI.Unmarshal(data, v)
}

func MarshalString(v interface{}) (string, error) {
	return jsonAPI.MarshalToString(v)
}

func UnmarshalString(data string, v interface{}) error {
	return jsonAPI.UnmarshalFromString(data, v)
}

func mustMarshal(v interface{}) []byte {
	b, _ := jsonAPI.Marshal(v)
	return b
}
