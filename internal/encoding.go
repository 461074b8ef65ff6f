package internal

import (
	"encoding/json"
	"fmt"
)

// EncodeContent converts message content to a body. Byte slices pass through as-is,
// strings are used as text, nil becomes an empty body and every other value is
// encoded as JSON.
func EncodeContent(content interface{}) ([]byte, error) {
	switch value := content.(type) {
	case nil:
		return nil, nil
	case []byte:
		return value, nil
	case string:
		return []byte(value), nil
	case json.RawMessage:
		return value, nil
	default:
		return EncodeJSON(content)
	}
}

// EncodeJSON converts message content to a JSON body, even when content is already a
// string.
func EncodeJSON(content interface{}) ([]byte, error) {
	body, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("error encoding content as json: %w", err)
	}
	return body, nil
}
