package nano

import (
	"encoding/base64"
	"errors"
)

// Response is the provider reply as decoded JSON. The provider does not commit
// to a single shape, so extraction goes through FirstImage.
type Response map[string]any

// ErrEmptyResult means no known response shape carried image data.
var ErrEmptyResult = errors.New("generation result is empty")

// FirstImage extracts the first image payload from a generation response.
// Known shapes are tried in priority order:
//
//  1. "candidates" list, each with content.parts carrying inline data;
//  2. top-level "contents" list with the same parts shape;
//  3. top-level "images" or "data" list whose first element is a base64
//     string, an object with a b64_json/content field, or raw bytes.
func FirstImage(resp Response) ([]byte, error) {
	if data := inlineFromEntries(resp["candidates"], true); data != nil {
		return data, nil
	}
	if data := inlineFromEntries(resp["contents"], false); data != nil {
		return data, nil
	}
	items := asList(resp["images"])
	if len(items) == 0 {
		items = asList(resp["data"])
	}
	if len(items) > 0 {
		if data := decodeDirect(items[0]); data != nil {
			return data, nil
		}
	}
	return nil, ErrEmptyResult
}

// inlineFromEntries scans a list of candidate/content entries in order and
// returns the first inline payload found. Candidates nest the parts under a
// "content" object, contents carry them directly.
func inlineFromEntries(value any, nested bool) []byte {
	for _, entry := range asList(value) {
		m := asMap(entry)
		if m == nil {
			continue
		}
		if nested {
			m = asMap(m["content"])
			if m == nil {
				continue
			}
		}
		if data := decodeInlineParts(m["parts"]); data != nil {
			return data
		}
	}
	return nil
}

func decodeInlineParts(value any) []byte {
	for _, part := range asList(value) {
		m := asMap(part)
		if m == nil {
			continue
		}
		inline := asMap(m["inline_data"])
		if inline == nil {
			inline = asMap(m["inlineData"])
		}
		if inline == nil {
			continue
		}
		if data := decodeBase64(inline["data"]); data != nil {
			return data
		}
	}
	return nil
}

// decodeDirect handles the flat images/data element variants.
func decodeDirect(raw any) []byte {
	if m := asMap(raw); m != nil {
		if data := decodeBase64(m["b64_json"]); data != nil {
			return data
		}
		return decodeBase64(m["content"])
	}
	switch v := raw.(type) {
	case string:
		return decodeBase64(v)
	case []byte:
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

func decodeBase64(value any) []byte {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(data) == 0 {
		return nil
	}
	return data
}

func asList(value any) []any {
	list, _ := value.([]any)
	return list
}

func asMap(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		return m
	case Response:
		return m
	}
	return nil
}
