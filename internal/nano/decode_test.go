package nano

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	imageBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02, 0x03}
	imageB64   = base64.StdEncoding.EncodeToString(imageBytes)
	otherBytes = []byte("another image payload")
	otherB64   = base64.StdEncoding.EncodeToString(otherBytes)
)

func fromJSON(t *testing.T, raw string) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return resp
}

func TestFirstImage_CandidatesVariant(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []byte
	}{
		{
			name: "single candidate with inline_data",
			raw:  `{"candidates":[{"content":{"parts":[{"inline_data":{"mime_type":"image/png","data":"` + imageB64 + `"}}]}}]}`,
			want: imageBytes,
		},
		{
			name: "camelCase inlineData",
			raw:  `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"` + imageB64 + `"}}]}}]}`,
			want: imageBytes,
		},
		{
			name: "text part before image part",
			raw:  `{"candidates":[{"content":{"parts":[{"text":"here you go"},{"inline_data":{"data":"` + imageB64 + `"}}]}}]}`,
			want: imageBytes,
		},
		{
			name: "first candidate empty, second carries data",
			raw:  `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}},{"content":{"parts":[{"inline_data":{"data":"` + imageB64 + `"}}]}}]}`,
			want: imageBytes,
		},
		{
			name: "first matching part wins over later parts",
			raw:  `{"candidates":[{"content":{"parts":[{"inline_data":{"data":"` + imageB64 + `"}},{"inline_data":{"data":"` + otherB64 + `"}}]}}]}`,
			want: imageBytes,
		},
		{
			name: "candidate without content is skipped",
			raw:  `{"candidates":[{"finish_reason":"SAFETY"},{"content":{"parts":[{"inline_data":{"data":"` + imageB64 + `"}}]}}]}`,
			want: imageBytes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstImage(fromJSON(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstImage_ContentsVariant(t *testing.T) {
	resp := fromJSON(t, `{"contents":[{"parts":[{"inline_data":{"data":"`+imageB64+`"}}]}]}`)
	got, err := FirstImage(resp)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, got)
}

func TestFirstImage_DirectVariants(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want []byte
	}{
		{
			name: "images with b64_json object",
			resp: fromJSON(t, `{"images":[{"b64_json":"`+imageB64+`"}]}`),
			want: imageBytes,
		},
		{
			name: "images with content field",
			resp: fromJSON(t, `{"images":[{"content":"`+imageB64+`"}]}`),
			want: imageBytes,
		},
		{
			name: "images with bare base64 string",
			resp: fromJSON(t, `{"images":["`+imageB64+`"]}`),
			want: imageBytes,
		},
		{
			name: "data list fallback",
			resp: fromJSON(t, `{"data":[{"b64_json":"`+imageB64+`"}]}`),
			want: imageBytes,
		},
		{
			name: "empty images list falls through to data",
			resp: fromJSON(t, `{"images":[],"data":["`+imageB64+`"]}`),
			want: imageBytes,
		},
		{
			name: "raw bytes element",
			resp: Response{"images": []any{imageBytes}},
			want: imageBytes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstImage(tt.resp)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstImage_PriorityOrder(t *testing.T) {
	// Candidates win over contents, contents win over images.
	resp := fromJSON(t, `{
		"candidates":[{"content":{"parts":[{"inline_data":{"data":"`+imageB64+`"}}]}}],
		"contents":[{"parts":[{"inline_data":{"data":"`+otherB64+`"}}]}],
		"images":["`+otherB64+`"]
	}`)
	got, err := FirstImage(resp)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, got)

	resp = fromJSON(t, `{
		"contents":[{"parts":[{"inline_data":{"data":"`+imageB64+`"}}]}],
		"images":["`+otherB64+`"]
	}`)
	got, err = FirstImage(resp)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, got)
}

func TestFirstImage_EmptyResult(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{name: "nil response", resp: nil},
		{name: "empty object", resp: fromJSON(t, `{}`)},
		{name: "text-only candidate", resp: fromJSON(t, `{"candidates":[{"content":{"parts":[{"text":"no image"}]}}]}`)},
		{name: "inline data without payload", resp: fromJSON(t, `{"candidates":[{"content":{"parts":[{"inline_data":{"mime_type":"image/png"}}]}}]}`)},
		{name: "invalid base64 in images", resp: fromJSON(t, `{"images":["%%%not-base64%%%"]}`)},
		{name: "images with unknown object", resp: fromJSON(t, `{"images":[{"url":"https://example.com/img.png"}]}`)},
		{name: "unexpected scalar fields", resp: fromJSON(t, `{"status":"ok","candidates":"nope"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstImage(tt.resp)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrEmptyResult)
		})
	}
}
