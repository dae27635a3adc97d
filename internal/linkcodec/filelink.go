// Package linkcodec encodes and decodes the bot's shareable deep-link
// payloads and parses t.me message links, grounded on
// core/services/filestore.py and core/utils/link_parser.py.
package linkcodec

import (
	"encoding/base64"
	"strings"
)

// EncodeFileLink encodes a single file's identifier into a shareable
// base64 payload, prefixed by whether the channel copy is protected.
func EncodeFileLink(fileIdentifier string, protect bool) string {
	prefix := "file_"
	if protect {
		prefix = "filep_"
	}
	return base64.RawURLEncoding.EncodeToString([]byte(prefix + fileIdentifier))
}

// DecodeFileLink is the inverse of EncodeFileLink. It tolerates both
// raw and standard base64 padding and an unprefixed legacy payload.
func DecodeFileLink(encoded string) (identifier string, protect bool, ok bool) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", false, false
	}
	if len(encoded)%4 == 1 {
		return "", false, false
	}

	decoded, err := decodeBase64URL(encoded)
	if err != nil {
		return "", false, false
	}
	s := string(decoded)

	switch {
	case strings.HasPrefix(s, "filep_"):
		return s[len("filep_"):], true, true
	case strings.HasPrefix(s, "file_"):
		return s[len("file_"):], false, true
	default:
		parts := strings.SplitN(s, "_", 2)
		if len(parts) == 2 {
			return parts[1], parts[0] == "filep", true
		}
		return s, false, true
	}
}

func decodeBase64URL(encoded string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(encoded); err == nil {
		return b, nil
	}
	padded := encoded + strings.Repeat("=", (4-len(encoded)%4)%4)
	return base64.URLEncoding.DecodeString(padded)
}
