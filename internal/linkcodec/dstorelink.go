package linkcodec

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// DStoreRange is a decoded direct-store range request.
type DStoreRange struct {
	FromMsgID int64
	ToMsgID   int64
	ChatID    int64
	Protected bool
}

// EncodeDStoreLink encodes a message-range send request as a
// "fromID_toID_chatID[_pbatch]" payload, base64-url encoded.
func EncodeDStoreLink(r DStoreRange) string {
	payload := fmt.Sprintf("%d_%d_%d", r.FromMsgID, r.ToMsgID, r.ChatID)
	if r.Protected {
		payload += "_pbatch"
	}
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// DecodeDStoreLink is the inverse of EncodeDStoreLink.
func DecodeDStoreLink(encoded string) (DStoreRange, bool) {
	decoded, err := decodeBase64URL(encoded)
	if err != nil {
		return DStoreRange{}, false
	}
	parts := strings.SplitN(string(decoded), "_", 4)
	if len(parts) < 3 {
		return DStoreRange{}, false
	}
	from, err1 := strconv.ParseInt(parts[0], 10, 64)
	to, err2 := strconv.ParseInt(parts[1], 10, 64)
	chatID, err3 := strconv.ParseInt(parts[2], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return DStoreRange{}, false
	}
	protected := len(parts) > 3 && parts[3] == "pbatch"
	return DStoreRange{FromMsgID: from, ToMsgID: to, ChatID: chatID, Protected: protected}, true
}
