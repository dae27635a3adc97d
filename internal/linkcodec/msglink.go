package linkcodec

import (
	"regexp"
	"strconv"
	"strings"
)

// ParsedMessageLink is a decoded t.me message link.
type ParsedMessageLink struct {
	ChatIdentifier   string
	MessageID        int64
	ChatID           int64
	HasChatID        bool
	IsPrivateChannel bool
}

var (
	privateChannelPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:t\.me|telegram\.me|telegram\.dog)/c/(\d+)/(\d+)/?(?:\?[^#]*)?(?:#.*)?$`)
	messageLinkPattern    = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:t\.me|telegram\.me|telegram\.dog)/(?:c/)?([a-zA-Z][a-zA-Z0-9_]{4,31}|\d+)/(\d+)/?(?:\?[^#]*)?(?:#.*)?$`)
)

// ParseMessageLink parses a t.me message link, handling both public
// (username or numeric chat id) and private (/c/<internal id>/) forms.
func ParseMessageLink(link string) (ParsedMessageLink, bool) {
	link = strings.TrimSpace(link)
	if link == "" {
		return ParsedMessageLink{}, false
	}

	if m := privateChannelPattern.FindStringSubmatch(link); m != nil {
		msgID, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || msgID <= 0 {
			return ParsedMessageLink{}, false
		}
		chatID, err := strconv.ParseInt("-100"+m[1], 10, 64)
		if err != nil {
			return ParsedMessageLink{}, false
		}
		return ParsedMessageLink{
			ChatIdentifier:   m[1],
			MessageID:        msgID,
			ChatID:           chatID,
			HasChatID:        true,
			IsPrivateChannel: true,
		}, true
	}

	m := messageLinkPattern.FindStringSubmatch(link)
	if m == nil {
		return ParsedMessageLink{}, false
	}
	msgID, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || msgID <= 0 {
		return ParsedMessageLink{}, false
	}

	identifier := m[1]
	result := ParsedMessageLink{ChatIdentifier: identifier, MessageID: msgID}

	if isAllDigits(identifier) {
		n, err := strconv.ParseInt(identifier, 10, 64)
		if err != nil || n <= 0 {
			return ParsedMessageLink{}, false
		}
		chatID := n
		if n >= 1000000000 {
			chatID = -n
		}
		result.ChatID = chatID
		result.HasChatID = true
	} else if !isValidUsername(identifier) {
		return ParsedMessageLink{}, false
	}

	return result, true
}

// ParseLinkPair validates two links belong to the same chat, are ordered,
// and span a reasonable batch size, mirroring parse_link_pair's bound.
func ParseLinkPair(first, second string) (firstLink, secondLink ParsedMessageLink, ok bool) {
	firstLink, ok1 := ParseMessageLink(first)
	secondLink, ok2 := ParseMessageLink(second)
	if !ok1 || !ok2 {
		return ParsedMessageLink{}, ParsedMessageLink{}, false
	}
	if firstLink.ChatIdentifier != secondLink.ChatIdentifier {
		return ParsedMessageLink{}, ParsedMessageLink{}, false
	}
	if firstLink.MessageID >= secondLink.MessageID {
		return ParsedMessageLink{}, ParsedMessageLink{}, false
	}
	const maxBatchSize = 10000
	if secondLink.MessageID-firstLink.MessageID+1 > maxBatchSize {
		return ParsedMessageLink{}, ParsedMessageLink{}, false
	}
	return firstLink, secondLink, true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isValidUsername(u string) bool {
	if len(u) < 5 || len(u) > 32 {
		return false
	}
	first := rune(u[0])
	if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
		return false
	}
	for _, r := range u {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}
