package deletion

import (
	"time"

	"github.com/filevault/botcore/internal/platform"
)

// ItemFromMessage builds a queue Item from a message forwarded to the
// delete channel, mirroring handle_delete_channel_message's media
// extraction. Returns false when the message carries no document.
func ItemFromMessage(m platform.Message, now time.Time) (Item, bool) {
	if m.Document == nil || m.Document.FileUniqueID == "" {
		return Item{}, false
	}
	name := m.Document.FileName
	if name == "" {
		name = "Unknown"
	}
	return Item{FileUniqueID: m.Document.FileUniqueID, FileName: name, Queued: now}, true
}
