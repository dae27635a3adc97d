package ingestion

import (
	"strings"

	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform"
)

// DefaultExtractor turns a message's Document into a MediaFile, classifying
// its FileType from MIME type, mirroring extract_media_from_message's
// document/video/audio/photo/animation coverage.
func DefaultExtractor(m platform.Message) (models.MediaFile, bool) {
	if m.Document == nil || m.Document.FileUniqueID == "" {
		return models.MediaFile{}, false
	}
	d := m.Document
	return models.MediaFile{
		FileUniqueID: d.FileUniqueID,
		FileID:       d.FileID,
		FileName:     d.FileName,
		FileSize:     d.FileSize,
		FileType:     classifyMimeType(d.MimeType),
		MimeType:     d.MimeType,
		Caption:      m.Caption,
	}, true
}

func classifyMimeType(mime string) models.FileType {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return models.FileTypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return models.FileTypeAudio
	case strings.HasPrefix(mime, "image/gif"):
		return models.FileTypeAnimation
	case strings.HasPrefix(mime, "image/"):
		return models.FileTypePhoto
	case strings.HasPrefix(mime, "application/"):
		return models.FileTypeApplication
	default:
		return models.FileTypeDocument
	}
}
