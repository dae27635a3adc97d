// Package delivery sends indexed files to principals, routed through
// internal/ratelimit.Guarded and internal/access quota reservation,
// grounded on handlers/deeplink.py and core/services/filestore.py.
package delivery

import (
	"fmt"
	"strings"

	"github.com/filevault/botcore/internal/models"
)

// CaptionConfig mirrors the bot's caption-related settings
// (CUSTOM_FILE_CAPTION, BATCH_FILE_CAPTION, KEEP_ORIGINAL_CAPTION).
type CaptionConfig struct {
	CustomCaption        string
	BatchCaption         string
	KeepOriginalCaption  bool
}

// FormatCaption builds a file's outbound caption per
// CaptionFormatter.format_file_caption's precedence: batch caption for
// batch sends, else custom caption, else the original caption when
// KeepOriginalCaption is set, else none — with an auto-delete notice
// appended (or standing alone) when autoDeleteMinutes > 0.
func FormatCaption(cfg CaptionConfig, file models.MediaFile, isBatch bool, autoDeleteMinutes int) string {
	var caption string

	switch {
	case isBatch && cfg.BatchCaption != "":
		caption = formatTemplate(cfg.BatchCaption, file)
	case !isBatch:
		if cfg.CustomCaption != "" {
			caption = formatTemplate(cfg.CustomCaption, file)
		} else if cfg.KeepOriginalCaption && file.Caption != "" {
			caption = file.Caption
		}
	}

	if autoDeleteMinutes <= 0 {
		return caption
	}
	notice := fmt.Sprintf("This file will be automatically deleted in %d minutes.", autoDeleteMinutes)
	if caption == "" {
		return notice
	}
	return caption + "\n\n" + notice
}

func formatTemplate(template string, file models.MediaFile) string {
	replacer := strings.NewReplacer(
		"{filename}", file.FileName,
		"{size}", formatFileSize(file.FileSize),
	)
	return replacer.Replace(template)
}

func formatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
