package common

import "strings"

// AttachmentType is the coarse display category of an attachment.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
	AttachmentAudio AttachmentType = "audio"
	AttachmentFile  AttachmentType = "file"
	AttachmentLink  AttachmentType = "link"
	AttachmentOther AttachmentType = "other"
)

func (t AttachmentType) String() string {
	return string(t)
}

func (t AttachmentType) IsValid() bool {
	switch t {
	case AttachmentImage, AttachmentVideo, AttachmentAudio, AttachmentFile, AttachmentLink, AttachmentOther:
		return true
	}
	return false
}

// DetectAttachmentType derives the display category from a MIME type.
// Document-like types map to file; anything unrecognized is other.
func DetectAttachmentType(mimeType string) AttachmentType {
	lower := strings.ToLower(mimeType)
	switch {
	case lower == "":
		return AttachmentOther
	case strings.HasPrefix(lower, "image/"):
		return AttachmentImage
	case strings.HasPrefix(lower, "video/"):
		return AttachmentVideo
	case strings.HasPrefix(lower, "audio/"):
		return AttachmentAudio
	case strings.HasPrefix(lower, "text/"),
		strings.Contains(lower, "pdf"),
		strings.Contains(lower, "msword"),
		strings.Contains(lower, "officedocument"),
		strings.Contains(lower, "spreadsheet"),
		strings.Contains(lower, "zip"):
		return AttachmentFile
	default:
		return AttachmentOther
	}
}
