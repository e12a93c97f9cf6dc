// Package media maps attachment files to message types.
package media

import (
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/matheus3301/wppsim/internal/model"
)

// MaxSize is the largest attachment accepted.
const MaxSize = 64 << 20

// Attachment describes a local file about to be sent.
type Attachment struct {
	Path string
	MIME string
	Type model.MessageType
	Size int64
}

// Classify sniffs the file at path and picks the message type for it.
func Classify(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("attachment %s is a directory", path)
	}
	if info.Size() > MaxSize {
		return Attachment{}, fmt.Errorf("attachment %s is %d bytes, limit is %d", path, info.Size(), MaxSize)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("detect attachment type: %w", err)
	}
	return Attachment{
		Path: path,
		MIME: mt.String(),
		Type: TypeFor(mt.String()),
		Size: info.Size(),
	}, nil
}

// TypeFor maps a MIME type to a message type. Anything unrecognised is a document.
func TypeFor(mime string) model.MessageType {
	base, _, _ := strings.Cut(mime, ";")
	switch {
	case strings.HasPrefix(base, "image/"):
		return model.Image
	case strings.HasPrefix(base, "video/"):
		return model.Video
	case strings.HasPrefix(base, "audio/"):
		return model.Audio
	case base == "text/vcard" || base == "text/x-vcard":
		return model.Contact
	}
	return model.Document
}
