package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	uuid "github.com/gofrs/uuid/v5"

	"github.com/kmmndr/motioncut/internal/segment"
	"github.com/kmmndr/motioncut/internal/timecode"
)

// Names builds the output file names of one source video.
type Names struct {
	base string
	ext  string
}

// NewNames names the outputs of videoPath. A non-empty tag is appended to
// the base name so sources sharing a file name do not collide in a shared
// directory. A non-empty ext replaces the source extension.
func NewNames(videoPath, tag, ext string) Names {
	name := filepath.Base(videoPath)
	srcExt := filepath.Ext(name)
	base := strings.TrimSuffix(name, srcExt)
	if tag != "" {
		base += "-" + tag
	}
	if ext == "" {
		ext = srcExt
	}
	return Names{base: base, ext: ext}
}

// Clip is the file name of the index-th (1-based) clip, e.g.
// "cam_segment2_00_01_05.00_to_00_01_12.00.mp4".
func (n Names) Clip(index int, seg segment.Segment) string {
	return fmt.Sprintf("%s_segment%d_%s_to_%s%s",
		n.base, index, timecode.FileStamp(seg.Start), timecode.FileStamp(seg.End), n.ext)
}

// Merged is the file name of the concatenation of every clip.
func (n Names) Merged() string {
	return n.base + "_out" + n.ext
}

// SourceTag is a short stable identifier of the absolute path of a source.
func SourceTag(videoPath string) string {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		abs = filepath.Clean(videoPath)
	}
	id := uuid.NewV5(uuid.NamespaceURL, "file://"+filepath.ToSlash(abs))
	return id.String()[:8]
}
