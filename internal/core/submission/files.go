package submission

import (
	"path/filepath"
	"strings"
)

// SubmissionFileName is the file left behind when encryption of an instance was interrupted.
// If present it is uploaded instead of the instance XML.
const SubmissionFileName = "submission.xml"

// legacyExtensions are the only attachments sent to servers not known to speak OpenRosa.
var legacyExtensions = map[string]bool{
	"jpg":  true,
	"3gpp": true,
	"3gp":  true,
	"mp4":  true,
	"osm":  true,
}

// SubmissionFileContext describes what exists on disk for an instance.
type SubmissionFileContext struct {
	InstanceFilePath     string
	InstanceFileExists   bool
	SubmissionFileExists bool
}

// SubmissionFilePath returns the sibling submission.xml path of an instance file.
func SubmissionFilePath(instanceFilePath string) string {
	return filepath.Join(filepath.Dir(instanceFilePath), SubmissionFileName)
}

// SelectSubmissionFile picks the file to post as the submission.
// Returns false when neither the submission.xml nor the instance XML exists.
func SelectSubmissionFile(ctx SubmissionFileContext) (string, bool) {
	if ctx.SubmissionFileExists {
		return SubmissionFilePath(ctx.InstanceFilePath), true
	}
	if ctx.InstanceFileExists {
		return ctx.InstanceFilePath, true
	}
	return "", false
}

// AttachmentContext describes the directory listing of an instance.
type AttachmentContext struct {
	FileNames          []string
	InstanceFileName   string
	SubmissionFileName string
	OpenRosa           bool
}

// SelectAttachments splits the directory listing into files to upload and files skipped
// because a legacy server would not accept them. Hidden files and the two XML files are
// never attachments and appear in neither list.
func SelectAttachments(ctx AttachmentContext) (included, skipped []string) {
	for _, name := range ctx.FileNames {
		if strings.HasPrefix(name, ".") {
			continue
		}
		if name == ctx.InstanceFileName || name == ctx.SubmissionFileName {
			continue
		}

		if ctx.OpenRosa || legacyExtensions[FileExtension(name)] {
			included = append(included, name)
		} else {
			skipped = append(skipped, name)
		}
	}
	return included, skipped
}

// FileExtension returns the lower-cased extension of name without the dot.
func FileExtension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}
