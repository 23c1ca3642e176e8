package filetype

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Kind is the normalization route a file takes, chosen by extension
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindWordProcessor
	KindPresentation
	KindSpreadsheet
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindWordProcessor:
		return "word"
	case KindPresentation:
		return "presentation"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindImage:
		return "image"
	default:
		return "unsupported"
	}
}

// IsOffice reports whether files of this kind go through the office converter
func (k Kind) IsOffice() bool {
	return k == KindWordProcessor || k == KindPresentation || k == KindSpreadsheet
}

var extKinds = map[string]Kind{
	".pdf":  KindPDF,
	".doc":  KindWordProcessor,
	".docx": KindWordProcessor,
	".ppt":  KindPresentation,
	".pptx": KindPresentation,
	".xls":  KindSpreadsheet,
	".xlsx": KindSpreadsheet,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".bmp":  KindImage,
}

// KindOf classifies a path by its extension, case-insensitively
func KindOf(path string) Kind {
	if k, ok := extKinds[strings.ToLower(filepath.Ext(path))]; ok {
		return k
	}
	return KindUnsupported
}

// IsSupported reports whether the path has one of the accepted extensions
func IsSupported(path string) bool {
	return KindOf(path) != KindUnsupported
}

// SupportedExtensions returns the accepted extensions, sorted
func SupportedExtensions() []string {
	out := make([]string, 0, len(extKinds))
	for ext := range extKinds {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// FileTypeInfo contains the extension verdict plus what the content looks like
type FileTypeInfo struct {
	Kind        Kind
	MIMEType    string
	Extension   string
	Description string
	// Mismatch is set when the content clearly belongs to a different kind
	Mismatch bool
}

// Detector sniffs file contents using magic bytes
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// Detect classifies filePath by extension and cross-checks the content.
// The extension stays authoritative; a mismatch is only reported.
func (d *Detector) Detect(filePath string) (*FileTypeInfo, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type: %w", err)
	}

	info := &FileTypeInfo{
		Kind:      KindOf(filePath),
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
	}

	// OLE and ZIP containers hide the real Office format; trust the extension there
	if isContainer(info.MIMEType) {
		if info.Kind.IsOffice() {
			info.Extension = strings.ToLower(filepath.Ext(filePath))
		} else {
			log.Debug().Str("mime", info.MIMEType).Str("file", filePath).Msg("container format with non-office extension")
		}
	}

	sniffed, known := kindFromMIME(info.MIMEType)
	if known && sniffed != info.Kind {
		info.Mismatch = true
		log.Warn().
			Str("file", filePath).
			Str("ext_kind", info.Kind.String()).
			Str("content_kind", sniffed.String()).
			Str("mime", info.MIMEType).
			Msg("file content does not match its extension")
	}
	info.Description = describe(info)

	log.Debug().Str("mime", info.MIMEType).Str("kind", info.Kind.String()).Str("file", filePath).Msg("detected file type")
	return info, nil
}

func isContainer(mimeType string) bool {
	return mimeType == "application/zip" ||
		strings.Contains(mimeType, "application/x-zip") ||
		mimeType == "application/x-ole-storage" ||
		mimeType == "application/x-cfb"
}

// kindFromMIME maps sniffed content to a kind; known is false when the
// content alone cannot tell (containers, unknown types)
func kindFromMIME(mimeType string) (Kind, bool) {
	switch {
	case mimeType == "application/pdf":
		return KindPDF, true
	case mimeType == "image/png", mimeType == "image/jpeg", mimeType == "image/bmp":
		return KindImage, true
	case mimeType == "application/msword",
		mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return KindWordProcessor, true
	case mimeType == "application/vnd.ms-powerpoint",
		mimeType == "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return KindPresentation, true
	case mimeType == "application/vnd.ms-excel",
		mimeType == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return KindSpreadsheet, true
	default:
		return KindUnsupported, false
	}
}

func describe(info *FileTypeInfo) string {
	switch info.Kind {
	case KindPDF:
		return "PDF document"
	case KindWordProcessor:
		return "Word processing document"
	case KindPresentation:
		return "Presentation"
	case KindSpreadsheet:
		return "Spreadsheet"
	case KindImage:
		return "Raster image"
	default:
		return fmt.Sprintf("Unsupported file type: %s", info.MIMEType)
	}
}
