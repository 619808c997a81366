package config

const (
	// MaxUploadBytes caps multipart upload size. 50MB covers scanned
	// documents and multi-page TIFFs without letting a single request pin
	// the scratch directory.
	MaxUploadBytes = 50 << 20

	// MaxFileNameLength is the maximum length for an original filename kept
	// in a history record. Limited to 255 to fit in VARCHAR(255).
	MaxFileNameLength = 255

	// MaxFormatLength bounds originalFormat/targetFormat strings in history
	// payloads; real extensions are far shorter.
	MaxFormatLength = 10
)
