package contentitem

import (
	"mime"
	"strings"
)

// DefaultMediaType labels data whose item carries no usable MIME type.
const DefaultMediaType = "application/octet-stream"

// ResolveMediaType returns the media type to serve an item's bytes with. A
// missing or unparseable hint yields DefaultMediaType; wildcards are not
// accepted as a concrete type.
func ResolveMediaType(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return DefaultMediaType
	}

	mediaType, params, err := mime.ParseMediaType(hint)
	if err != nil {
		return DefaultMediaType
	}

	typ, subtype, ok := strings.Cut(mediaType, "/")
	if !ok || typ == "" || subtype == "" || typ == "*" || subtype == "*" {
		return DefaultMediaType
	}

	if formatted := mime.FormatMediaType(mediaType, params); formatted != "" {
		return formatted
	}
	return DefaultMediaType
}
