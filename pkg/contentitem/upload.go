package contentitem

import "io"

// NewFileUpload wraps a single file as an Upload, for callers that are not
// parsing an HTTP request (CLI, tests). open is called once by the gateway.
func NewFileUpload(name, filename string, open func() (io.ReadCloser, error)) Upload {
	return &fileUpload{part: &filePart{name: name, filename: filename, open: open}}
}

type fileUpload struct {
	part *filePart
}

func (u *fileUpload) Multipart() bool { return true }

func (u *fileUpload) FirstPart() (Part, error) {
	if u.part == nil || u.part.open == nil {
		return nil, nil
	}
	return u.part, nil
}

type filePart struct {
	name     string
	filename string
	open     func() (io.ReadCloser, error)
}

func (p *filePart) Name() string     { return p.name }
func (p *filePart) Filename() string { return p.filename }

func (p *filePart) Open() (io.ReadCloser, error) {
	return p.open()
}
