package api

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/tendant/contentitem/pkg/contentitem"
)

// requestUpload reads file parts straight off the request body without
// buffering the form.
type requestUpload struct {
	reader    *multipart.Reader
	multipart bool
}

func newRequestUpload(r *http.Request) *requestUpload {
	u := &requestUpload{}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return u
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return u
	}
	u.reader = reader
	u.multipart = true
	return u
}

func (u *requestUpload) Multipart() bool {
	return u.multipart
}

// FirstPart skips form fields and returns the first part carrying a file.
func (u *requestUpload) FirstPart() (contentitem.Part, error) {
	if u.reader == nil {
		return nil, nil
	}

	for {
		part, err := u.reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if part.FileName() == "" {
			part.Close()
			continue
		}
		return &streamPart{part: part}, nil
	}
}

type streamPart struct {
	part *multipart.Part
}

func (p *streamPart) Name() string     { return p.part.FormName() }
func (p *streamPart) Filename() string { return p.part.FileName() }

func (p *streamPart) Open() (io.ReadCloser, error) {
	return p.part, nil
}
