package api

import (
	"io"
	"net/http"
	"path"

	"github.com/JadonKrys/file-catalog/pkg/catalog"
	"github.com/JadonKrys/file-catalog/pkg/db/models"
)

const (
	contentType = "application/hal+json; charset=UTF-8"
	fieldLinks  = "_links"
)

type link struct {
	Href string `json:"href"`
}

type links map[string]link

// urls builds the hypermedia links below the configured base URL.
type urls struct {
	base string
}

func (u urls) root() string {
	return u.base
}

func (u urls) files() string {
	return path.Join(u.base, "files")
}

func (u urls) file(id string) string {
	return path.Join(u.base, "files", id)
}

func (u urls) fileLinks(id string) links {
	return links{
		"self":   {Href: u.file(id)},
		"parent": {Href: u.files()},
	}
}

// writeJSON writes body with object keys sorted at every depth.
func writeJSON(w http.ResponseWriter, status int, body any) error {
	data, err := models.Canonical(body)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// writeRecord writes a record wrapped in its links, with the tag as ETag.
func (u urls) writeRecord(w http.ResponseWriter, rec *catalog.Record) error {
	body := rec.Metadata.Clone()
	body[fieldLinks] = u.fileLinks(rec.ID())

	w.Header().Set("ETag", `"`+rec.Tag+`"`)
	return writeJSON(w, http.StatusOK, body)
}

// decodeMetadata reads a JSON object from the request body. The envelope
// links a client may echo back are dropped.
func decodeMetadata(r *http.Request) (models.Metadata, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	var md models.Metadata
	if err := models.Unmarshal(data, &md); err != nil || md == nil {
		return nil, &catalog.Error{
			Code:    catalog.ErrValidation,
			Message: "request body must be a JSON object",
			Err:     err,
		}
	}
	delete(md, fieldLinks)
	return md, nil
}
