package api

import (
	"net/http"

	"github.com/JadonKrys/file-catalog/pkg/catalog"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{
		fieldLinks: links{"self": {Href: s.urls.root()}},
		"files":    link{Href: s.urls.files()},
	})
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) error {
	params, err := parseListParams(r.URL.Query(), s.maxFiles)
	if err != nil {
		s.log.Warn("Query parameter error: %v", err)
		return err
	}

	files, err := s.catalog.List(r.Context(), params.Query, params.Limit, params.Start)
	if err != nil {
		return err
	}

	hrefs := make([]string, len(files))
	for i, f := range files {
		hrefs[i] = s.urls.file(f.ID)
	}

	return writeJSON(w, http.StatusOK, map[string]any{
		fieldLinks: links{
			"self":   {Href: s.urls.files()},
			"parent": {Href: s.urls.root()},
		},
		"_embedded": map[string][]store.Summary{"files": files},
		"files":     hrefs,
	})
}

func (s *Server) handleCreateFile(w http.ResponseWriter, r *http.Request) error {
	md, err := decodeMetadata(r)
	if err != nil {
		return err
	}

	reg, err := s.catalog.Register(r.Context(), md)
	if err != nil {
		return err
	}
	s.metrics.RecordRegistration(reg.Outcome.String())

	status := http.StatusOK
	if reg.Outcome == catalog.Created {
		status = http.StatusCreated
	}

	return writeJSON(w, status, map[string]any{
		fieldLinks: links{
			"self":   {Href: s.urls.files()},
			"parent": {Href: s.urls.root()},
		},
		"file": s.urls.file(reg.ID),
	})
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) error {
	rec, err := s.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	return s.urls.writeRecord(w, rec)
}

// presentedTags returns the version tags of a mutation request. If-Match
// is the standard header; If-None-Match is accepted for older clients that
// echo the tag there.
func presentedTags(r *http.Request) []string {
	if tags := catalog.ParseTags(r.Header.Values("If-Match")...); len(tags) > 0 {
		return tags
	}
	return catalog.ParseTags(r.Header.Values("If-None-Match")...)
}

func (s *Server) handlePatchFile(w http.ResponseWriter, r *http.Request) error {
	md, err := decodeMetadata(r)
	if err != nil {
		return err
	}

	rec, err := s.catalog.Update(r.Context(), r.PathValue("id"), md, presentedTags(r))
	if err != nil {
		return err
	}
	return s.urls.writeRecord(w, rec)
}

func (s *Server) handlePutFile(w http.ResponseWriter, r *http.Request) error {
	md, err := decodeMetadata(r)
	if err != nil {
		return err
	}

	rec, err := s.catalog.Replace(r.Context(), r.PathValue("id"), md, presentedTags(r))
	if err != nil {
		return err
	}
	return s.urls.writeRecord(w, rec)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) error {
	if err := s.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
