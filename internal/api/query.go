package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/JadonKrys/file-catalog/pkg/catalog"
	"github.com/JadonKrys/file-catalog/pkg/db/models"
)

// listParams are the parsed query parameters of the collection endpoint.
type listParams struct {
	Query map[string]any
	Limit int
	Start int
}

// parseListParams validates limit, start and query. limit defaults to
// maxFiles and is capped at it.
func parseListParams(values url.Values, maxFiles int) (*listParams, error) {
	p := &listParams{Limit: maxFiles}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalidParams(err)
		}
		if limit < 1 {
			return nil, invalidParams(errors.New("limit is not positive"))
		}
		if limit < maxFiles {
			p.Limit = limit
		}
	}

	if raw := values.Get("start"); raw != "" {
		start, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalidParams(err)
		}
		if start < 0 {
			return nil, invalidParams(errors.New("start is negative"))
		}
		p.Start = start
	}

	if raw := values.Get("query"); raw != "" {
		var query map[string]any
		if err := models.Unmarshal([]byte(raw), &query); err != nil {
			return nil, invalidParams(err)
		}
		if query == nil {
			return nil, invalidParams(fmt.Errorf("query must be a JSON object"))
		}
		p.Query = query
	}

	return p, nil
}

func invalidParams(err error) error {
	return &catalog.Error{Code: catalog.ErrValidation, Message: "invalid query parameters", Err: err}
}
