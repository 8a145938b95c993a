package store

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/JadonKrys/file-catalog/pkg/db/models"
)

// Filter selects records by top-level field equality. A scalar value also
// matches a list field containing it. The identifier is addressed as "id".
type Filter map[string]any

// prepared is a normalized filter with the identifier split out.
type prepared struct {
	id     string
	hasID  bool
	uid    string
	hasUID bool
	fields map[string]any
}

func (f Filter) prepare() (*prepared, error) {
	p := &prepared{fields: make(map[string]any, len(f))}

	for key, value := range f {
		if key == models.FieldID {
			raw, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %v", ErrInvalidIdentifier, value)
			}
			id, err := NormalizeID(raw)
			if err != nil {
				return nil, err
			}
			p.id, p.hasID = id, true
			continue
		}

		normalized, err := models.NormalizeValue(value)
		if err != nil {
			return nil, fmt.Errorf("invalid filter value for %q: %w", key, err)
		}
		if key == models.FieldUID {
			if uid, ok := normalized.(string); ok {
				p.uid, p.hasUID = uid, true
			}
		}
		p.fields[key] = normalized
	}

	return p, nil
}

// matches reports whether the decoded document doc with identifier id
// satisfies the filter.
func (p *prepared) matches(id string, doc models.Metadata) bool {
	if p.hasID && p.id != id {
		return false
	}
	for key, want := range p.fields {
		got, ok := doc[key]
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !matchValue(got, want) {
			return false
		}
	}
	return true
}

func matchValue(got, want any) bool {
	if equalValue(got, want) {
		return true
	}
	if list, ok := got.([]any); ok {
		if _, wantList := want.([]any); !wantList {
			for _, item := range list {
				if equalValue(item, want) {
					return true
				}
			}
		}
	}
	return false
}

// equalValue compares decoded JSON values. Numbers compare by value, so
// 42 and 42.0 are equal.
func equalValue(a, b any) bool {
	switch x := a.(type) {
	case json.Number:
		y, ok := b.(json.Number)
		return ok && equalNumber(x, y)
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, found := y[k]
			if !found || !equalValue(v, w) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalValue(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func equalNumber(a, b json.Number) bool {
	if a == b {
		return true
	}
	x, okA := new(big.Rat).SetString(a.String())
	y, okB := new(big.Rat).SetString(b.String())
	return okA && okB && x.Cmp(y) == 0
}

// paginate applies the manual [start, start+limit) slice.
func paginate(items []Summary, limit, start int) []Summary {
	if start < 0 {
		start = 0
	}
	if start >= len(items) {
		return []Summary{}
	}
	end := len(items)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return items[start:end]
}
