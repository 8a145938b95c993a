package catalog

import (
	"fmt"
	"regexp"
	"strings"

	config "github.com/JadonKrys/file-catalog/internal/config/server"
	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/go-playground/validator/v10"
)

var checksumPattern = regexp.MustCompile(`^[0-9a-fA-F]{128}$`)

// IsValidChecksum reports whether s is a SHA-512 digest in hex, either case.
func IsValidChecksum(s string) bool {
	return checksumPattern.MatchString(s)
}

// Policy is the configured field policy. The modification set always
// includes the creation set.
type Policy struct {
	MandatoryFields         []string
	ForbiddenFieldsCreation []string
	ForbiddenFieldsUpdate   []string
}

func PolicyFromConfig(cfg config.CatalogServerConfig) Policy {
	return Policy{
		MandatoryFields:         cfg.MandatoryFields,
		ForbiddenFieldsCreation: cfg.ForbiddenFieldsCreation,
		ForbiddenFieldsUpdate:   cfg.ForbiddenFieldsUpdate,
	}
}

// Validator checks record payloads against a Policy. It never mutates its
// input.
type Validator struct {
	policy            Policy
	forbiddenCreation []string
	forbiddenModify   []string
	checks            *validator.Validate
}

func NewValidator(policy Policy) *Validator {
	checks := validator.New()
	err := checks.RegisterValidation("sha512", func(fl validator.FieldLevel) bool {
		return IsValidChecksum(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("catalog: failed to register sha512 validation: %v", err))
	}

	return &Validator{
		policy:            policy,
		forbiddenCreation: dedupe(policy.ForbiddenFieldsCreation),
		forbiddenModify:   dedupe(append(append([]string(nil), policy.ForbiddenFieldsUpdate...), policy.ForbiddenFieldsCreation...)),
		checks:            checks,
	}
}

func (v *Validator) ForbiddenModification() []string {
	return v.forbiddenModify
}

// HasForbiddenAttributes reports whether md sets any field of set.
func HasForbiddenAttributes(md models.Metadata, set []string) bool {
	for _, field := range set {
		if md.Has(field) {
			return true
		}
	}
	return false
}

// CheckCreationForbidden rejects payloads setting creation-forbidden fields.
func (v *Validator) CheckCreationForbidden(md models.Metadata) error {
	if HasForbiddenAttributes(md, v.forbiddenCreation) {
		return newError(ErrForbiddenField, "forbidden attributes")
	}
	return nil
}

// CheckModificationForbidden rejects payloads setting any field of the
// modification set.
func (v *Validator) CheckModificationForbidden(md models.Metadata) error {
	if HasForbiddenAttributes(md, v.forbiddenModify) {
		return newError(ErrForbiddenField, "forbidden attributes")
	}
	return nil
}

// ValidateCreation validates a payload for a new record.
func (v *Validator) ValidateCreation(md models.Metadata) error {
	if err := v.CheckCreationForbidden(md); err != nil {
		return err
	}
	if uid, ok := md[models.FieldUID].(string); !ok || uid == "" {
		return newError(ErrValidation, "member `uid` must be a non-empty string")
	}
	return v.ValidateModification(md)
}

// ValidateModification validates a complete record as it would be stored.
func (v *Validator) ValidateModification(md models.Metadata) error {
	var missing []string
	for _, field := range v.policy.MandatoryFields {
		if !md.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return newError(ErrValidation, fmt.Sprintf(
			"mandatory metadata missing (mandatory fields: %s)", strings.Join(v.policy.MandatoryFields, ", ")))
	}

	checksum, _ := md[models.FieldChecksum].(string)
	if err := v.checks.Var(checksum, "required,sha512"); err != nil {
		return newError(ErrValidation, "`checksum` needs to be a SHA512 hash")
	}

	return v.validateLocations(md[models.FieldLocations])
}

func (v *Validator) validateLocations(value any) error {
	var locations []string
	switch t := value.(type) {
	case []string:
		locations = t
	case []any:
		locations = make([]string, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return newError(ErrValidation, "member `locations` must be a list with at least one non-empty url")
			}
			locations[i] = s
		}
	default:
		return newError(ErrValidation, "member `locations` must be a list")
	}

	if err := v.checks.Var(locations, "min=1"); err != nil {
		return newError(ErrValidation, "member `locations` must be a list with at least one url")
	}
	if err := v.checks.Var(locations, "dive,required"); err != nil {
		return newError(ErrValidation, "member `locations` must be a list with at least one non-empty url")
	}
	return nil
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
