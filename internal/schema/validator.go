package schema

import (
	"errors"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Violation is one schema violation: where it happened and what was wrong.
// A single validation pass reports every violation, not just the first.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

var printer = message.NewPrinter(language.English)

// Validate checks v against the compiled schema and returns the full set of
// violations; nil means v conforms. v must be a decoded JSON value
// (map[string]any, []any, string, float64, bool, nil).
func Validate(s *jsonschema.Schema, v any) []Violation {
	err := s.Validate(v)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Violation{{Path: "/", Message: err.Error()}}
	}
	var out []Violation
	flatten(ve, &out)
	return out
}

// flatten walks the cause tree down to its leaves. Missing required
// properties are reported one violation per property, at the property's
// own path, so the caller learns exactly which field is absent.
func flatten(ve *jsonschema.ValidationError, out *[]Violation) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			flatten(c, out)
		}
		return
	}
	if req, ok := ve.ErrorKind.(*kind.Required); ok {
		for _, missing := range req.Missing {
			*out = append(*out, Violation{
				Path:    instancePath(append(slices.Clone(ve.InstanceLocation), missing)),
				Message: "missing required property '" + missing + "'",
			})
		}
		return
	}
	*out = append(*out, Violation{
		Path:    instancePath(ve.InstanceLocation),
		Message: ve.ErrorKind.LocalizedString(printer),
	})
}

func instancePath(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}
