package sitesettings

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/schema"
)

// Patchable field names, in the order they are reported.
const (
	FieldActiveThemeID     = "activeThemeId"
	FieldActivePresetID    = "activePresetId"
	FieldNavPreset         = "navPreset"
	FieldFooterPreset      = "footerPreset"
	FieldSEODefaults       = "seoDefaults"
	FieldGlobalCTADefaults = "globalCtaDefaults"
)

var patchFields = []string{
	FieldActiveThemeID,
	FieldActivePresetID,
	FieldNavPreset,
	FieldFooterPreset,
	FieldSEODefaults,
	FieldGlobalCTADefaults,
}

// Field is one patch member. The zero value is absent; Null clears the stored
// value.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Value returns a present, non-null field.
func Value[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a present field that clears the stored value.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f Field[T]) ptr() *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// Patch is a validated partial update.
type Patch struct {
	ActiveThemeID     Field[string]
	ActivePresetID    Field[string]
	NavPreset         Field[NavPreset]
	FooterPreset      Field[FooterPreset]
	SEODefaults       Field[SEODefaults]
	GlobalCTADefaults Field[CTADefaults]
}

// Names lists the supplied fields.
func (p Patch) Names() []string {
	set := map[string]bool{
		FieldActiveThemeID:     p.ActiveThemeID.Set,
		FieldActivePresetID:    p.ActivePresetID.Set,
		FieldNavPreset:         p.NavPreset.Set,
		FieldFooterPreset:      p.FooterPreset.Set,
		FieldSEODefaults:       p.SEODefaults.Set,
		FieldGlobalCTADefaults: p.GlobalCTADefaults.Set,
	}
	var names []string
	for _, name := range patchFields {
		if set[name] {
			names = append(names, name)
		}
	}
	return names
}

// Apply returns s with the supplied fields replaced.
func (p Patch) Apply(s SiteSettings) SiteSettings {
	if p.ActiveThemeID.Set && !p.ActiveThemeID.Null {
		s.ActiveThemeID = p.ActiveThemeID.Value
	}
	if p.ActivePresetID.Set {
		s.ActivePresetID = p.ActivePresetID.ptr()
	}
	if p.NavPreset.Set {
		s.NavPreset = p.NavPreset.ptr()
	}
	if p.FooterPreset.Set {
		s.FooterPreset = p.FooterPreset.ptr()
	}
	if p.SEODefaults.Set {
		s.SEODefaults = p.SEODefaults.ptr()
	}
	if p.GlobalCTADefaults.Set {
		s.GlobalCTADefaults = p.GlobalCTADefaults.ptr()
	}
	return s
}

// ParsePatch decodes a JSON patch document and validates every supplied
// field. All problems are reported together in a *schema.ValidationError.
func ParsePatch(data []byte) (Patch, error) {
	p, report := parsePatch(data)
	if err := report.Err(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

// parsePatch returns the fields that decoded cleanly alongside the report for
// the ones that did not.
func parsePatch(data []byte) (Patch, *schema.ValidationError) {
	report := schema.NewValidationError()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Patch{}, schema.FromDecodeError(err, "")
	}
	if raw == nil {
		report.Add(schema.BodyField, "must be an object")
		return Patch{}, report
	}
	if len(raw) == 0 {
		report.Add(schema.BodyField, "must set at least one field")
		return Patch{}, report
	}

	var p Patch
	for key, msg := range raw {
		switch key {
		case FieldActiveThemeID:
			p.ActiveThemeID = decodeID(key, msg, false, report)
		case FieldActivePresetID:
			p.ActivePresetID = decodeID(key, msg, true, report)
		case FieldNavPreset:
			p.NavPreset = decodeBlock[NavPreset](key, msg, report)
		case FieldFooterPreset:
			p.FooterPreset = decodeBlock[FooterPreset](key, msg, report)
		case FieldSEODefaults:
			p.SEODefaults = decodeBlock[SEODefaults](key, msg, report)
		case FieldGlobalCTADefaults:
			p.GlobalCTADefaults = decodeBlock[CTADefaults](key, msg, report)
		default:
			report.Add(key, schema.UnknownFieldMessage)
		}
	}
	return p, report
}

func isNull(msg json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
}

func decodeID(path string, msg json.RawMessage, nullable bool, report *schema.ValidationError) Field[string] {
	if isNull(msg) {
		if !nullable {
			report.Add(path, "must not be null")
			return Field[string]{}
		}
		return Null[string]()
	}

	var id string
	if err := json.Unmarshal(msg, &id); err != nil {
		report.Merge("", schema.FromDecodeError(err, path))
		return Field[string]{}
	}
	if strings.TrimSpace(id) == "" {
		report.Add(path, "is required")
		return Field[string]{}
	}
	return Value(id)
}

func decodeBlock[T any](path string, msg json.RawMessage, report *schema.ValidationError) Field[T] {
	if isNull(msg) {
		return Null[T]()
	}

	var v T
	dec := json.NewDecoder(bytes.NewReader(msg))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		report.Merge("", schema.FromDecodeError(err, path))
		return Field[T]{}
	}

	blockReport := schema.Struct(v, path)
	if blockReport.Len() > 0 {
		report.Merge("", blockReport)
		return Field[T]{}
	}
	return Value(v)
}
