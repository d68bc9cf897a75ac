package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/schema"
)

// ValidateTokens checks every token group and returns a *schema.ValidationError
// listing all violations, or nil.
func ValidateTokens(t ThemeTokens) error {
	return schema.Struct(t, "").Err()
}

// ValidatePreset checks a preset's identity fields and its tokens.
func ValidatePreset(p ThemeTokenPreset) error {
	return schema.Struct(p, "").Err()
}

// ValidatePack checks a pack's identity fields and its tokens. Variant
// selections are not checked here; unknown ones are skipped at resolution.
func ValidatePack(p ThemePack) error {
	report := schema.Struct(p, "")
	for component, variant := range p.ComponentVariants {
		if component == "" {
			report.Add("componentVariants", "component names must not be empty")
		}
		if variant == "" {
			report.Add(schema.Join("componentVariants", component), "is required")
		}
	}
	return report.Err()
}

// ParseTokens decodes and validates a JSON token document.
func ParseTokens(data []byte) (ThemeTokens, error) {
	var t ThemeTokens
	if err := decodeAndValidate(data, &t); err != nil {
		return ThemeTokens{}, err
	}
	return t, nil
}

// ParsePreset decodes and validates a JSON preset document.
func ParsePreset(data []byte) (ThemeTokenPreset, error) {
	var p ThemeTokenPreset
	if err := decodeAndValidate(data, &p); err != nil {
		return ThemeTokenPreset{}, err
	}
	return p, nil
}

// ParsePack decodes and validates a JSON pack document, including its
// variant selections.
func ParsePack(data []byte) (ThemePack, error) {
	var p ThemePack
	if err := decodeAndValidate(data, &p); err != nil {
		return ThemePack{}, err
	}
	if err := ValidatePack(p); err != nil {
		return ThemePack{}, err
	}
	return p, nil
}

// DocumentKind names what ParseDocument expects.
type DocumentKind string

const (
	DocumentTokens DocumentKind = "tokens"
	DocumentPreset DocumentKind = "preset"
	DocumentPack   DocumentKind = "pack"
)

// ErrUnknownDocumentKind is returned by ParseDocument for other kinds.
var ErrUnknownDocumentKind = errors.New("document kind must be tokens, preset or pack")

// ParseDocument validates data as the given kind and discards the result.
func ParseDocument(kind DocumentKind, data []byte) error {
	var err error
	switch kind {
	case DocumentTokens, "":
		_, err = ParseTokens(data)
	case DocumentPreset:
		_, err = ParsePreset(data)
	case DocumentPack:
		_, err = ParsePack(data)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDocumentKind, kind)
	}
	return err
}

// decodeAndValidate rejects keys the target does not declare and reports a
// type mismatch at its path in place of the constraint failures the zero
// value left behind would produce there.
func decodeAndValidate(data []byte, target any) error {
	report := schema.NewValidationError()

	var decodeReport *schema.ValidationError
	if err := decodeStrict(data, target); err != nil {
		decodeReport = schema.FromDecodeError(err, "")
		if decodeReport.Has(schema.BodyField) {
			return decodeReport
		}
	}

	structReport := schema.Struct(target, "")
	for path, msgs := range structReport.Fields {
		if decodeReport.Has(path) {
			continue
		}
		for _, msg := range msgs {
			report.Add(path, msg)
		}
	}
	report.Merge("", decodeReport)

	return report.Err()
}

// decodeStrict decodes exactly one JSON value. The decoder keeps going after
// an unknown key or a type mismatch, so target is filled as far as possible.
func decodeStrict(data []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after the JSON document")
	}
	return nil
}
