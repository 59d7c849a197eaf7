package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoPages is returned when data has no pages to draw from.
var ErrNoPages = errors.New(`data has no pages`)

// BoundingBox is four raw coordinates, two opposite corners. Pixel or
// normalised; the values are passed through as received.
type BoundingBox [4]float64

// Region is anything DEEPREAD located on the page.
type Region struct {
	BoundingBox BoundingBox `json:"bounding_box"`
}

// FormPair is one key/value result of the form process type.
type FormPair struct {
	Key   Region  `json:"key"`
	Value *Region `json:"value"` // nil when no value was found
}

// NamedField is one preset (invoice/receipt) field.
type NamedField struct {
	Name   string
	Region Region
}

// PresetFields keeps the order fields appear in the response.
type PresetFields []NamedField

func (p *PresetFields) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("fields: want object, got %v", tok)
	}
	var out PresetFields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("fields: want name, got %v", tok)
		}
		var r Region
		if err := dec.Decode(&r); err != nil {
			return fmt.Errorf("fields.%s: %w", name, err)
		}
		out = append(out, NamedField{Name: name, Region: r})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

type document struct {
	Pages []struct {
		ExtractedInformation json.RawMessage `json:"extractedInformation"`
	} `json:"pages"`
}

// FirstPageInformation returns pages[0].extractedInformation from a data member.
func FirstPageInformation(data json.RawMessage) (json.RawMessage, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if len(doc.Pages) == 0 {
		return nil, ErrNoPages
	}
	info := doc.Pages[0].ExtractedInformation
	if len(info) == 0 {
		return nil, errors.New("pages[0] has no extractedInformation")
	}
	return info, nil
}

// DecodeForm validates and decodes the first page of a form result.
func DecodeForm(data json.RawMessage) ([]FormPair, error) {
	if err := validateLayout(LayoutForm, data); err != nil {
		return nil, err
	}
	info, err := FirstPageInformation(data)
	if err != nil {
		return nil, err
	}
	var pairs []FormPair
	if err := json.Unmarshal(info, &pairs); err != nil {
		return nil, fmt.Errorf("decode form pairs: %w", err)
	}
	return pairs, nil
}

// DecodePreset validates and decodes the first page of an invoice/receipt result.
func DecodePreset(data json.RawMessage) (PresetFields, error) {
	if err := validateLayout(LayoutPreset, data); err != nil {
		return nil, err
	}
	info, err := FirstPageInformation(data)
	if err != nil {
		return nil, err
	}
	var preset struct {
		Fields PresetFields `json:"fields"`
	}
	if err := json.Unmarshal(info, &preset); err != nil {
		return nil, fmt.Errorf("decode preset fields: %w", err)
	}
	return preset.Fields, nil
}
