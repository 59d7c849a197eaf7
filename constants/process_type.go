package constants

import (
	"fmt"
	"strings"
)

// ProcessType is the DEEPREAD document category. It decides both the API
// parameter and the shape of extractedInformation in the response.
type ProcessType string

const (
	Form    ProcessType = "form"
	Invoice ProcessType = "invoice"
	Receipt ProcessType = "receipt"
)

var allProcessTypes = []ProcessType{Form, Invoice, Receipt}

// processTypesByLanguage: not every backend supports every type.
var processTypesByLanguage = map[Language][]ProcessType{
	English:  {Form, Invoice, Receipt},
	Japanese: {Invoice},
}

// ProcessTypes returns every known process type.
func ProcessTypes() []ProcessType {
	out := make([]ProcessType, len(allProcessTypes))
	copy(out, allProcessTypes)
	return out
}

// ProcessTypesFor returns the process types the given language's endpoint accepts.
// Unknown languages get nil.
func ProcessTypesFor(lang Language) []ProcessType {
	types, ok := processTypesByLanguage[lang]
	if !ok {
		return nil
	}
	out := make([]ProcessType, len(types))
	copy(out, types)
	return out
}

func ParseProcessType(s string) (ProcessType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, pt := range allProcessTypes {
		if string(pt) == s {
			return pt, nil
		}
	}
	return "", fmt.Errorf("unsupported process type %q (want one of form, invoice, receipt)", s)
}

func (p ProcessType) Valid() bool {
	for _, x := range allProcessTypes {
		if x == p {
			return true
		}
	}
	return false
}

func (p ProcessType) String() string { return string(p) }
