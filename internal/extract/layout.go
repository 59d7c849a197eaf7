package extract

import "github.com/joseph-ayodele/deepread-extract/constants"

// Layout is the shape of extractedInformation. It follows from the process
// type alone; it is never inferred from the payload.
type Layout int

const (
	// LayoutForm: a list of key/value pairs, value nullable.
	LayoutForm Layout = iota
	// LayoutPreset: {"fields": {name: region}} for invoices and receipts.
	LayoutPreset
)

func LayoutFor(pt constants.ProcessType) Layout {
	if pt == constants.Form {
		return LayoutForm
	}
	return LayoutPreset
}

func (l Layout) String() string {
	switch l {
	case LayoutForm:
		return "form"
	case LayoutPreset:
		return "preset"
	default:
		return "unknown"
	}
}
