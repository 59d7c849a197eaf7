package extract

import "github.com/joseph-ayodele/deepread-extract/constants"

// extractPath is the same on every DEEPREAD host.
const extractPath = "/api/v1/extract"

var hosts = map[constants.Language]string{
	constants.English:  "deepread-extract-intelligent-document-extraction.p.rapidapi.com",
	constants.Japanese: "deepread-extract-intelligent-invoice-extraction-japanese.p.rapidapi.com",
}

// Host returns the RapidAPI host serving lang, or "" for unsupported languages.
func Host(lang constants.Language) string {
	return hosts[lang]
}

// sendsProcessType: the ja endpoint has a single implicit process type and rejects the parameter.
func sendsProcessType(lang constants.Language) bool {
	return lang == constants.English
}
