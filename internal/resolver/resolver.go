// Package resolver decides which DEEPREAD endpoint and process type a file is sent with.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/deepread-extract/constants"
	"github.com/joseph-ayodele/deepread-extract/internal/common"
)

// Resolve determines the processing language.
//
// Order of preference:
//  1. override, when non-empty
//  2. a "<name>-<language>.<ext>" filename suffix
//  3. constants.DefaultLanguage
func Resolve(filename string, override constants.Language) constants.Language {
	if override != "" {
		return override
	}
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	for _, lang := range constants.Languages() {
		if strings.HasSuffix(stem, "-"+string(lang)) {
			return lang
		}
	}
	return constants.DefaultLanguage
}

// AllowedTypes returns the process types lang's endpoint accepts.
func AllowedTypes(lang constants.Language) []constants.ProcessType {
	return constants.ProcessTypesFor(lang)
}

// AllTypes returns every process type; used when no language filter is known yet.
func AllTypes() []constants.ProcessType {
	return constants.ProcessTypes()
}

// TypesFor is AllowedTypes, or AllTypes when lang is empty.
func TypesFor(lang constants.Language) []constants.ProcessType {
	if lang == "" {
		return AllTypes()
	}
	return AllowedTypes(lang)
}

// IsAllowed reports whether pt may be sent to lang's endpoint.
func IsAllowed(lang constants.Language, pt constants.ProcessType) bool {
	for _, t := range AllowedTypes(lang) {
		if t == pt {
			return true
		}
	}
	return false
}

// ChooseProcessType settles the process type for a single file.
// languageExplicit is true when lang came from the caller rather than the filename.
func ChooseProcessType(lang constants.Language, explicit constants.ProcessType, languageExplicit bool) (constants.ProcessType, error) {
	allowed := AllowedTypes(lang)
	if len(allowed) == 0 {
		return "", common.NewConfigErrorf("unsupported language %q", lang)
	}

	// Single-type endpoints (ja) pick their own process type.
	if len(allowed) == 1 {
		if explicit == "" {
			return allowed[0], nil
		}
		if languageExplicit {
			return "", common.NewConfigErrorf("process type argument not allowed with language %s", lang)
		}
		if explicit != allowed[0] {
			return "", common.NewConfigErrorf("process type %s not supported for language %s", explicit, lang)
		}
		return explicit, nil
	}

	if explicit == "" {
		return "", common.NewConfigErrorf("a process type is required when language is %s", lang)
	}
	if !IsAllowed(lang, explicit) {
		return "", common.NewConfigErrorf("process type %s not supported for language %s", explicit, lang)
	}
	return explicit, nil
}
