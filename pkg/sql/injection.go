// Package sql provides query-safety helpers: injection screening for
// search term values and the wildcard pattern builder for ILIKE matches.
package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a search term that failed screening.
type InjectionCheckResult struct {
	IsSQLi      bool   // true if a SQL injection pattern was detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	TermKey     string // search term key that failed the check
	TermValue   any    // the value that was checked
}

// CheckTermForInjection screens one search term value with libinjection.
// Values are always bound as query parameters, never interpolated, so
// this is defense in depth: a positive here means the caller is probing
// and the whole request should fail closed.
//
// Only string values are screened; numbers, booleans and range maps
// cannot carry injection payloads and return nil.
func CheckTermForInjection(termKey string, value any) *InjectionCheckResult {
	strValue, ok := value.(string)
	if !ok {
		return nil
	}

	isSQLi, fingerprint := libinjection.IsSQLi(strValue)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			TermKey:     termKey,
			TermValue:   value,
		}
	}

	return nil
}

// CheckAllTerms screens every search term value. Returns one result per
// term that failed; empty when all are clean.
func CheckAllTerms(terms map[string]any) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for key, value := range terms {
		if result := CheckTermForInjection(key, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
