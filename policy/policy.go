// Package policy defines the contract for the policy knowledge store: a
// tabular lookup from factory name to buyer companies, and from buyer
// company to documented labor policies with source references.
package policy

import (
	"context"
	"strings"
)

// MatchMode controls how factory names are matched against supplier rows.
type MatchMode string

const (
	MatchExact   MatchMode = "exact"
	MatchPartial MatchMode = "partial"
	MatchBoth    MatchMode = "both"
)

// Known policy categories. Correlation results reference these labels.
const (
	CategoryRecruitmentFees      = "Recruitment Fees"
	CategoryFeeRepayment         = "Fee Repayment"
	CategoryDocumentConfiscation = "Document Confiscation"
	CategoryHeatStress           = "Heat Stress"
	CategoryHealthCare           = "Health Care"
	CategoryWagesOvertime        = "Wages and Overtime"
)

// Categories lists every known policy category.
func Categories() []string {
	return []string{
		CategoryRecruitmentFees,
		CategoryFeeRepayment,
		CategoryDocumentConfiscation,
		CategoryHeatStress,
		CategoryHealthCare,
		CategoryWagesOvertime,
	}
}

// Ref is one documented policy with its source reference.
type Ref struct {
	Text         string `json:"text"`
	DocumentName string `json:"document_name"`
	DocumentURL  string `json:"document_url"`
}

// Store is the policy knowledge store contract.
type Store interface {
	// BuyersForFactory resolves the buyer companies sourcing from the
	// named factory, deduplicated.
	BuyersForFactory(ctx context.Context, factoryName string, mode MatchMode) ([]string, error)

	// PoliciesForCompany returns the company's documented policies keyed
	// by category. Companies without any documented policy yield an
	// empty map, not an error.
	PoliciesForCompany(ctx context.Context, companyName string) (map[string]Ref, error)
}

// NormalizeName lowercases a name and strips surrounding whitespace and
// trailing punctuation, so "Sunrise Garment Factory." matches
// "sunrise garment factory".
func NormalizeName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimRight(normalized, ".,;: ")
}

// NamesEqual reports whether two names match exactly after normalization.
func NamesEqual(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// NameContains reports whether haystack contains needle, case-insensitive.
func NameContains(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
