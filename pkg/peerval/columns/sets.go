package columns

import (
	"sort"
	"strings"
)

// Sets defines named column groups that expand into lists of columns.
var Sets = map[string][]string{
	"profile":   {"shortName", "sector", "industry"},
	"size":      {"MarketCap", "EV"},
	"valuation": {"PE_TTM", "PE_FWD", "P_B", "EV_EBITDA", "EV_Revenue"},
	"quality": {
		"ROE",
		"ROE_fund",
		"NetMargin",
		"NetMargin_fund",
		"EBITDA_Margin",
		"GrossMargin",
		"OpMargin",
	},
	"growth": {"Rev_YoY", "Rev_CAGR_3Y"},
	"ranks": {
		CompositeAll,
		CompositeSimple,
		"PE_TTM_rank",
		"PE_FWD_rank",
		"P_B_rank",
		"EV_EBITDA_rank",
		"EV_Revenue_rank",
		"ROE_rank",
		"ROE_fund_rank",
		"NetMargin_rank",
		"NetMargin_fund_rank",
		"EBITDA_Margin_rank",
		"GrossMargin_rank",
		"OpMargin_rank",
		"Rev_YoY_rank",
		"Rev_CAGR_3Y_rank",
	},
}

// DefaultSets are rendered when no columns are requested.
var DefaultSets = []string{"size", "valuation", "quality", "growth"}

// ExpandSets returns the union of columns for the given set names, preserving
// set order and column order within each set, first occurrence wins.
func ExpandSets(setNames []string) ([]string, error) {
	out := make([]string, 0, 16)
	seen := map[string]struct{}{}
	for _, name := range setNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cols, ok := Sets[name]
		if !ok {
			return nil, &UnknownSetError{Name: name, Available: AvailableSets()}
		}
		for _, c := range cols {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

// Present filters cols down to those in available, keeping order.
func Present(cols []string, available []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if contains(available, c) {
			out = append(out, c)
		}
	}
	return out
}

// UnknownSetError reports an unknown column set name.
type UnknownSetError struct {
	Name      string
	Available []string
}

func (e *UnknownSetError) Error() string {
	return "unknown column set: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

// AvailableSets returns the set names sorted.
func AvailableSets() []string {
	keys := make([]string, 0, len(Sets))
	for k := range Sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
