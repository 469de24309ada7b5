package usecase

import (
	"strings"

	"world-vlog/domain/model"
	"world-vlog/infrastructure/utils"
)

// FilterConfig holds the admission thresholds for search candidates.
type FilterConfig struct {
	MinViews           int64
	MinDurationSeconds int
	ExcludeTerms       []string
}

// Rejection reasons reported by RelevanceFilter.Admit.
const (
	RejectLowViews   = "low-views"
	RejectTooShort   = "too-short"
	RejectIrrelevant = "irrelevant"
	RejectExcluded   = "excluded-term"
)

// RelevanceFilter applies the quality and relevance rules in a fixed order; the first failing rule rejects.
type RelevanceFilter struct {
	cfg     FilterConfig
	exclude []string
}

func NewRelevanceFilter(cfg FilterConfig) *RelevanceFilter {
	exclude := make([]string, 0, len(cfg.ExcludeTerms))
	for _, term := range cfg.ExcludeTerms {
		if term = strings.ToLower(strings.TrimSpace(term)); term != "" {
			exclude = append(exclude, term)
		}
	}
	return &RelevanceFilter{cfg: cfg, exclude: exclude}
}

// Filter keeps the admitted candidates in input order.
func (f *RelevanceFilter) Filter(candidates []model.VideoCandidate, place string, localKeywords []string) []model.VideoResult {
	needles := relevanceNeedles(place, localKeywords)
	out := make([]model.VideoResult, 0, len(candidates))
	for _, c := range candidates {
		if ok, _ := f.admit(c, needles); ok {
			out = append(out, c.ToVideoResult())
		}
	}
	return out
}

// Admit reports whether a single candidate passes, and the reason when it does not.
func (f *RelevanceFilter) Admit(c model.VideoCandidate, place string, localKeywords []string) (bool, string) {
	return f.admit(c, relevanceNeedles(place, localKeywords))
}

func (f *RelevanceFilter) admit(c model.VideoCandidate, needles []string) (bool, string) {
	if utils.ParseViewCount(c.ViewCount) < f.cfg.MinViews {
		return false, RejectLowViews
	}
	if c.DurationSeconds < f.cfg.MinDurationSeconds {
		return false, RejectTooShort
	}

	text := strings.ToLower(c.Title + "\n" + c.Description)
	relevant := false
	for _, n := range needles {
		if strings.Contains(text, n) {
			relevant = true
			break
		}
	}
	if !relevant {
		return false, RejectIrrelevant
	}

	for _, term := range f.exclude {
		if strings.Contains(text, term) {
			return false, RejectExcluded
		}
	}
	return true, ""
}

// relevanceNeedles is the place text plus the first token of every local keyword, lower-cased.
func relevanceNeedles(place string, localKeywords []string) []string {
	needles := make([]string, 0, len(localKeywords)+1)
	if p := strings.ToLower(strings.Join(strings.Fields(place), " ")); p != "" {
		needles = append(needles, p)
	}
	for _, kw := range localKeywords {
		if fields := strings.Fields(kw); len(fields) > 0 {
			needles = append(needles, strings.ToLower(fields[0]))
		}
	}
	return needles
}
