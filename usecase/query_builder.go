package usecase

import (
	"strings"

	"world-vlog/domain/model"
)

// BuildSearchQueries returns the query tiers for a place, most specific first.
// The result is empty only when place is blank.
func BuildSearchQueries(place string, mode model.Mode, localKeywords []string) []string {
	place = strings.Join(strings.Fields(place), " ")
	if place == "" {
		return nil
	}

	switch mode {
	case model.ModeCamp:
		return []string{
			place + " solo camping bushcraft outdoor",
			place + " camping travel",
		}
	case model.ModeScenic:
		return []string{
			place + " drone aerial 4K",
			place + " scenic cinematic travel",
		}
	default:
		first := place + " walking tour 4K"
		if kw := firstKeyword(localKeywords); kw != "" {
			first += " " + kw
		}
		return []string{
			first,
			place + " travel vlog walk",
		}
	}
}

func firstKeyword(keywords []string) string {
	for _, k := range keywords {
		if k = strings.Join(strings.Fields(k), " "); k != "" {
			return k
		}
	}
	return ""
}
