package model

// Mode selects the flavour of travel footage a query is looking for.
type Mode string

const (
	ModeVlog   Mode = "vlog"
	ModeCamp   Mode = "camp"
	ModeScenic Mode = "scenic"
)

// ParseMode maps free text onto a known mode, falling back to vlog.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeCamp:
		return ModeCamp
	case ModeScenic:
		return ModeScenic
	default:
		return ModeVlog
	}
}

// VideoResult is the canonical record returned to callers and persisted in the cache tiers.
// Ratings is an overlay computed at read time and never persisted.
type VideoResult struct {
	ID              string         `json:"id" bson:"id"`
	Title           string         `json:"title" bson:"title"`
	ChannelTitle    string         `json:"channelTitle" bson:"channelTitle"`
	ChannelID       string         `json:"channelId" bson:"channelId"`
	Thumbnail       string         `json:"thumbnail" bson:"thumbnail"`
	ViewCount       string         `json:"viewCount" bson:"viewCount"`
	PublishedAt     string         `json:"publishedAt" bson:"publishedAt"`
	DurationSeconds int            `json:"durationSeconds" bson:"durationSeconds"`
	Ratings         *RatingSummary `json:"ratings,omitempty" bson:"-"`
}

// VideoCandidate is a raw search hit merged with its detail metadata, before filtering.
type VideoCandidate struct {
	ID              string
	Title           string
	Description     string
	ChannelTitle    string
	ChannelID       string
	Thumbnail       string
	PublishedAt     string
	ViewCount       string
	DurationSeconds int
}

// ToVideoResult drops the fields only needed for filtering.
func (c VideoCandidate) ToVideoResult() VideoResult {
	return VideoResult{
		ID:              c.ID,
		Title:           c.Title,
		ChannelTitle:    c.ChannelTitle,
		ChannelID:       c.ChannelID,
		Thumbnail:       c.Thumbnail,
		ViewCount:       c.ViewCount,
		PublishedAt:     c.PublishedAt,
		DurationSeconds: c.DurationSeconds,
	}
}

// DedupeVideos keeps the first occurrence of every id, preserving order.
func DedupeVideos(videos []VideoResult) []VideoResult {
	seen := make(map[string]struct{}, len(videos))
	out := make([]VideoResult, 0, len(videos))
	for _, v := range videos {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}
		out = append(out, v)
	}
	return out
}

// CloneVideos copies the slice and strips any rating overlay.
func CloneVideos(videos []VideoResult) []VideoResult {
	if videos == nil {
		return nil
	}
	out := make([]VideoResult, len(videos))
	for i, v := range videos {
		v.Ratings = nil
		out[i] = v
	}
	return out
}
