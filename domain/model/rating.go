package model

import "time"

// RatingRecord holds the community counters for one video.
type RatingRecord struct {
	VideoID  string `json:"videoId" bson:"_id"`
	Likes    int64  `json:"likes" bson:"likes"`
	Dislikes int64  `json:"dislikes" bson:"dislikes"`
}

// RatingSummary is the rating overlay attached to a VideoResult.
type RatingSummary struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
	Score    int64 `json:"score"`
}

// RatingEvent is emitted after a rating has been recorded.
type RatingEvent struct {
	VideoID    string    `json:"video_id"`
	IsGood     bool      `json:"is_good"`
	RecordedAt time.Time `json:"recorded_at"`
}
