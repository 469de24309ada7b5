package dto

import "world-vlog/domain/model"

// Res is the generic error envelope used by middleware.
type Res struct {
	ResponseCode    string      `json:"responseCode"`
	ResponseMessage string      `json:"responseMessage"`
	Data            interface{} `json:"data,omitempty"`
}

// VideoQueryRequest is the inbound query issued by the map UI.
type VideoQueryRequest struct {
	Place         string     `json:"q" form:"q"`
	Mode          model.Mode `json:"mode" form:"mode"`
	RegionCode    string     `json:"regionCode" form:"regionCode"`
	LocalKeywords []string   `json:"localKeywords"`
	MaxResults    int        `json:"maxResults" form:"maxResults"`
}

// VideoQueryResponse carries results plus the tier that produced them.
type VideoQueryResponse struct {
	Videos []model.VideoResult `json:"videos"`
	Source model.Provenance    `json:"source"`
}

// VideoSearchRequest is one tier query sent to the search provider.
type VideoSearchRequest struct {
	Query      string
	RegionCode string
	MaxResults int64
}

// RateVideoRequest is the body of POST /api/rate.
type RateVideoRequest struct {
	VideoID string `json:"videoId"`
	IsGood  *bool  `json:"isGood"`
}

// RandomVideoResponse is returned by GET /api/random.
type RandomVideoResponse struct {
	Videos []model.VideoResult `json:"videos"`
}

// CacheStats summarises the in-process cache for the admin endpoint.
type CacheStats struct {
	Entries   int   `json:"entries"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	PoolSize  int   `json:"poolSize"`
}
