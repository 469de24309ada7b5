package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"world-vlog/domain/dto"
	"world-vlog/domain/model"
	"world-vlog/domain/repository"
	"world-vlog/infrastructure/logger"
	"world-vlog/infrastructure/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	maxSearchResults       = 50
	defaultDetailBatchSize = 50
	defaultTimeout         = 10 * time.Second
)

// Client runs travel video searches against the YouTube Data API v3
type Client struct {
	service   *youtube.Service
	batchSize int
	timeout   time.Duration
}

// Config represents YouTube API configuration
type Config struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURL  string `json:"redirect_url"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	APIKey       string `json:"api_key"`

	DetailBatchSize int           `json:"detail_batch_size"`
	Timeout         time.Duration `json:"timeout"`

	// Endpoint and HTTPClient point the client at a fake provider in tests.
	Endpoint   string       `json:"-"`
	HTTPClient *http.Client `json:"-"`
}

// NewYouTubeClient creates a new YouTube API client
func NewYouTubeClient(ctx context.Context, config *Config) (repository.IVideoSearch, error) {
	if config == nil {
		return nil, model.ErrMissingCredential
	}

	var opts []option.ClientOption
	switch {
	case config.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	case config.APIKey != "":
		// API key only mode (read-only), which is all search needs
		opts = append(opts, option.WithAPIKey(config.APIKey))
	case config.RefreshToken != "" && config.ClientID != "":
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
		}
		// the oauth2 transport refreshes the token on demand
		opts = append(opts, option.WithHTTPClient(oauth2Config.Client(ctx, token)))
	default:
		return nil, model.ErrMissingCredential
	}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	batchSize := config.DetailBatchSize
	if batchSize <= 0 || batchSize > defaultDetailBatchSize {
		batchSize = defaultDetailBatchSize
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		service:   service,
		batchSize: batchSize,
		timeout:   timeout,
	}, nil
}

// SearchVideos runs one query tier: search.list for candidates, then videos.list in chunks for
// view counts and durations. Candidates without detail metadata are dropped.
func (c *Client) SearchVideos(ctx context.Context, req *dto.VideoSearchRequest) ([]model.VideoCandidate, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 || maxResults > maxSearchResults {
		maxResults = maxSearchResults
	}

	call := c.service.Search.List([]string{"snippet"}).
		Q(req.Query).
		Type("video").
		VideoEmbeddable("true").
		Order("relevance").
		MaxResults(maxResults)

	if region := strings.ToUpper(strings.TrimSpace(req.RegionCode)); region != "" {
		call = call.RegionCode(region).RelevanceLanguage(LanguageForRegion(region))
	}

	searchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	response, err := call.Context(searchCtx).Do()
	cancel()
	if err != nil {
		return nil, classifyError("search videos", err)
	}

	seen := make(map[string]struct{}, len(response.Items))
	candidates := make([]model.VideoCandidate, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		if _, ok := seen[item.Id.VideoId]; ok {
			continue
		}
		seen[item.Id.VideoId] = struct{}{}
		candidates = append(candidates, convertSearchResult(item))
	}
	if len(candidates) == 0 {
		return []model.VideoCandidate{}, nil
	}

	details, err := c.fetchDetails(ctx, candidates)
	if err != nil {
		return nil, err
	}

	results := make([]model.VideoCandidate, 0, len(candidates))
	for _, cand := range candidates {
		video, ok := details[cand.ID]
		if !ok {
			continue
		}
		if video.Statistics != nil {
			cand.ViewCount = strconv.FormatUint(video.Statistics.ViewCount, 10)
		}
		if cand.ViewCount == "" {
			cand.ViewCount = "0"
		}
		if video.ContentDetails != nil {
			cand.DurationSeconds = utils.ParseISODuration(video.ContentDetails.Duration)
		}
		results = append(results, cand)
	}
	return results, nil
}

// fetchDetails looks up statistics and content details in provider-sized chunks.
// A quota failure aborts; any other chunk failure only loses that chunk.
func (c *Client) fetchDetails(ctx context.Context, candidates []model.VideoCandidate) (map[string]*youtube.Video, error) {
	details := make(map[string]*youtube.Video, len(candidates))
	for start := 0; start < len(candidates); start += c.batchSize {
		end := start + c.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		ids := make([]string, 0, end-start)
		for _, cand := range candidates[start:end] {
			ids = append(ids, cand.ID)
		}

		detailCtx, cancel := context.WithTimeout(ctx, c.timeout)
		response, err := c.service.Videos.List([]string{"statistics", "contentDetails"}).
			Id(strings.Join(ids, ",")).
			Context(detailCtx).
			Do()
		cancel()
		if err != nil {
			err = classifyError("get video details", err)
			if errors.Is(err, model.ErrQuotaExceeded) {
				return nil, err
			}
			logger.GetLogger().WithField("error", err).WithField("ids", len(ids)).Warn("Dropping video detail chunk")
			continue
		}
		for _, video := range response.Items {
			details[video.Id] = video
		}
	}
	return details, nil
}

func convertSearchResult(item *youtube.SearchResult) model.VideoCandidate {
	return model.VideoCandidate{
		ID:           item.Id.VideoId,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelTitle: item.Snippet.ChannelTitle,
		ChannelID:    item.Snippet.ChannelId,
		Thumbnail:    pickThumbnail(item.Snippet.Thumbnails),
		PublishedAt:  item.Snippet.PublishedAt,
	}
}

func pickThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, thumb := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}

// classifyError separates provider refusals (quota, rate limit, auth) from transient failures.
func classifyError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %s", op, model.ErrQuotaExceeded, apiErr.Message)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, model.ErrSearchFailed, err)
}
