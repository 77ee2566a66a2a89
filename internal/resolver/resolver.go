// Package resolver is the HTTP client for the external video resolution
// service. Failures never reach room state; callers surface them as
// HTTP errors or ignore them (prefetch).
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// VideoResult is one search hit, in the resolution service's shape.
type VideoResult struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Duration     string `json:"duration"`
	IsLive       bool   `json:"isLive"`
	Thumbnail    string `json:"thumbnail"`
}

type searchResponse struct {
	Items []VideoResult `json:"items"`
}

// ResolveResult is a playable stream URL for a video id.
type ResolveResult struct {
	VideoID     string `json:"videoId"`
	URL         string `json:"url"`
	ExpiresAtMs *int64 `json:"expiresAtMs"`
	ResolvedAt  int64  `json:"resolvedAtMs"`
	VideoOnly   bool   `json:"videoOnly"`
	Quality     string `json:"quality"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Search queries the resolution service.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]VideoResult, error) {
	u := fmt.Sprintf("%s/search?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Resolve asks the service for a playable stream URL.
func (c *Client) Resolve(ctx context.Context, videoID string) (*ResolveResult, error) {
	u := fmt.Sprintf("%s/resolve/%s", c.baseURL, url.PathEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resolve service status %d", resp.StatusCode)
	}

	var out ResolveResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Prefetch warms the service's resolve cache for a link in the
// background. Best-effort: errors are logged at debug and dropped.
func (c *Client) Prefetch(link string) {
	videoID := ExtractVideoID(link)
	if videoID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := c.Resolve(ctx, videoID); err != nil {
			log.Debug().Err(err).Str("module", "resolver").Str("video", videoID).Msg("prefetch failed")
		}
	}()
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-char video id out of a watch URL, a
// short URL or a bare id.
func ExtractVideoID(link string) string {
	if videoIDPattern.MatchString(link) {
		return link
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if v := u.Query().Get("v"); videoIDPattern.MatchString(v) {
		return v
	}
	// youtu.be/<id> and /embed/<id> keep the id as the last path element
	path := u.Path
	for len(path) > 0 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if i := len(path) - 11; i > 0 && path[i-1] == '/' && videoIDPattern.MatchString(path[i:]) {
		return path[i:]
	}
	return ""
}

var (
	scrapeVideoID = regexp.MustCompile(`"videoId":"([A-Za-z0-9_-]{11})"`)
	scrapeTitle   = regexp.MustCompile(`"title":\{"runs":\[\{"text":"((?:[^"\\]|\\.)*)"`)
)

// LegacySearch scrapes the public results page when the resolution
// service is down. Titles and ids are paired positionally; the page
// layout makes this approximate, which is acceptable for a fallback.
func (c *Client) LegacySearch(ctx context.Context, query string, limit int) ([]VideoResult, error) {
	u := "https://www.youtube.com/results?search_query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("results page status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	ids := scrapeVideoID.FindAllSubmatch(body, -1)
	titles := scrapeTitle.FindAllSubmatch(body, -1)

	seen := make(map[string]bool)
	out := make([]VideoResult, 0, limit)
	for i, m := range ids {
		id := string(m[1])
		if seen[id] {
			continue
		}
		seen[id] = true

		title := ""
		if i < len(titles) {
			if unq, err := strconv.Unquote(`"` + string(titles[i][1]) + `"`); err == nil {
				title = unq
			}
		}
		out = append(out, VideoResult{
			ID:        id,
			Type:      "video",
			Title:     title,
			Thumbnail: "https://i.ytimg.com/vi/" + id + "/hqdefault.jpg",
		})
		if len(out) == limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no results scraped")
	}
	return out, nil
}
