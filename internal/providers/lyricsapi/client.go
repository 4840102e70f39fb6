package lyricsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"versecoach/internal/cache"
	"versecoach/internal/domain"
)

// Client talks to the practice backend: song/verse/lyrics reads (through the
// response cache), score submission and report materialization.
type Client struct {
	http   *resty.Client
	cache  *cache.Store
	logger *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, store *cache.Store, logger *zap.Logger) *Client {
	httpc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)

	return &Client{
		http:   httpc,
		cache:  store,
		logger: logger,
	}
}

func (c *Client) ListSongs(ctx context.Context) ([]domain.Song, error) {
	var songs []domain.Song
	if err := c.cachedGet(ctx, "/api/songs", &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

func (c *Client) GetSong(ctx context.Context, songID int) (domain.Song, error) {
	var song domain.Song
	err := c.cachedGet(ctx, fmt.Sprintf("/api/songs/%d", songID), &song)
	return song, err
}

func (c *Client) GetVerse(ctx context.Context, songID, verseOrder int) (domain.Verse, error) {
	var verse domain.Verse
	err := c.cachedGet(ctx, fmt.Sprintf("/api/songs/%d/verses/%d", songID, verseOrder), &verse)
	return verse, err
}

func (c *Client) GetLyrics(ctx context.Context, songID int) ([]domain.Verse, error) {
	var verses []domain.Verse
	if err := c.cachedGet(ctx, fmt.Sprintf("/api/songs/%d/lyrics", songID), &verses); err != nil {
		return nil, err
	}
	return verses, nil
}

// Score posts one clip as a single binary attachment and parses the score.
// Transport failures and non-2xx statuses classify as network errors; a
// malformed or out-of-range score is a contract violation of the scoring
// service and classifies as unknown.
func (c *Client) Score(ctx context.Context, clip domain.AudioClip, verse domain.VerseContext) (int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("audio", attachmentName(clip.MIMEType), clip.MIMEType, bytes.NewReader(clip.Data)).
		SetFormData(map[string]string{
			"lyrics_zh":     verse.LyricsZh,
			"lyrics_pinyin": verse.LyricsPinyin,
			"session":       verse.SessionID,
		}).
		Post("/api/score")
	if err != nil {
		return 0, domain.NewCaptureError(domain.ErrorCodeNetwork, err)
	}
	if resp.IsError() {
		return 0, domain.NewCaptureError(domain.ErrorCodeNetwork,
			fmt.Errorf("scoring service returned %s", resp.Status()))
	}

	var body struct {
		Score *int `json:"score"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Score == nil {
		return 0, domain.NewCaptureError(domain.ErrorCodeUnknown,
			fmt.Errorf("scoring service returned an unreadable body"))
	}
	if *body.Score < 0 || *body.Score > 100 {
		return 0, domain.NewCaptureError(domain.ErrorCodeUnknown,
			fmt.Errorf("scoring service returned out-of-range score %d", *body.Score))
	}

	c.logger.Debug("clip scored",
		zap.Int("score", *body.Score),
		zap.Int("verse", verse.VerseIndex),
		zap.Int("clip_bytes", len(clip.Data)))
	return *body.Score, nil
}

// MaterializeReport asks the backend to build the session report. The
// endpoint is idempotent per session id; repeated calls yield the same report.
func (c *Client) MaterializeReport(ctx context.Context, songID int, sessionID string) (domain.Report, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("session", sessionID).
		Post(fmt.Sprintf("/api/songs/%d/report", songID))
	if err != nil {
		return domain.Report{}, domain.NewCaptureError(domain.ErrorCodeNetwork, err)
	}
	if resp.IsError() {
		return domain.Report{}, domain.NewCaptureError(domain.ErrorCodeNetwork,
			fmt.Errorf("report service returned %s", resp.Status()))
	}

	var report domain.Report
	if err := json.Unmarshal(resp.Body(), &report); err != nil {
		return domain.Report{}, domain.NewCaptureError(domain.ErrorCodeUnknown, err)
	}
	return report, nil
}

// cachedGet reads path through the response cache. Only successful bodies
// are stored; failures pass through uncached.
func (c *Client) cachedGet(ctx context.Context, path string, out any) error {
	payload, err := c.cache.Get(path, func() ([]byte, error) {
		resp, err := c.http.R().SetContext(ctx).Get(path)
		if err != nil {
			return nil, domain.NewCaptureError(domain.ErrorCodeNetwork, err)
		}
		if resp.IsError() {
			return nil, domain.NewCaptureError(domain.ErrorCodeNetwork,
				fmt.Errorf("%s returned %s", path, resp.Status()))
		}
		return resp.Body(), nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return domain.NewCaptureError(domain.ErrorCodeUnknown, err)
	}
	return nil
}

func attachmentName(mimeType string) string {
	switch mimeType {
	case "audio/wav":
		return "recording.wav"
	case "audio/ogg":
		return "recording.ogg"
	default:
		return "recording.webm"
	}
}
