package lyricsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"versecoach/internal/cache"
	"versecoach/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, 2*time.Second, cache.New(time.Minute), zap.NewNop())
	return client, server
}

func testClip() domain.AudioClip {
	return domain.AudioClip{Data: []byte("RIFFfake"), MIMEType: "audio/wav"}
}

func testVerse() domain.VerseContext {
	return domain.VerseContext{
		SessionID:    "session-1",
		VerseIndex:   1,
		LyricsZh:     "月亮代表我的心",
		LyricsPinyin: "yuè liang dài biǎo wǒ de xīn",
	}
}

func TestScoreSuccess(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/score", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("audio")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "recording.wav", header.Filename)
		assert.Equal(t, "月亮代表我的心", r.FormValue("lyrics_zh"))
		assert.Equal(t, "session-1", r.FormValue("session"))

		fmt.Fprint(w, `{"score": 82}`)
	}))

	score, err := client.Score(context.Background(), testClip(), testVerse())
	require.NoError(t, err)
	assert.Equal(t, 82, score)
}

func TestScoreServerErrorIsNetworkError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := client.Score(context.Background(), testClip(), testVerse())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeNetwork, domain.CodeOf(err))
}

func TestScoreTransportFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(server.URL, time.Second, cache.New(time.Minute), zap.NewNop())

	_, err := client.Score(context.Background(), testClip(), testVerse())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeNetwork, domain.CodeOf(err))
}

func TestScoreMalformedBodyIsUnknown(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))

	_, err := client.Score(context.Background(), testClip(), testVerse())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeUnknown, domain.CodeOf(err))
}

func TestScoreOutOfRangeIsUnknown(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"score": 101}`, `{"score": -3}`, `{}`} {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, body)
		}))

		_, err := client.Score(context.Background(), testClip(), testVerse())
		require.Error(t, err, "body %s", body)
		assert.Equal(t, domain.ErrorCodeUnknown, domain.CodeOf(err), "body %s", body)
	}
}

func TestGetSongIsCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"id":1,"title_zh":"月亮代表我的心","num_verses":4}`)
	}))

	first, err := client.GetSong(context.Background(), 1)
	require.NoError(t, err)
	second, err := client.GetSong(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, first, second)
	assert.Equal(t, 4, first.NumVerses)
}

func TestGetSongFailureIsNotCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"id":1}`)
	}))

	_, err := client.GetSong(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeNetwork, domain.CodeOf(err))

	song, err := client.GetSong(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, song.ID)
	assert.Equal(t, int64(2), hits.Load())
}

func TestGetVerseAndLyricsUseDistinctKeys(t *testing.T) {
	t.Parallel()

	paths := map[string]int{}
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths[r.URL.Path]++
		switch r.URL.Path {
		case "/api/songs/1/verses/2":
			fmt.Fprint(w, `{"id":12,"song_id":1,"verse_order":2,"lyrics_zh":"你问我爱你有多深"}`)
		case "/api/songs/1/lyrics":
			fmt.Fprint(w, `[{"id":11,"verse_order":1},{"id":12,"verse_order":2}]`)
		default:
			http.NotFound(w, r)
		}
	}))

	verse, err := client.GetVerse(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "你问我爱你有多深", verse.LyricsZh)

	verses, err := client.GetLyrics(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, verses, 2)

	assert.Equal(t, 1, paths["/api/songs/1/verses/2"])
	assert.Equal(t, 1, paths["/api/songs/1/lyrics"])
}

func TestMaterializeReport(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/songs/1/report", r.URL.Path)
		require.Equal(t, "session-1", r.URL.Query().Get("session"))
		fmt.Fprint(w, `{"song_id":1,"session_id":"session-1","overall_score":72,"positives":["Good effort and persistence"],"improvements":["Review fundamental tone rules"],"suggested_songs":[{"id":2,"title_zh":"月亮代表我的心"}]}`)
	}))

	report, err := client.MaterializeReport(context.Background(), 1, "session-1")
	require.NoError(t, err)
	assert.Equal(t, 72, report.OverallScore)
	assert.Equal(t, "session-1", report.SessionID)
	assert.Len(t, report.SuggestedSongs, 1)
}

func TestMaterializeReportFailureIsNetworkError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))

	_, err := client.MaterializeReport(context.Background(), 1, "session-1")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeNetwork, domain.CodeOf(err))
}
