package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabs_TextToSpeechRequest(t *testing.T) {
	var gotPath string
	var gotHeader http.Header
	var gotBody elevenLabsTTSRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-fake-mp3"))
	}))
	defer srv.Close()

	s := NewElevenLabsService("xi-secret", ElevenLabsOptions{BaseURL: srv.URL + "/"}, zerolog.Nop())
	out, err := s.TextToSpeech(context.Background(), "L0Dsvb3SLTyegXwtm47J", "Hi Anabelle.")
	require.NoError(t, err)

	assert.Equal(t, []byte("ID3-fake-mp3"), out)
	assert.Equal(t, "/v1/text-to-speech/L0Dsvb3SLTyegXwtm47J/stream", gotPath)
	assert.Equal(t, "xi-secret", gotHeader.Get("xi-api-key"))
	assert.Equal(t, "audio/mpeg", gotHeader.Get("Accept"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))

	assert.Equal(t, "Hi Anabelle.", gotBody.Text)
	assert.Equal(t, ElevenLabsDefaultModel, gotBody.ModelID)
	assert.Equal(t, 0.5, gotBody.VoiceSettings.Stability)
	assert.Equal(t, 0.75, gotBody.VoiceSettings.SimilarityBoost)
}

func TestElevenLabs_SoundEffectRequest(t *testing.T) {
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	s := NewElevenLabsService("k", ElevenLabsOptions{BaseURL: srv.URL, ModelID: "other"}, zerolog.Nop())
	_, err := s.SoundEffect(context.Background(), "door creaks open")
	require.NoError(t, err)

	assert.Equal(t, "/v1/sound-generation", gotPath)
	assert.Equal(t, "door creaks open", gotBody["text"])
	assert.Equal(t, 3.0, gotBody["duration_seconds"])
	assert.Equal(t, 0.5, gotBody["prompt_influence"])
}

func TestElevenLabs_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewElevenLabsService("k", ElevenLabsOptions{BaseURL: srv.URL}, zerolog.Nop())

	_, err := s.TextToSpeech(context.Background(), "voice", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = s.SoundEffect(context.Background(), "boom")
	require.Error(t, err)
}

func TestElevenLabs_EmptyBodyAndVoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	s := NewElevenLabsService("k", ElevenLabsOptions{BaseURL: srv.URL}, zerolog.Nop())

	_, err := s.TextToSpeech(context.Background(), "voice", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty audio")

	_, err = s.TextToSpeech(context.Background(), "", "hello")
	require.Error(t, err)
}

func TestOpenAI_GenerateRequest(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
		Messages  []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Speaker 1: Hi\nSpeaker 2: Hello"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)
	}))
	defer srv.Close()

	s := NewOpenAIService("sk-test", srv.URL+"/v1", "", zerolog.Nop())
	text, err := s.Generate(context.Background(), "write a script", 4096)
	require.NoError(t, err)

	assert.Equal(t, "Speaker 1: Hi\nSpeaker 2: Hello", text)
	assert.Equal(t, OpenAIDefaultModel, got.Model)
	assert.Equal(t, 4096, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "write a script", got.Messages[0].Content)
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "x", "choices": []}`)
	}))
	defer srv.Close()

	s := NewOpenAIService("k", srv.URL+"/v1", "gpt-4o-mini", zerolog.Nop())
	_, err := s.Generate(context.Background(), "p", 10)
	require.Error(t, err)
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error": {"message": "rate limited", "type": "rate_limit"}}`)
	}))
	defer srv.Close()

	s := NewOpenAIService("k", srv.URL+"/v1", "", zerolog.Nop())
	_, err := s.Generate(context.Background(), "p", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai request failed")
}

// localArticles returns a fetcher allowed to reach the loopback test server.
func localArticles(srv *httptest.Server) *ArticleService {
	return NewArticleService(ArticleOptions{Client: srv.Client(), AllowPrivateHosts: true}, zerolog.Nop())
}

func TestArticle_ExtractsContainerParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><head><title>Bees</title></head><body>
			<nav><p>Home</p></nav>
			<article><p>Bees dance to share directions.</p><p>  Hives vote on new homes. </p></article>
		</body></html>`)
	}))
	defer srv.Close()

	text, err := localArticles(srv).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bees dance to share directions.\n\nHives vote on new homes.", text)
}

func TestArticle_FallbackSkipsShortParagraphs(t *testing.T) {
	long := strings.Repeat("word ", 20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><p>short</p><p>`+long+`</p></body></html>`)
	}))
	defer srv.Close()

	text, err := localArticles(srv).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(long), text)
}

func TestArticle_TruncatesLongText(t *testing.T) {
	body := strings.Repeat("é", MaxArticleLength)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html><body><main><p>`+body+`</p></main></body></html>`)
	}))
	defer srv.Close()

	text, err := localArticles(srv).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(text), MaxArticleLength)
	assert.Equal(t, MaxArticleLength, len(text), "two-byte runes divide the limit evenly")
}

func TestArticle_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, `<html><body><div>no paragraphs</div></body></html>`)
	}))
	defer srv.Close()

	svc := localArticles(srv)

	_, err := svc.Fetch(context.Background(), srv.URL+"/missing")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Contains(t, fetchErr.Error(), "status code 404")

	_, err = svc.Fetch(context.Background(), srv.URL+"/empty")
	require.True(t, errors.As(err, &fetchErr))

	_, err = svc.Fetch(context.Background(), "://bad")
	require.True(t, errors.As(err, &fetchErr))
}

func TestArticle_RejectsNonPublicTargets(t *testing.T) {
	svc := NewArticleService(ArticleOptions{}, zerolog.Nop())

	for _, target := range []string{
		"file:///etc/passwd",
		"gopher://example.com/",
		"http:///no-host",
		"http://127.0.0.1:8080/admin",
		"http://[::1]/",
		"http://10.0.0.5/",
		"http://192.168.1.1/",
		"http://169.254.169.254/latest/meta-data/",
		"http://0.0.0.0/",
	} {
		t.Run(target, func(t *testing.T) {
			_, err := svc.Fetch(context.Background(), target)
			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.ErrorIs(t, err, ErrURLNotAllowed)
		})
	}
}

func TestArticle_CustomClientStillChecksHost(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, `<html><body><article><p>secret</p></article></body></html>`)
	}))
	defer srv.Close()

	svc := NewArticleService(ArticleOptions{Client: srv.Client()}, zerolog.Nop())
	_, err := svc.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrURLNotAllowed)
	assert.Zero(t, hits, "no request reaches a loopback host")
}

func TestPublicOnlyControl(t *testing.T) {
	assert.ErrorIs(t, publicOnlyControl("tcp4", "127.0.0.1:80", nil), ErrURLNotAllowed)
	assert.ErrorIs(t, publicOnlyControl("tcp4", "169.254.169.254:80", nil), ErrURLNotAllowed)
	assert.ErrorIs(t, publicOnlyControl("tcp6", "[fe80::1]:443", nil), ErrURLNotAllowed)
	assert.ErrorIs(t, publicOnlyControl("tcp4", "172.16.0.1:443", nil), ErrURLNotAllowed)
	assert.NoError(t, publicOnlyControl("tcp4", "93.184.216.34:443", nil))
	assert.NoError(t, publicOnlyControl("tcp6", "[2606:2800:220:1::1]:443", nil))
}

func TestGemini_GenerateRequest(t *testing.T) {
	var gotPath, gotKey string
	var gotBody struct {
		Contents []struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
		GenerationConfig struct {
			MaxOutputTokens int `json:"maxOutputTokens"`
		} `json:"generationConfig"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Speaker 1: Hi"}]}}]}`)
	}))
	defer srv.Close()

	svc, err := NewGeminiService(context.Background(), "g-key", srv.URL, "", zerolog.Nop())
	require.NoError(t, err)

	text, err := svc.Generate(context.Background(), "write a podcast", 1500)
	require.NoError(t, err)
	assert.Equal(t, "Speaker 1: Hi", text)

	assert.True(t, strings.HasSuffix(gotPath, "/models/"+GeminiDefaultModel+":generateContent"), gotPath)
	assert.Equal(t, "g-key", gotKey)
	assert.Equal(t, 1500, gotBody.GenerationConfig.MaxOutputTokens)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "write a podcast", gotBody.Contents[0].Parts[0].Text)
}

func TestGemini_Errors(t *testing.T) {
	t.Run("no candidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"candidates":[]}`)
		}))
		defer srv.Close()

		svc, err := NewGeminiService(context.Background(), "g-key", srv.URL, "gemini-test", zerolog.Nop())
		require.NoError(t, err)

		_, err = svc.Generate(context.Background(), "prompt", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no text")
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`)
		}))
		defer srv.Close()

		svc, err := NewGeminiService(context.Background(), "g-key", srv.URL, "gemini-test", zerolog.Nop())
		require.NoError(t, err)

		_, err = svc.Generate(context.Background(), "prompt", 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gemini request failed")
	})
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "ab", truncateUTF8("abc", 2))
	assert.Equal(t, "a", truncateUTF8("aé", 2))
	assert.Equal(t, "abc", truncateUTF8("abc", 5))
}

func TestFFmpegService_EmptyInput(t *testing.T) {
	_, err := NewFFmpegService("", zerolog.Nop()).Decode(context.Background(), nil)
	require.Error(t, err)
}
