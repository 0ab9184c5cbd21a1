package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitcoach/internal/ai"
	"github.com/myrjola/fitcoach/internal/testhelpers"
)

func newUpstream(t *testing.T, handler http.HandlerFunc) ai.Config {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ai.Config{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "", HTTPClient: nil}
}

func writeQuotaError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = io.WriteString(w, `{"error":{"message":"You exceeded your current quota","type":"insufficient_quota",`+
		`"param":null,"code":"insufficient_quota"}}`)
}

func TestChatClient_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	cfg := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":0,"model":"grok-beta",`+
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  {\"ok\":true}\n"}}],`+
			`"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	})

	client := ai.NewChatClient(cfg, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	content, err := client.Complete(t.Context(), "system", "user prompt")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != `{"ok":true}` {
		t.Errorf("content = %q", content)
	}
	if got.Model != "grok-beta" {
		t.Errorf("model = %q, want grok-beta", got.Model)
	}
	if got.Temperature != 0.7 || got.MaxTokens != 4000 {
		t.Errorf("temperature, max_tokens = %v, %v", got.Temperature, got.MaxTokens)
	}
	roles := make([]string, 0, len(got.Messages))
	for _, m := range got.Messages {
		roles = append(roles, m.Role)
	}
	if diff := cmp.Diff([]string{"system", "user"}, roles); diff != "" {
		t.Errorf("roles mismatch (-want +got):\n%s", diff)
	}
}

func TestChatClient_Complete_errors(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		wantKind  ai.ErrorKind
		wantQuota bool
	}{
		{
			name:      "quota",
			handler:   func(w http.ResponseWriter, _ *http.Request) { writeQuotaError(w) },
			wantKind:  ai.KindQuotaExceeded,
			wantQuota: true,
		},
		{
			name: "rate limit",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = io.WriteString(w, `{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`)
			},
			wantKind:  ai.KindRateLimit,
			wantQuota: false,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error","code":null}}`)
			},
			wantKind:  ai.KindServer,
			wantQuota: false,
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`)
			},
			wantKind:  ai.KindAuthentication,
			wantQuota: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			cfg := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.handler(w, r)
			})
			client := ai.NewChatClient(cfg, testhelpers.NewLogger(testhelpers.NewWriter(t)))
			_, err := client.Complete(t.Context(), "system", "user")
			if err == nil {
				t.Fatal("Complete() error = nil")
			}
			if kind := ai.KindOf(err); kind != tt.wantKind {
				t.Errorf("KindOf() = %q, want %q", kind, tt.wantKind)
			}
			if quota := ai.IsQuotaExceeded(err); quota != tt.wantQuota {
				t.Errorf("IsQuotaExceeded() = %v, want %v", quota, tt.wantQuota)
			}
			if calls != 1 {
				t.Errorf("upstream called %d times, want exactly once", calls)
			}
		})
	}
}

func TestChatClient_Complete_canceled(t *testing.T) {
	cfg := newUpstream(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	client := ai.NewChatClient(cfg, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	_, err := client.Complete(ctx, "system", "user")
	if kind := ai.KindOf(err); kind != ai.KindTimeout {
		t.Errorf("KindOf() = %q, want %q", kind, ai.KindTimeout)
	}
}

func TestImageClient_Generate(t *testing.T) {
	var got struct {
		Model   string `json:"model"`
		Prompt  string `json:"prompt"`
		N       int    `json:"n"`
		Size    string `json:"size"`
		Quality string `json:"quality"`
	}
	cfg := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path = %q, want /images/generations", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created":0,"data":[{"url":"https://images.example.com/squat.png"}]}`)
	})

	client := ai.NewImageClient(cfg, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	imageURL, err := client.Generate(t.Context(), "squat")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if imageURL != "https://images.example.com/squat.png" {
		t.Errorf("url = %q", imageURL)
	}
	want := struct {
		Model   string `json:"model"`
		Prompt  string `json:"prompt"`
		N       int    `json:"n"`
		Size    string `json:"size"`
		Quality string `json:"quality"`
	}{Model: "dall-e-3", Prompt: "squat", N: 1, Size: "1024x1024", Quality: "standard"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
}

func TestImageClient_Generate_emptyData(t *testing.T) {
	cfg := newUpstream(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created":0,"data":[]}`)
	})
	client := ai.NewImageClient(cfg, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if _, err := client.Generate(t.Context(), "squat"); err == nil {
		t.Error("Generate() error = nil, want error for empty data")
	}
}
