package judge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"modscout/internal/config"
	"modscout/internal/services"
)

func testBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.Judge{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	}, WithHTTPClient(server.Client()))
}

func TestCompleteJSONReturnsMessageContent(t *testing.T) {
	client := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["model"] != "test-model" {
			t.Errorf("model = %v", req["model"])
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"choices":[{"message":{"content":"{\"match\":true}"}}]}`)); err != nil {
			t.Fatalf("write response: %v", err)
		}
	})

	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if content != `{"match":true}` {
		t.Errorf("content = %q", content)
	}
}

func TestCompleteJSONToleratesDeltaAndToolCallShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "delta content",
			body: `{"choices":[{"delta":{"content":"{\"match\":false}"}}]}`,
			want: `{"match":false}`,
		},
		{
			name: "legacy text",
			body: `{"choices":[{"text":"{\"confidence\":0.5}"}]}`,
			want: `{"confidence":0.5}`,
		},
		{
			name: "tool call arguments",
			body: `{"choices":[{"message":{"tool_calls":[{"type":"function","function":{"name":"verdict","arguments":"{\"match\":true}"}}]}}]}`,
			want: `{"match":true}`,
		},
		{
			name: "function call arguments",
			body: `{"choices":[{"message":{"function_call":{"name":"verdict","arguments":"{\"match\":true,\"confidence\":1}"}}}]}`,
			want: `{"match":true,"confidence":1}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte(tc.body)); err != nil {
					t.Fatalf("write response: %v", err)
				}
			})
			content, err := client.CompleteJSON(context.Background(), "system", "user")
			if err != nil {
				t.Fatalf("CompleteJSON: %v", err)
			}
			if content != tc.want {
				t.Errorf("content = %q, want %q", content, tc.want)
			}
		})
	}
}

func TestCompleteJSONReportsAPIError(t *testing.T) {
	client := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"error":{"message":"model overloaded"}}`)); err != nil {
			t.Fatalf("write response: %v", err)
		}
	})
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("err = %v, want api error with message", err)
	}
}

func TestCompleteJSONReportsHTTPStatus(t *testing.T) {
	client := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if err == nil || !strings.Contains(err.Error(), "http 429") {
		t.Errorf("err = %v, want http 429 error", err)
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Errorf("err = %v, want transient marker", err)
	}
}

func TestCompleteJSONServerErrorIsTransient(t *testing.T) {
	client := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend exploded", http.StatusBadGateway)
	})
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if !errors.Is(err, services.ErrTransient) {
		t.Errorf("err = %v, want transient marker", err)
	}
}

func TestCompleteJSONTimeoutIsTagged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(server.Close)
	client := NewClient(config.Judge{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	}, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))

	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if !errors.Is(err, services.ErrTimeout) {
		t.Errorf("err = %v, want timeout marker", err)
	}
}

func TestCompleteJSONRequiresAPIKey(t *testing.T) {
	client := NewClient(config.Judge{BaseURL: "http://localhost:1", Model: "m"})
	if _, err := client.CompleteJSON(context.Background(), "system", "user"); err == nil {
		t.Error("expected api key error")
	}
}

func TestCompleteJSONEmptyChoices(t *testing.T) {
	client := testBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"choices":[]}`)); err != nil {
			t.Fatalf("write response: %v", err)
		}
	})
	_, err := client.CompleteJSON(context.Background(), "system", "user")
	if err == nil || !strings.Contains(err.Error(), "empty choices") {
		t.Errorf("err = %v, want empty choices error", err)
	}
}
