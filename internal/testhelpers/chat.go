package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// ChatReply is one scripted answer of a FakeChatServer. A non-2xx Status
// sends an error body instead of a completion.
type ChatReply struct {
	Status  int
	Content string
}

// FakeChatServer mimics an Azure OpenAI chat completions deployment.
type FakeChatServer struct {
	*httptest.Server
	calls   atomic.Int32
	replies []ChatReply
}

// NewFakeChatServer answers requests with replies in order, repeating the
// last one once they run out.
func NewFakeChatServer(t *testing.T, replies ...ChatReply) *FakeChatServer {
	t.Helper()
	f := &FakeChatServer{replies: replies}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

// Calls reports how many requests reached the server.
func (f *FakeChatServer) Calls() int {
	return int(f.calls.Load())
}

func (f *FakeChatServer) handle(w http.ResponseWriter, r *http.Request) {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.replies) {
		n = len(f.replies) - 1
	}
	reply := f.replies[n]

	w.Header().Set("Content-Type", "application/json")
	if reply.Status != 0 && reply.Status != http.StatusOK {
		w.WriteHeader(reply.Status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": "scripted", "message": http.StatusText(reply.Status)},
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-deployment",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]interface{}{"role": "assistant", "content": reply.Content},
		}},
	})
}
