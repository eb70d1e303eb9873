package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/tw-conquers/internal/bot"
	"github.com/pfrederiksen/tw-conquers/internal/subscription"
)

// redirectTransport sends every request to the test server
type redirectTransport struct {
	target *url.URL
}

func (t redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = t.target.Scheme
	req.URL.Host = t.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

// fakeAPI mimics the Bot API endpoints the client uses
type fakeAPI struct {
	mu       sync.Mutex
	sent     []url.Values
	updates  [][]map[string]interface{}
	offsets  []string
	sendFail bool
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var response map[string]interface{}
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		response = map[string]interface{}{
			"ok": true,
			"result": map[string]interface{}{
				"id":         1,
				"is_bot":     true,
				"first_name": "Conquers",
				"username":   "conquer_bot",
			},
		}

	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.sent = append(f.sent, r.PostForm)
		if f.sendFail {
			response = map[string]interface{}{
				"ok":          false,
				"error_code":  400,
				"description": "Bad Request: chat not found",
			}
			break
		}
		chatID, _ := json.Number(r.PostForm.Get("chat_id")).Int64()
		response = map[string]interface{}{
			"ok": true,
			"result": map[string]interface{}{
				"message_id": len(f.sent),
				"date":       0,
				"chat":       map[string]interface{}{"id": chatID, "type": "group"},
				"text":       r.PostForm.Get("text"),
			},
		}

	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		f.offsets = append(f.offsets, r.PostForm.Get("offset"))
		batch := []map[string]interface{}{}
		if len(f.updates) > 0 {
			batch = f.updates[0]
			f.updates = f.updates[1:]
		} else {
			// Idle long poll
			f.mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			f.mu.Lock()
		}
		response = map[string]interface{}{"ok": true, "result": batch}

	default:
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (f *fakeAPI) sentMessages() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.sent...)
}

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	target, _ := url.Parse(server.URL)
	client, err := newClient("test-token", &http.Client{
		Transport: redirectTransport{target: target},
		Timeout:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("newClient() unexpected error: %v", err)
	}
	client.retryDelay = 10 * time.Millisecond
	return client
}

func message(updateID int, chatID int64, user, text string) map[string]interface{} {
	return map[string]interface{}{
		"update_id": updateID,
		"message": map[string]interface{}{
			"message_id": updateID,
			"date":       0,
			"from":       map[string]interface{}{"id": 7, "first_name": user, "username": user},
			"chat":       map[string]interface{}{"id": chatID, "type": "group"},
			"text":       text,
		},
	}
}

func TestNewClient_MissingToken(t *testing.T) {
	_, err := newClient("", http.DefaultClient)
	if err == nil {
		t.Fatal("expected error for empty token")
	}
	if !strings.Contains(err.Error(), "bot token is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewClient_Username(t *testing.T) {
	client := newTestClient(t, &fakeAPI{})
	if got := client.Username(); got != "conquer_bot" {
		t.Errorf("Username() = %q, want %q", got, "conquer_bot")
	}
}

func TestNotify_Success(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	err := client.Notify(context.Background(), -100123, "New events:\nbob has taken Rome from alice at unknown time!\n")
	if err != nil {
		t.Fatalf("Notify() unexpected error: %v", err)
	}

	sent := api.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if got := sent[0].Get("chat_id"); got != "-100123" {
		t.Errorf("chat_id = %q, want -100123", got)
	}
	if got := sent[0].Get("text"); !strings.HasPrefix(got, "New events:\n") {
		t.Errorf("unexpected text %q", got)
	}
}

func TestNotify_APIError(t *testing.T) {
	client := newTestClient(t, &fakeAPI{sendFail: true})

	err := client.Notify(context.Background(), 1, "hello")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API description in error, got: %v", err)
	}
}

func TestNotify_EmptyText(t *testing.T) {
	api := &fakeAPI{}
	client := newTestClient(t, api)

	if err := client.Notify(context.Background(), 1, ""); err == nil {
		t.Error("expected error for empty text")
	}
	if len(api.sentMessages()) != 0 {
		t.Error("empty message must not be sent")
	}
}

// recordingHandler answers "-test" and ignores everything else
type recordingHandler struct {
	mu   sync.Mutex
	seen []bot.Message
}

func (h *recordingHandler) Handle(ctx context.Context, msg bot.Message) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, msg)
	if msg.Text == "-test" {
		return "Hi there!", true
	}
	return "", false
}

func (h *recordingHandler) messages() []bot.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]bot.Message(nil), h.seen...)
}

func TestListen_DispatchesAndReplies(t *testing.T) {
	api := &fakeAPI{
		updates: [][]map[string]interface{}{
			{
				message(10, 55, "alice", "-test"),
				message(11, 55, "bob", "just chatting"),
			},
			{
				{
					"update_id": 12,
					"channel_post": map[string]interface{}{
						"message_id": 3,
						"date":       0,
						"chat":       map[string]interface{}{"id": -900, "type": "channel"},
						"text":       "-test",
					},
				},
			},
		},
	}
	client := newTestClient(t, api)
	handler := &recordingHandler{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Listen(ctx, handler) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(api.sentMessages()) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen() returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Listen() did not stop after cancel")
	}

	seen := handler.messages()
	if len(seen) != 3 {
		t.Fatalf("expected 3 handled messages, got %d", len(seen))
	}
	want := bot.Message{Channel: 55, Author: "alice", Text: "-test"}
	if seen[0] != want {
		t.Errorf("first message = %+v, want %+v", seen[0], want)
	}
	if seen[2].Channel != subscription.ChannelID(-900) || seen[2].Author != "" {
		t.Errorf("channel post = %+v", seen[2])
	}

	sent := api.sentMessages()
	if len(sent) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(sent))
	}
	if sent[0].Get("chat_id") != "55" || sent[0].Get("text") != "Hi there!" {
		t.Errorf("unexpected first reply %v", sent[0])
	}
	if sent[1].Get("chat_id") != "-900" {
		t.Errorf("unexpected second reply %v", sent[1])
	}

	api.mu.Lock()
	offsets := append([]string(nil), api.offsets...)
	api.mu.Unlock()
	// The first poll carries no offset
	if len(offsets) < 2 || offsets[0] != "" || offsets[1] != "12" {
		t.Errorf("unexpected offsets %v", offsets)
	}
}
