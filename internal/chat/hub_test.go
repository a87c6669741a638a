package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ProjectSGH/pashumitra/internal/domain"
	"github.com/ProjectSGH/pashumitra/internal/repository"
)

func TestRoomID_Symmetric(t *testing.T) {
	if RoomID(7, 3) != RoomID(3, 7) {
		t.Fatalf("room id must not depend on argument order")
	}
	if RoomID(3, 7) != "3:7" {
		t.Fatalf("unexpected room id: %s", RoomID(3, 7))
	}
}

func TestHub_PersistsThenBroadcasts(t *testing.T) {
	store := repository.NewMemoryStore()
	messages := repository.NewMemoryMessages(store)
	hub := NewHub(messages)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(context.Background(), conn, 1, 2)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"body": "namaste"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// the sender is a room member, so the broadcast echoes back
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.ChatMessage
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if got.Body != "namaste" || got.RoomID != "1:2" || got.SenderID != 1 {
		t.Fatalf("broadcast message: %+v", got)
	}
	if got.ID == "" {
		t.Fatalf("message id not assigned")
	}

	// persisted before broadcast
	history, err := hub.History(context.Background(), 2, 1, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Body != "namaste" {
		t.Fatalf("history: %+v", history)
	}
}

func TestHub_EmptyBodyIgnored(t *testing.T) {
	store := repository.NewMemoryStore()
	messages := repository.NewMemoryMessages(store)
	hub := NewHub(messages)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(context.Background(), conn, 1, 2)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"body": ""}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"body": "second"}); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got domain.ChatMessage
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Body != "second" {
		t.Fatalf("empty message should have been dropped, got %q", got.Body)
	}

	history, _ := hub.History(context.Background(), 1, 2, 10)
	if len(history) != 1 {
		t.Fatalf("expected 1 stored message, got %d", len(history))
	}
}
