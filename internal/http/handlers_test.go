package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ProjectSGH/pashumitra/internal/auth"
	"github.com/ProjectSGH/pashumitra/internal/chat"
	"github.com/ProjectSGH/pashumitra/internal/repository"
	"github.com/ProjectSGH/pashumitra/internal/service"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUsers(store)
	tx := repository.NewMemoryTx(store)
	notificationsSvc := service.NewNotificationService(repository.NewMemoryNotifications(store))
	return NewServer(Deps{
		Users:            service.NewUserService(users),
		Medicines:        service.NewMedicineService(store),
		Orders:           service.NewOrderService(store, repository.NewMemoryOrders(store), users, notificationsSvc, tx),
		Notifications:    notificationsSvc,
		Campaigns:        service.NewCampaignService(repository.NewMemoryCampaigns(store), notificationsSvc, tx),
		Hub:              chat.NewHub(repository.NewMemoryMessages(store)),
		Auth:             auth.NewManager("test-secret", time.Hour),
		ChatHistoryLimit: 100,
	})
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func registerUser(t *testing.T, s *Server, body map[string]any) (id float64, token string) {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %v: %v %s", body, w.Code, w.Body.String())
	}
	resp := decode(t, w)
	user := resp["user"].(map[string]any)
	return user["id"].(float64), resp["token"].(string)
}

func registerStore(t *testing.T, s *Server, name string) (float64, string) {
	return registerUser(t, s, map[string]any{"role": "store", "name": name, "store_name": name + " Medicals"})
}

func registerFarmer(t *testing.T, s *Server) (float64, string) {
	return registerUser(t, s, map[string]any{"role": "farmer", "name": "Ravi", "contact": "98000", "location": "Anand"})
}

func TestAuthRequired(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/api/v1/orders", "", map[string]any{})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", w.Code)
	}
}

func TestTokenEndpoint(t *testing.T) {
	s := setupServer(t)
	id, _ := registerFarmer(t, s)
	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/token", "", map[string]any{"user_id": id})
	if w.Code != http.StatusOK {
		t.Fatalf("token: %v %s", w.Code, w.Body.String())
	}
	if decode(t, w)["token"] == "" {
		t.Fatalf("no token issued")
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/token", "", map[string]any{"user_id": 999})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %v", w.Code)
	}
}

func TestMedicineFlow(t *testing.T) {
	s := setupServer(t)
	_, storeToken := registerStore(t, s, "A")
	_, farmerToken := registerFarmer(t, s)

	// only stores may create catalog entries
	w := doJSON(t, s, http.MethodPost, "/api/v1/medicines", farmerToken, map[string]any{
		"name": "Oxytetracycline", "quantity": 5, "unit_price": 10,
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("farmer create expected 403, got %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/medicines", storeToken, map[string]any{
		"name": "Oxytetracycline", "category": "antibiotic", "quantity": 5, "unit_price": 10,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %v %s", w.Code, w.Body.String())
	}

	// public listing
	w = doJSON(t, s, http.MethodGet, "/api/v1/medicines?q=oxy", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/medicines/1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPut, "/api/v1/medicines/1", storeToken, map[string]any{
		"name": "Oxytetracycline LA", "quantity": 8, "unit_price": 12,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update: %v %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodDelete, "/api/v1/medicines/1", storeToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: %v", w.Code)
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := setupServer(t)
	_, storeToken := registerStore(t, s, "A")
	_, farmerToken := registerFarmer(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/v1/medicines", storeToken, map[string]any{
		"name": "Meloxicam", "quantity": 10, "unit_price": 5,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create medicine: %v", w.Code)
	}

	// quantity beyond stock is refused up front
	w = doJSON(t, s, http.MethodPost, "/api/v1/orders", farmerToken, map[string]any{
		"kind": "regular", "medicine_id": 1, "quantity": 20,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("overdraw expected 400, got %v %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/orders", farmerToken, map[string]any{
		"kind": "regular", "medicine_id": 1, "quantity": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: %v %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/orders/1/approve", storeToken, map[string]any{"notes": "ready"})
	if w.Code != http.StatusOK {
		t.Fatalf("approve: %v %s", w.Code, w.Body.String())
	}
	if decode(t, w)["status"] != "approved" {
		t.Fatalf("status not approved: %s", w.Body.String())
	}

	// stock was decremented
	w = doJSON(t, s, http.MethodGet, "/api/v1/medicines/1", "", nil)
	if q := decode(t, w)["quantity"].(float64); q != 7 {
		t.Fatalf("stock expected 7, got %v", q)
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/orders/1/complete", storeToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: %v", w.Code)
	}
	resp := decode(t, w)
	if resp["status"] != "completed" || resp["completion_date"] == nil {
		t.Fatalf("complete state: %s", w.Body.String())
	}

	// the farmer was notified along the way
	w = doJSON(t, s, http.MethodGet, "/api/v1/notifications?unread=true", farmerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("notifications: %v", w.Code)
	}
	var notifs []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &notifs); err != nil {
		t.Fatalf("decode notifications: %v", err)
	}
	if len(notifs) != 2 {
		t.Fatalf("expected 2 farmer notifications, got %d", len(notifs))
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/notifications/read-all", farmerToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("read-all: %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/notifications?unread=true", farmerToken, nil)
	if body := w.Body.String(); body != "[]" {
		t.Fatalf("unread after read-all: %s", body)
	}
}

func TestTransferAuthorization(t *testing.T) {
	s := setupServer(t)
	_, originToken := registerStore(t, s, "A")
	targetID, targetToken := registerStore(t, s, "B")
	_, intruderToken := registerStore(t, s, "C")
	_, farmerToken := registerFarmer(t, s)

	doJSON(t, s, http.MethodPost, "/api/v1/medicines", originToken, map[string]any{
		"name": "Meloxicam", "quantity": 10, "unit_price": 5,
	})
	doJSON(t, s, http.MethodPost, "/api/v1/orders", farmerToken, map[string]any{
		"kind": "regular", "medicine_id": 1, "quantity": 2,
	})

	w := doJSON(t, s, http.MethodPost, "/api/v1/orders/1/transfer", originToken, map[string]any{
		"target_store_id": targetID, "reason": "closer to the farmer",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("transfer: %v %s", w.Code, w.Body.String())
	}

	// store C is not the transfer target
	w = doJSON(t, s, http.MethodPost, "/api/v1/orders/1/accept-transfer", intruderToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("intruder accept expected 403, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/orders/1", originToken, nil)
	if decode(t, w)["status"] != "transferred" {
		t.Fatalf("order changed by unauthorized accept: %s", w.Body.String())
	}

	// the incoming queue of store B shows the transfer
	w = doJSON(t, s, http.MethodGet, "/api/v1/orders?incoming=true", targetToken, nil)
	var incoming []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &incoming); err != nil || len(incoming) != 1 {
		t.Fatalf("incoming queue: %v %s", err, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/orders/1/accept-transfer", targetToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("target accept: %v %s", w.Code, w.Body.String())
	}
	if decode(t, w)["status"] != "approved" {
		t.Fatalf("accept should approve: %s", w.Body.String())
	}

	// the accepting store completes the order it took over
	w = doJSON(t, s, http.MethodPost, "/api/v1/orders/1/complete", targetToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete by accepting store: %v %s", w.Code, w.Body.String())
	}
	if decode(t, w)["status"] != "completed" {
		t.Fatalf("complete state: %s", w.Body.String())
	}
}

func TestRejectTransferOverHTTP(t *testing.T) {
	s := setupServer(t)
	_, originToken := registerStore(t, s, "A")
	targetID, targetToken := registerStore(t, s, "B")
	_, intruderToken := registerStore(t, s, "C")
	_, farmerToken := registerFarmer(t, s)

	doJSON(t, s, http.MethodPost, "/api/v1/medicines", originToken, map[string]any{
		"name": "Meloxicam", "quantity": 10, "unit_price": 5,
	})
	doJSON(t, s, http.MethodPost, "/api/v1/orders", farmerToken, map[string]any{
		"kind": "regular", "medicine_id": 1, "quantity": 2,
	})
	doJSON(t, s, http.MethodPost, "/api/v1/orders/1/transfer", originToken, map[string]any{
		"target_store_id": targetID,
	})

	// only the target may send the order back
	w := doJSON(t, s, http.MethodPost, "/api/v1/orders/1/reject-transfer", intruderToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("intruder reject expected 403, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/orders/1", originToken, nil)
	if decode(t, w)["status"] != "transferred" {
		t.Fatalf("order changed by unauthorized reject: %s", w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/orders/1/reject-transfer", targetToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reject transfer: %v %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["status"] != "pending" {
		t.Fatalf("expected pending after rejected transfer: %s", w.Body.String())
	}
	if _, present := resp["transferred_to"]; present {
		t.Fatalf("transfer descriptor not cleared: %s", w.Body.String())
	}
}

func TestCampaignFlow(t *testing.T) {
	s := setupServer(t)
	_, storeToken := registerStore(t, s, "A")
	_, farmerToken := registerFarmer(t, s)

	start := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	end := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	w := doJSON(t, s, http.MethodPost, "/api/v1/campaigns", storeToken, map[string]any{
		"title": "Deworming drive", "capacity": 1, "start_date": start, "end_date": end,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create campaign: %v %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/campaigns/1/register", farmerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("register: %v %s", w.Code, w.Body.String())
	}
	if decode(t, w)["registered"].(float64) != 1 {
		t.Fatalf("registered count: %s", w.Body.String())
	}

	// duplicate registration
	w = doJSON(t, s, http.MethodPost, "/api/v1/campaigns/1/register", farmerToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate expected 400, got %v", w.Code)
	}

	// capacity of one is exhausted for the next farmer
	_, otherFarmer := registerUser(t, s, map[string]any{"role": "farmer", "name": "Meena"})
	w = doJSON(t, s, http.MethodPost, "/api/v1/campaigns/1/register", otherFarmer, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("full campaign expected 400, got %v", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/campaigns?status=active", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list campaigns: %v", w.Code)
	}
}

func TestChatSocket_PeerValidation(t *testing.T) {
	s := setupServer(t)
	_, farmerToken := registerFarmer(t, s)
	// unknown peer is refused before the upgrade
	w := doJSON(t, s, http.MethodGet, "/api/v1/chat/ws?peer=999&token="+farmerToken, "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown peer expected 404, got %v %s", w.Code, w.Body.String())
	}

	// chatting with oneself is refused
	w = doJSON(t, s, http.MethodGet, "/api/v1/chat/ws?peer=1&token="+farmerToken, "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self peer expected 400, got %v", w.Code)
	}

	// missing token is refused
	w = doJSON(t, s, http.MethodGet, "/api/v1/chat/ws?peer=2", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token expected 401, got %v", w.Code)
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	s := setupServer(t)
	_, storeToken := registerStore(t, s, "A")

	w := doJSON(t, s, http.MethodPost, "/api/v1/medicines", storeToken, map[string]any{"name": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/medicines/abc", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/v1/medicines/999", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
}
