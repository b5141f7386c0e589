package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"admissions/internal/config"
	"admissions/internal/domain/application"
	"admissions/internal/domain/payment"
	middlewarex "admissions/internal/http/middleware"
	"admissions/internal/provider"
	appsvc "admissions/internal/services/application"
	"admissions/internal/services/audit"
	"admissions/internal/services/auth"
	bookingsvc "admissions/internal/services/booking"
	paymentsvc "admissions/internal/services/payment"
	"admissions/internal/store/memory"
)

const gatewaySecret = "key_secret"

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, p provider.OrderParams) (*payment.Order, error) {
	return &payment.Order{ID: "order_T1", Entity: "order", Amount: p.AmountMinor, Currency: p.Currency, Receipt: p.Receipt, Status: "created"}, nil
}

func (stubGateway) KeyID() string { return "rzp_test_key" }

type notifications struct {
	mu sync.Mutex
	n  int
}

func (c *notifications) PaymentCompleted(context.Context, *application.Application) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *notifications) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, error) { return false, nil }

type testServer struct {
	h      http.Handler
	auth   *auth.Service
	notify *notifications
}

func newTestServer(t *testing.T, limiter middlewarex.Limiter) *testServer {
	t.Helper()
	n := &notifications{}
	rec := audit.NewRecorder(memory.NewEventStore())
	apps := appsvc.NewService(memory.NewApplicationStore(), n, rec)
	authSvc := auth.NewService(memory.NewUserStore(), auth.NewTokenIssuer("jwt", time.Hour), memory.NewDenylist(), "admin-key")
	deps := RouterDependencies{
		Config:       config.Cfg{Sec: config.SecurityCfg{AllowedOrigins: []string{"*"}}},
		Payments:     paymentsvc.NewService(stubGateway{}, gatewaySecret, payment.INR, apps, rec),
		Applications: apps,
		Bookings:     bookingsvc.NewService(memory.NewBookingStore()),
		Auth:         authSvc,
		Audit:        rec,
	}
	if limiter != nil {
		deps.Limiter = limiter
	}
	return &testServer{h: NewRouter(deps), auth: authSvc, notify: n}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
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
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: non-JSON response %q", method, path, rec.Body.String())
	}
	return rec.Code, out
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	sess, err := s.auth.RegisterAdmin(context.Background(), auth.RegisterInput{Name: "Root", Email: "root@x.in", Password: "toor123"}, "admin-key")
	if err != nil {
		t.Fatal(err)
	}
	return sess.Token
}

func (s *testServer) userToken(t *testing.T) string {
	t.Helper()
	sess, err := s.auth.Register(context.Background(), auth.RegisterInput{Name: "Ravi", Email: "ravi@x.in", Password: "secret1", Phone: "9000000001"})
	if err != nil {
		t.Fatal(err)
	}
	return sess.Token
}

var ugForm = map[string]any{
	"name": "Asha", "email": "asha@x.in", "mobile": 9876543210, "city": "Pune", "state": "MH",
	"class": "12", "stream": "Science", "grade10": 91.5, "grade12": "88", "examDate": "2025-06-01",
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := s.do(t, http.MethodGet, "/health", "", nil)
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: %d %v", code, body)
	}
}

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := s.do(t, http.MethodPost, "/api/payments/create-order", "", map[string]any{"amount": 500})
	if code != http.StatusOK || body["success"] != true || body["key"] != "rzp_test_key" {
		t.Fatalf("create order: %d %v", code, body)
	}
	order := body["order"].(map[string]any)
	if order["amount"].(float64) != 50000 || order["currency"] != "INR" {
		t.Fatalf("unexpected order %v", order)
	}

	for _, in := range []map[string]any{{"amount": 0}, {"amount": -5}, {"amount": 10.5}, {}} {
		code, body := s.do(t, http.MethodPost, "/api/payments/create-order", "", in)
		if code != http.StatusBadRequest || body["success"] != false {
			t.Fatalf("amount %v: %d %v", in, code, body)
		}
	}
}

func TestVerifyPaymentCompletesApplicationOnce(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := s.do(t, http.MethodPost, "/user/ug-applications/createug", "", ugForm)
	if code != http.StatusCreated {
		t.Fatalf("create: %d %v", code, body)
	}
	appID := body["application"].(map[string]any)["id"].(string)

	bad := map[string]any{
		"razorpay_order_id":   "order_T1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "deadbeef",
		"applicationId":       appID,
		"applicationType":     "ug",
	}
	code, body = s.do(t, http.MethodPost, "/api/payments/verify", "", bad)
	if code != http.StatusBadRequest || body["message"] != "Invalid signature" {
		t.Fatalf("bad signature: %d %v", code, body)
	}
	if s.notify.count() != 0 {
		t.Fatal("rejected payment must not notify")
	}

	good := map[string]any{}
	for k, v := range bad {
		good[k] = v
	}
	good["razorpay_signature"] = payment.ExpectedSignature(gatewaySecret, "order_T1", "pay_1")
	for i := 0; i < 2; i++ {
		code, body = s.do(t, http.MethodPost, "/api/payments/verify", "", good)
		if code != http.StatusOK || body["message"] != "Payment verified successfully!" {
			t.Fatalf("verify #%d: %d %v", i, code, body)
		}
		if status := body["application"].(map[string]any)["paymentStatus"]; status != "completed" {
			t.Fatalf("verify #%d: status %v", i, status)
		}
	}
	if s.notify.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", s.notify.count())
	}

	// rejected, verified, transition, verified
	code, body = s.do(t, http.MethodGet, "/admin/payments/order_T1/events", s.adminToken(t), nil)
	if code != http.StatusOK || len(body["events"].([]any)) != 4 {
		t.Fatalf("history: %d %v", code, body)
	}
}

func TestVerifyWithoutApplication(t *testing.T) {
	s := newTestServer(t, nil)
	code, body := s.do(t, http.MethodPost, "/api/payments/verify", "", map[string]any{
		"razorpay_order_id":   "o",
		"razorpay_payment_id": "p",
		"razorpay_signature":  payment.ExpectedSignature(gatewaySecret, "o", "p"),
	})
	if code != http.StatusOK || body["application"] != nil {
		t.Fatalf("verify: %d %v", code, body)
	}

	code, _ = s.do(t, http.MethodPost, "/api/payments/verify", "", map[string]any{"razorpay_order_id": "o"})
	if code != http.StatusBadRequest {
		t.Fatalf("missing fields: %d", code)
	}
}

func TestApplicationCreateValidation(t *testing.T) {
	s := newTestServer(t, nil)

	if code, _ := s.do(t, http.MethodPost, "/user/ug-applications/createug", "", ugForm); code != http.StatusCreated {
		t.Fatalf("create: %d", code)
	}
	code, body := s.do(t, http.MethodPost, "/user/ug-applications/createug", "", ugForm)
	if code != http.StatusConflict || body["success"] != false {
		t.Fatalf("duplicate: %d %v", code, body)
	}

	// the same person may apply for PG separately
	pg := map[string]any{}
	for k, v := range ugForm {
		pg[k] = v
	}
	delete(pg, "examDate")
	if code, body := s.do(t, http.MethodPost, "/user/pg-applications/createpg", "", pg); code != http.StatusBadRequest || body["message"] != "graduationScore is required" {
		t.Fatalf("pg missing fields: %d %v", code, body)
	}
	pg["graduationScore"], pg["graduationStream"], pg["passingYear"] = "7.8", "BSc", 2024
	if code, body := s.do(t, http.MethodPost, "/user/pg-applications/createpg", "", pg); code != http.StatusCreated || body["message"] != "PG Application created successfully" {
		t.Fatalf("pg create: %d %v", code, body)
	}

	form := map[string]any{}
	for k, v := range ugForm {
		form[k] = v
	}
	form["email"] = "not-an-email"
	if code, body := s.do(t, http.MethodPost, "/user/ug-applications/createug", "", form); code != http.StatusBadRequest || body["message"] != "email must be a valid email" {
		t.Fatalf("bad email: %d %v", code, body)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodPost, "/user/ug-applications/createug", "", ugForm)

	code, body := s.do(t, http.MethodGet, "/user/ug-applications/getug", "", nil)
	if code != http.StatusUnauthorized || body["message"] != "Not authorized to access this route" {
		t.Fatalf("anonymous: %d %v", code, body)
	}
	code, body = s.do(t, http.MethodGet, "/user/ug-applications/getug", s.userToken(t), nil)
	if code != http.StatusForbidden || body["message"] != "Admin access only!" {
		t.Fatalf("user: %d %v", code, body)
	}

	admin := s.adminToken(t)
	code, body = s.do(t, http.MethodGet, "/user/ug-applications/getug?page=1&limit=5&search=pune", admin, nil)
	if code != http.StatusOK || body["totalApplications"].(float64) != 1 || body["currentPage"].(float64) != 1 {
		t.Fatalf("list: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/user/ug-applications/getug?page=9223372036854775807", admin, nil)
	if code != http.StatusOK || len(body["applications"].([]any)) != 0 || body["totalApplications"].(float64) != 1 {
		t.Fatalf("huge page: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/user/ug-applications/stats/overview", admin, nil)
	stats, _ := body["stats"].(map[string]any)
	if code != http.StatusOK || stats["totalApplications"].(float64) != 1 || stats["pendingPayments"].(float64) != 1 {
		t.Fatalf("stats: %d %v", code, body)
	}
}

func TestUpdateGetDeleteApplication(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.adminToken(t)
	_, body := s.do(t, http.MethodPost, "/user/ug-applications/createug", "", ugForm)
	path := "/user/ug-applications/" + body["application"].(map[string]any)["id"].(string)

	code, body := s.do(t, http.MethodPut, path, admin, map[string]any{"paymentStatus": "completed", "paymentId": "pay_9"})
	if code != http.StatusOK || body["message"] != "UG Application updated successfully" {
		t.Fatalf("update: %d %v", code, body)
	}
	if s.notify.count() != 1 {
		t.Fatal("completion must notify")
	}

	code, body = s.do(t, http.MethodPut, path, admin, map[string]any{"paymentStatus": "pending"})
	if code != http.StatusBadRequest {
		t.Fatalf("backward transition: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, path, admin, nil)
	if code != http.StatusOK || body["application"].(map[string]any)["paymentStatus"] != "completed" {
		t.Fatalf("get: %d %v", code, body)
	}

	if code, _ := s.do(t, http.MethodDelete, path, admin, nil); code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	code, body = s.do(t, http.MethodGet, path, admin, nil)
	if code != http.StatusNotFound || body["message"] != "UG Application not found" {
		t.Fatalf("get deleted: %d %v", code, body)
	}

	if code, _ := s.do(t, http.MethodGet, "/user/ug-applications/not-a-uuid", admin, nil); code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", code)
	}
}

func TestBookings(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := s.do(t, http.MethodPost, "/booking/create", "", map[string]any{"name": "Kiran", "mobile": "9000000002", "studentClass": 9})
	if code != http.StatusCreated || body["message"] != "Booking created successfully" {
		t.Fatalf("create: %d %v", code, body)
	}
	if code, _ := s.do(t, http.MethodPost, "/booking/create", "", map[string]any{"name": "Kiran"}); code != http.StatusBadRequest {
		t.Fatalf("missing fields: %d", code)
	}

	code, body = s.do(t, http.MethodGet, "/booking/allbooking", s.adminToken(t), nil)
	if code != http.StatusOK || len(body["data"].([]any)) != 1 {
		t.Fatalf("list: %d %v", code, body)
	}
}

func TestUserAccountFlow(t *testing.T) {
	s := newTestServer(t, nil)

	reg := map[string]any{"name": "Meera", "email": "meera@x.in", "password": "secret1", "phone": "9000000003"}
	code, body := s.do(t, http.MethodPost, "/user/register", "", reg)
	if code != http.StatusCreated || body["message"] != "User registered successfully" {
		t.Fatalf("register: %d %v", code, body)
	}
	if code, _ := s.do(t, http.MethodPost, "/user/register", "", reg); code != http.StatusConflict {
		t.Fatalf("duplicate register: %d", code)
	}

	code, body = s.do(t, http.MethodPost, "/user/login", "", map[string]any{"email": "meera@x.in", "password": "secret1"})
	if code != http.StatusOK {
		t.Fatalf("login: %d %v", code, body)
	}
	token := body["data"].(map[string]any)["token"].(string)

	code, body = s.do(t, http.MethodPut, "/user/updateprofile", token, map[string]any{"name": "Meera S"})
	if code != http.StatusOK || body["data"].(map[string]any)["name"] != "Meera S" {
		t.Fatalf("update profile: %d %v", code, body)
	}
	code, _ = s.do(t, http.MethodPut, "/user/updatepassword", token, map[string]any{"currentPassword": "nope", "newPassword": "secret2"})
	if code != http.StatusBadRequest {
		t.Fatalf("wrong current password: %d", code)
	}

	if code, _ := s.do(t, http.MethodPost, "/user/logout", token, nil); code != http.StatusOK {
		t.Fatalf("logout: %d", code)
	}
	if code, _ := s.do(t, http.MethodGet, "/user/getprofile", token, nil); code != http.StatusUnauthorized {
		t.Fatalf("revoked token accepted: %d", code)
	}
}

func TestAdminAuth(t *testing.T) {
	s := newTestServer(t, nil)

	in := map[string]any{"name": "Boss", "email": "boss@x.in", "password": "secret1", "secretKey": "wrong"}
	if code, body := s.do(t, http.MethodPost, "/admin/register", "", in); code != http.StatusUnauthorized || body["message"] != "Invalid Admin Secret Key" {
		t.Fatalf("bad key: %d %v", code, body)
	}
	in["secretKey"] = "admin-key"
	if code, _ := s.do(t, http.MethodPost, "/admin/register", "", in); code != http.StatusCreated {
		t.Fatalf("register admin: %d", code)
	}
	code, body := s.do(t, http.MethodPost, "/admin/login", "", map[string]any{"email": "boss@x.in", "password": "secret1"})
	if code != http.StatusOK || body["message"] != "Admin login successful" {
		t.Fatalf("admin login: %d %v", code, body)
	}
	token := body["data"].(map[string]any)["token"].(string)
	if code, _ := s.do(t, http.MethodGet, "/admin/profile", token, nil); code != http.StatusOK {
		t.Fatalf("admin profile: %d", code)
	}

	if code, _ := s.do(t, http.MethodPost, "/admin/login", "", map[string]any{"email": "ravi@x.in", "password": "secret1"}); code != http.StatusUnauthorized {
		t.Fatalf("unknown admin: %d", code)
	}
	s.userToken(t)
	if code, _ := s.do(t, http.MethodPost, "/admin/login", "", map[string]any{"email": "ravi@x.in", "password": "secret1"}); code != http.StatusForbidden {
		t.Fatalf("non-admin login: %d", code)
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, denyAll{})
	code, body := s.do(t, http.MethodGet, "/health", "", nil)
	if code != http.StatusTooManyRequests || body["success"] != false {
		t.Fatalf("rate limit: %d %v", code, body)
	}
}
