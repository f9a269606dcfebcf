package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/esannidhi-api/internal/auth"
	"github.com/harentsoaR/esannidhi-api/internal/kv"
	"github.com/harentsoaR/esannidhi-api/internal/models"
	"github.com/harentsoaR/esannidhi-api/internal/otp"
	"github.com/harentsoaR/esannidhi-api/internal/storage"
	"github.com/harentsoaR/esannidhi-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type lastCode struct{ code string }

func (l *lastCode) SendOTP(_ context.Context, _, code string, _ models.OTPPurpose) error {
	l.code = code
	return nil
}

type recordingNotifier struct {
	visits []string
	orders []models.OrderStatus
}

func (r *recordingNotifier) NotifyVisitRequested(doctor *models.Doctor, visit *models.Visit) {
	r.visits = append(r.visits, doctor.Phone)
}

func (r *recordingNotifier) NotifyOrderStatus(phone string, order *models.Order) {
	r.orders = append(r.orders, order.Status)
}

type testAPI struct {
	t        *testing.T
	router   *gin.Engine
	store    *storage.Service
	codes    *lastCode
	notifier *recordingNotifier
}

type account struct {
	Token   string
	Session models.Session
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.New(kv.NewMemoryStore(), nil)
	codes := &lastCode{}
	otps := otp.NewService(store, codes, time.Minute, nil, nil)
	authSvc := auth.NewService(store, otps, utils.NewTokenIssuer("test-secret", time.Hour), auth.Options{BcryptCost: bcrypt.MinCost}, nil)
	notifier := &recordingNotifier{}

	h := NewHandler(store, authSvc, otps, notifier, nil)
	r := gin.New()
	h.RegisterRoutes(r)
	return &testAPI{t: t, router: r, store: store, codes: codes, notifier: notifier}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testAPI) register(role models.Role, name, phone string) account {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/register", "", gin.H{
		"role": role, "name": name, "phone": phone, "password": "secret123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	res := decode[struct {
		Token   string         `json:"token"`
		Session models.Session `json:"session"`
	}](a.t, w)
	return account{Token: res.Token, Session: res.Session}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	w := api.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRoutes(t *testing.T) {
	api := newTestAPI(t)
	user := api.register(models.RoleUser, "Gurpreet", "9000000001")
	assert.NotEmpty(t, user.Token)

	w := api.do(http.MethodPost, "/auth/register", "", gin.H{
		"role": "user", "name": "Again", "phone": "9000000001", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/auth/login", "", gin.H{"role": "user", "phone": "9000000001", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/auth/login", "", gin.H{"role": "user", "phone": "9000000001", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/me", user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[map[string]any](t, w)
	assert.Equal(t, "Gurpreet", me["name"])
	assert.NotContains(t, me, "passwordHash")

	w = api.do(http.MethodPut, "/api/me", user.Token, gin.H{"village": "Bhadson", "age": 31})
	require.Equal(t, http.StatusOK, w.Code)
	me = decode[map[string]any](t, w)
	assert.Equal(t, "Bhadson", me["village"])
	assert.EqualValues(t, 31, me["age"])

	w = api.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = api.do(http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOTPRoutes(t *testing.T) {
	api := newTestAPI(t)
	api.register(models.RoleAsha, "Sunita", "9000000100")

	w := api.do(http.MethodPost, "/auth/otp/request", "", gin.H{"phone": "9000000100", "purpose": "login"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/auth/otp/login", "", gin.H{"role": "asha", "phone": "9000000100", "code": "not-it"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = api.do(http.MethodPost, "/auth/otp/login", "", gin.H{"role": "asha", "phone": "9000000100", "code": api.codes.code})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/auth/otp/request", "", gin.H{"phone": "9000000100", "purpose": "unlock"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPost, "/auth/otp/request", "", gin.H{"phone": "9000000100", "purpose": "reset"})
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/auth/password/reset", "", gin.H{
		"role": "asha", "phone": "9000000100", "code": api.codes.code, "newPassword": "fresh-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodPost, "/auth/login", "", gin.H{"role": "asha", "phone": "9000000100", "password": "fresh-pass"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConsultationFlow(t *testing.T) {
	api := newTestAPI(t)
	user := api.register(models.RoleUser, "Gurpreet", "9000000001")
	stranger := api.register(models.RoleUser, "Other", "9000000002")
	asha := api.register(models.RoleAsha, "Sunita", "9000000100")
	doctor := api.register(models.RoleDoctor, "Dr. Kaur", "9000000200")
	pharmacy := api.register(models.RolePharmacy, "Sehat Medicos", "9000000300")

	w := api.do(http.MethodPost, "/api/patients", user.Token, gin.H{"name": "Baljit", "age": 60, "village": "Bhadson"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	patient := decode[models.Patient](t, w)

	w = api.do(http.MethodPost, "/api/patients", pharmacy.Token, gin.H{"name": "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/patients/"+patient.ID.Hex(), asha.Token, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/api/patients/"+patient.ID.Hex(), stranger.Token, nil).Code)

	w = api.do(http.MethodGet, "/api/patients/search?q=bhad", doctor.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Patient](t, w), 1)

	w = api.do(http.MethodPost, "/api/patients/"+patient.ID.Hex()+"/records", asha.Token, gin.H{
		"kind": "vitals", "vitals": gin.H{"bp": "140/90", "pulse": 82},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodPost, "/api/visits", user.Token, gin.H{
		"patientId": patient.ID.Hex(), "doctorId": doctor.Session.ID, "symptoms": "fever",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	visit := decode[models.Visit](t, w)
	assert.Equal(t, models.VisitRequested, visit.Status)
	assert.NotEmpty(t, visit.RoomID)
	assert.Equal(t, []string{"9000000200"}, api.notifier.visits)

	w = api.do(http.MethodPatch, "/api/visits/"+visit.ID.Hex()+"/status", user.Token, gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPatch, "/api/visits/"+visit.ID.Hex()+"/status", doctor.Token, gin.H{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/visits?status=accepted", doctor.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Visit](t, w), 1)

	w = api.do(http.MethodPost, "/api/prescriptions", asha.Token, gin.H{"visitId": visit.ID.Hex()})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/prescriptions", doctor.Token, gin.H{
		"visitId": visit.ID.Hex(),
		"items":   []gin.H{{"medicine": "Paracetamol 500mg", "dosage": "1 tab", "frequency": "TDS", "durationDays": 3}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do(http.MethodGet, "/api/visits/"+visit.ID.Hex(), user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.VisitCompleted, decode[models.Visit](t, w).Status)

	w = api.do(http.MethodGet, "/api/prescriptions?patientId="+patient.ID.Hex(), user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Prescription](t, w), 1)

	w = api.do(http.MethodPatch, "/api/visits/"+visit.ID.Hex()+"/status", doctor.Token, gin.H{"status": "in_progress"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMessageRoutes(t *testing.T) {
	api := newTestAPI(t)
	user := api.register(models.RoleUser, "Gurpreet", "9000000001")
	doctor := api.register(models.RoleDoctor, "Dr. Kaur", "9000000200")

	w := api.do(http.MethodPost, "/api/messages", user.Token, gin.H{"toRole": "doctor", "toId": doctor.Session.ID, "text": "hello doctor"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := decode[models.Message](t, w)

	w = api.do(http.MethodGet, "/api/messages/inbox", doctor.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Message](t, w), 1)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodPatch, "/api/messages/"+msg.ID.Hex()+"/read", user.Token, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodPatch, "/api/messages/"+msg.ID.Hex()+"/read", doctor.Token, nil).Code)

	w = api.do(http.MethodGet, "/api/messages/conversation/"+user.Session.ID, doctor.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	conv := decode[[]models.Message](t, w)
	require.Len(t, conv, 1)
	assert.True(t, conv[0].Read)
}

func TestPharmacyFlow(t *testing.T) {
	api := newTestAPI(t)
	user := api.register(models.RoleUser, "Gurpreet", "9000000001")
	pharmacy := api.register(models.RolePharmacy, "Sehat Medicos", "9000000300")

	w := api.do(http.MethodPost, "/api/medicines", user.Token, gin.H{"name": "ORS", "price": 18, "stock": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, "/api/medicines", pharmacy.Token, gin.H{"name": "ORS Sachet", "price": 18, "stock": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	med := decode[models.Medicine](t, w)

	w = api.do(http.MethodGet, "/api/medicines?q=ors", user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Medicine](t, w), 1)

	w = api.do(http.MethodPost, "/api/cart", user.Token, gin.H{"medicineId": med.ID.Hex(), "quantity": 9})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/api/cart", user.Token, gin.H{"medicineId": med.ID.Hex(), "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cart := decode[struct {
		Items []models.CartItem `json:"items"`
		Total float64           `json:"total"`
	}](t, w)
	assert.Len(t, cart.Items, 1)
	assert.InDelta(t, 36.0, cart.Total, 0.001)

	w = api.do(http.MethodPut, "/api/cart/"+med.ID.Hex(), user.Token, gin.H{"quantity": 6})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPost, "/api/cart/checkout", user.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orders := decode[[]models.Order](t, w)
	require.Len(t, orders, 1)
	order := orders[0]

	w = api.do(http.MethodGet, "/api/medicines/"+med.ID.Hex(), user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[models.Medicine](t, w).Stock)

	w = api.do(http.MethodGet, "/api/orders", pharmacy.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Order](t, w), 1)

	w = api.do(http.MethodPatch, "/api/orders/"+order.ID.Hex()+"/status", user.Token, gin.H{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, next := range []string{"accepted", "ready", "delivered"} {
		w = api.do(http.MethodPatch, "/api/orders/"+order.ID.Hex()+"/status", pharmacy.Token, gin.H{"status": next})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, []models.OrderStatus{models.OrderAccepted, models.OrderReady, models.OrderDelivered}, api.notifier.orders)

	w = api.do(http.MethodGet, "/api/bills", pharmacy.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	bills := decode[[]models.Bill](t, w)
	require.Len(t, bills, 1)
	assert.InDelta(t, 36.0, bills[0].Total, 0.001)

	w = api.do(http.MethodPost, "/api/bills", pharmacy.Token, gin.H{"orderId": order.ID.Hex()})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(http.MethodPatch, "/api/bills/"+bills[0].ID.Hex()+"/pay", pharmacy.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.Bill](t, w).Paid)

	w = api.do(http.MethodGet, "/api/bills/export", pharmacy.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestBuyerReadsOwnBill(t *testing.T) {
	api := newTestAPI(t)
	user := api.register(models.RoleUser, "Gurpreet", "9000000001")
	stranger := api.register(models.RoleUser, "Harjit", "9000000002")
	pharmacy := api.register(models.RolePharmacy, "Sehat Medicos", "9000000300")
	other := api.register(models.RolePharmacy, "Jan Aushadhi", "9000000301")

	w := api.do(http.MethodPost, "/api/medicines", pharmacy.Token, gin.H{"name": "ORS Sachet", "price": 18, "stock": 5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	med := decode[models.Medicine](t, w)

	w = api.do(http.MethodPost, "/api/cart", user.Token, gin.H{"medicineId": med.ID.Hex(), "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = api.do(http.MethodPost, "/api/cart/checkout", user.Token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[[]models.Order](t, w)[0]
	assert.Empty(t, order.PatientID)

	for _, next := range []string{"accepted", "ready", "delivered"} {
		w = api.do(http.MethodPatch, "/api/orders/"+order.ID.Hex()+"/status", pharmacy.Token, gin.H{"status": next})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = api.do(http.MethodGet, "/api/bills", user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	bills := decode[[]models.Bill](t, w)
	require.Len(t, bills, 1)
	assert.Equal(t, order.ID.Hex(), bills[0].OrderID)
	assert.Equal(t, user.Session.ID, bills[0].OwnerID)

	w = api.do(http.MethodGet, "/api/bills/"+bills[0].ID.Hex(), user.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.InDelta(t, 18.0, decode[models.Bill](t, w).Total, 0.001)

	w = api.do(http.MethodGet, "/api/bills/"+bills[0].ID.Hex(), stranger.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodGet, "/api/bills/"+bills[0].ID.Hex(), other.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/api/bills", stranger.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Bill](t, w))
}

func TestStatusMapping(t *testing.T) {
	cases := map[error]int{
		storage.ErrNotFound:          http.StatusNotFound,
		storage.ErrInvalidID:         http.StatusBadRequest,
		storage.ErrPhoneTaken:        http.StatusConflict,
		storage.ErrInsufficientStock: http.StatusConflict,
		storage.ErrNotOwner:          http.StatusForbidden,
		auth.ErrInvalidCredentials:   http.StatusUnauthorized,
		otp.ErrExpired:               http.StatusUnauthorized,
		otp.ErrTooManyAttempts:       http.StatusTooManyRequests,
		context.DeadlineExceeded:     http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
}
