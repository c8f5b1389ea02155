package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	reservationserrors "rentabook/internal/reservations/errors"
	apperrors "rentabook/pkg/errors"
	"rentabook/pkg/logger"
	"rentabook/pkg/middleware"
	"rentabook/pkg/model"
)

type mockService struct {
	createFunc        func(ctx context.Context, req *model.CreateReservationRequest) (*model.Reservation, error)
	getByIDFunc       func(ctx context.Context, id string) (*model.Reservation, error)
	getAllFunc        func(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	searchFunc        func(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error)
	updateStayFunc    func(ctx context.Context, id string, update *model.StayUpdate) (*model.Reservation, error)
	confirmFunc       func(ctx context.Context, id string) (*model.Reservation, error)
	cancelFunc        func(ctx context.Context, id string, req *model.CancelRequest) (*model.Reservation, error)
	completeFunc      func(ctx context.Context, id string) (*model.Reservation, error)
	addPaymentFunc    func(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error)
	availableDaysFunc func(ctx context.Context, propertyID string, from, to time.Time) ([]time.Time, error)
}

func (m *mockService) Create(ctx context.Context, req *model.CreateReservationRequest) (*model.Reservation, error) {
	return m.createFunc(ctx, req)
}

func (m *mockService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return m.getAllFunc(ctx, limit, offset)
}

func (m *mockService) SearchByProperty(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return m.searchFunc(ctx, propertyID, from, to, limit, offset)
}

func (m *mockService) UpdateStay(ctx context.Context, id string, update *model.StayUpdate) (*model.Reservation, error) {
	return m.updateStayFunc(ctx, id, update)
}

func (m *mockService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	return m.confirmFunc(ctx, id)
}

func (m *mockService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Reservation, error) {
	return m.cancelFunc(ctx, id, req)
}

func (m *mockService) Complete(ctx context.Context, id string) (*model.Reservation, error) {
	return m.completeFunc(ctx, id)
}

func (m *mockService) AddPayment(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
	return m.addPaymentFunc(ctx, id, req)
}

func (m *mockService) AvailableDays(ctx context.Context, propertyID string, from, to time.Time) ([]time.Time, error) {
	return m.availableDaysFunc(ctx, propertyID, from, to)
}

func newRouter(svc *mockService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Service: "test"})
	router := httprouter.New()
	NewReservationHandler(svc, log).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestCreate_UsesUserHeader(t *testing.T) {
	var got *model.CreateReservationRequest
	svc := &mockService{
		createFunc: func(ctx context.Context, req *model.CreateReservationRequest) (*model.Reservation, error) {
			got = req
			return &model.Reservation{ID: "r-1", PropertyID: req.PropertyID, CreatedBy: req.CreatedBy, State: model.StatePending}, nil
		},
	}
	router := newRouter(svc)

	body := `{"property_id":"prop-1","client_id":"c-1","start_date":"2025-04-01","end_date":"2025-04-05","guest_count":2,"created_by":"spoofed"}`
	rec := serve(router, http.MethodPost, "/api/v1/reservations", body, map[string]string{middleware.UserIDHeader: "user-9"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got.CreatedBy != "user-9" {
		t.Errorf("CreatedBy = %q, want the header value", got.CreatedBy)
	}
}

func TestCreate_RequiresUserHeader(t *testing.T) {
	router := newRouter(&mockService{})

	rec := serve(router, http.MethodPost, "/api/v1/reservations", `{}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreate_InvalidBody(t *testing.T) {
	router := newRouter(&mockService{})

	rec := serve(router, http.MethodPost, "/api/v1/reservations", `{"guest_count":`, map[string]string{middleware.UserIDHeader: "u"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if decodeError(t, rec)["code"] != apperrors.CodeBadRequest {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		retryAfter bool
	}{
		{"conflict", apperrors.Wrap(reservationserrors.ErrDateConflict, apperrors.CodeDateConflict, "overlap", http.StatusConflict), http.StatusConflict, apperrors.CodeDateConflict, false},
		{"busy", apperrors.Busy("busy", nil), http.StatusServiceUnavailable, apperrors.CodeBusy, true},
		{"not found", apperrors.NotFoundWithID("Reservation", "x"), http.StatusNotFound, apperrors.CodeNotFound, false},
		{"transition", apperrors.Wrap(reservationserrors.ErrInvalidTransition, apperrors.CodeInvalidTransition, "no", http.StatusConflict), http.StatusConflict, apperrors.CodeInvalidTransition, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{
				confirmFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
					return &model.Reservation{ID: id}, tt.err
				},
			}
			rec := serve(newRouter(svc), http.MethodPost, "/api/v1/reservations/id/abc/confirm", "", nil)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if code := decodeError(t, rec)["code"]; code != tt.wantCode {
				t.Errorf("code = %v, want %s", code, tt.wantCode)
			}
			if got := rec.Header().Get("Retry-After") != ""; got != tt.retryAfter {
				t.Errorf("Retry-After present = %v, want %v", got, tt.retryAfter)
			}
		})
	}
}

func TestCancel_BodyIsOptional(t *testing.T) {
	var reasons []string
	svc := &mockService{
		cancelFunc: func(ctx context.Context, id string, req *model.CancelRequest) (*model.Reservation, error) {
			reasons = append(reasons, req.Reason)
			return &model.Reservation{ID: id, State: model.StateCancelled}, nil
		},
	}
	router := newRouter(svc)

	if rec := serve(router, http.MethodPost, "/api/v1/reservations/id/r-1/cancel", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("empty body status = %d", rec.Code)
	}
	if rec := serve(router, http.MethodPost, "/api/v1/reservations/id/r-1/cancel", `{"reason":"guest withdrew"}`, nil); rec.Code != http.StatusOK {
		t.Fatalf("with reason status = %d", rec.Code)
	}
	if len(reasons) != 2 || reasons[0] != "" || reasons[1] != "guest withdrew" {
		t.Errorf("reasons = %q", reasons)
	}
}

func TestAvailability(t *testing.T) {
	svc := &mockService{
		availableDaysFunc: func(ctx context.Context, propertyID string, from, to time.Time) ([]time.Time, error) {
			if propertyID != "prop-1" {
				t.Errorf("propertyID = %q", propertyID)
			}
			return []time.Time{from, to}, nil
		},
	}
	router := newRouter(svc)

	rec := serve(router, http.MethodGet, "/api/v1/properties/prop-1/availability?start_date=2025-03-01&end_date=2025-03-31", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data AvailabilityResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.AvailableDays) != 2 || body.Data.AvailableDays[0] != "2025-03-01" || body.Data.AvailableDays[1] != "2025-03-31" {
		t.Errorf("available days = %v", body.Data.AvailableDays)
	}

	rec = serve(router, http.MethodGet, "/api/v1/properties/prop-1/availability?start_date=2025-03-01", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing end_date status = %d, want 400", rec.Code)
	}
}

func TestAvailability_EmptyIsArray(t *testing.T) {
	svc := &mockService{
		availableDaysFunc: func(ctx context.Context, propertyID string, from, to time.Time) ([]time.Time, error) {
			return nil, nil
		},
	}
	rec := serve(newRouter(svc), http.MethodGet, "/api/v1/properties/p/availability?start_date=2025-03-01&end_date=2025-03-02", "", nil)
	if !strings.Contains(rec.Body.String(), `"available_days":[]`) {
		t.Errorf("fully booked range should render an empty array, got %s", rec.Body.String())
	}
}

func TestSearch(t *testing.T) {
	svc := &mockService{
		searchFunc: func(ctx context.Context, propertyID string, from, to *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
			if from == nil || model.FormatDay(*from) != "2025-03-01" || to != nil {
				t.Errorf("from=%v to=%v", from, to)
			}
			return []*model.Reservation{{ID: "r-1"}}, 1, nil
		},
	}
	router := newRouter(svc)

	rec := serve(router, http.MethodGet, "/api/v1/reservations/search?property_id=prop-1&start_date=2025-03-01&limit=5", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"total_count":1`) || !strings.Contains(rec.Body.String(), `"limit":5`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = serve(router, http.MethodGet, "/api/v1/reservations/search", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing property_id status = %d, want 400", rec.Code)
	}

	rec = serve(router, http.MethodGet, "/api/v1/reservations/search?property_id=p&end_date=31-03-2025", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad end_date status = %d, want 400", rec.Code)
	}
}

func TestAddPayment_PassesBody(t *testing.T) {
	svc := &mockService{
		addPaymentFunc: func(ctx context.Context, id string, req *model.PaymentRequest) (*model.Reservation, error) {
			if id != "r-1" || req.Amount != 500 || req.Method != "transfer" {
				t.Errorf("id=%s req=%+v", id, req)
			}
			return &model.Reservation{ID: id, DepositPaid: 500}, nil
		},
	}
	rec := serve(newRouter(svc), http.MethodPost, "/api/v1/reservations/id/r-1/payments", `{"amount":500,"method":"transfer"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}
