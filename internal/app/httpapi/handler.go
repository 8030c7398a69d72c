// Package httpapi exposes the application services as a JSON REST API.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/booking"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/health"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/payment"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/training"
	"github.com/nekoneko-space/travel-platform/internal/app/metrics"
	"github.com/nekoneko-space/travel-platform/internal/app/services/agents"
	"github.com/nekoneko-space/travel-platform/internal/app/services/bookings"
	"github.com/nekoneko-space/travel-platform/internal/app/services/payments"
	"github.com/nekoneko-space/travel-platform/internal/app/services/routes"
	"github.com/nekoneko-space/travel-platform/internal/app/services/safety"
	"github.com/nekoneko-space/travel-platform/internal/app/services/users"
	"github.com/nekoneko-space/travel-platform/internal/app/services/weather"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Services groups the application services the API exposes.
type Services struct {
	Users    *users.Service
	Bookings *bookings.Service
	Payments *payments.Service
	Safety   *safety.Service
	Weather  *weather.Service
	Routes   *routes.Service
	Desk     *agents.Desk
	Team     *agents.Team
}

// Handler is the REST API handler.
type Handler struct {
	svc Services
	log *logger.Logger
	mux *http.ServeMux
}

// New builds the API handler and registers its routes.
func New(svc Services, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &Handler{svc: svc, log: log, mux: http.NewServeMux()}
	h.routes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.mux.HandleFunc("POST /users", h.createUser)
	h.mux.HandleFunc("GET /users", h.listUsers)
	h.mux.HandleFunc("GET /users/{id}", h.getUser)
	h.mux.HandleFunc("GET /users/{id}/bookings", h.listUserBookings)
	h.mux.HandleFunc("POST /users/{id}/health-records", h.createHealthRecord)
	h.mux.HandleFunc("GET /users/{id}/health-records", h.listHealthRecords)
	h.mux.HandleFunc("POST /users/{id}/training", h.runTrainingSession)
	h.mux.HandleFunc("GET /users/{id}/training", h.listTrainingRecords)
	h.mux.HandleFunc("POST /users/{id}/training/schedule", h.buildTrainingSchedule)

	h.mux.HandleFunc("POST /bookings", h.createBooking)
	h.mux.HandleFunc("GET /bookings/{id}", h.getBooking)
	h.mux.HandleFunc("DELETE /bookings/{id}", h.cancelBooking)
	h.mux.HandleFunc("POST /bookings/{id}/payments", h.chargeBooking)
	h.mux.HandleFunc("GET /bookings/{id}/payments", h.listPayments)
	h.mux.HandleFunc("POST /payments/{id}/refund", h.refundPayment)

	h.mux.HandleFunc("GET /weather", h.currentWeather)
	h.mux.HandleFunc("GET /routes/{destination}", h.planRoute)
	h.mux.HandleFunc("GET /routes/{destination}/launch-window", h.launchWindow)

	h.mux.HandleFunc("POST /inquiries", h.createInquiry)
	h.mux.HandleFunc("POST /agents/{name}/ask", h.askAgent)
}

// --- users ---

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	u, err := h.svc.Users.Register(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, userResponse{
		ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt,
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Users.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, userResponse{
			ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, userResponse{
		ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt,
	})
}

// --- bookings ---

type bookingResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Destination   string    `json:"destination"`
	PackageType   string    `json:"package_type"`
	DepartureDate time.Time `json:"departure_date"`
	ReturnDate    time.Time `json:"return_date"`
	Passengers    int       `json:"passengers"`
	TotalPrice    int64     `json:"total_price"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBookingResponse(b booking.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		Destination:   b.Destination,
		PackageType:   b.PackageType,
		DepartureDate: b.DepartureDate,
		ReturnDate:    b.ReturnDate,
		Passengers:    b.Passengers,
		TotalPrice:    b.TotalPrice,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
	}
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID        string    `json:"user_id"`
		Destination   string    `json:"destination"`
		PackageType   string    `json:"package_type"`
		DepartureDate time.Time `json:"departure_date"`
		Passengers    int       `json:"passengers"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	b, err := h.svc.Bookings.Create(r.Context(), req.UserID, req.Destination, req.PackageType, req.DepartureDate, req.Passengers)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toBookingResponse(b))
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBookingResponse(b))
}

// cancelBooking cancels the booking, refunding any settled payment first.
func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if paid, err := h.svc.Payments.List(r.Context(), id); err == nil {
		for _, p := range paid {
			if p.Status != payment.StatusSucceeded {
				continue
			}
			if _, err := h.svc.Payments.Refund(r.Context(), p.ID); err != nil {
				h.writeError(w, http.StatusBadRequest, fmt.Sprintf("refund payment %s: %v", p.ID, err))
				return
			}
		}
	}

	b, err := h.svc.Bookings.Cancel(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) listUserBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Bookings.List(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]bookingResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBookingResponse(b))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"bookings": out})
}

// --- payments ---

type paymentResponse struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPaymentResponse(p payment.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
	}
}

func (h *Handler) chargeBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod string `json:"payment_method"`
		Plan          string `json:"plan"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Plan == "" {
		req.Plan = string(payment.PlanFull)
	}

	p, totals, err := h.svc.Payments.Charge(r.Context(), r.PathValue("id"), req.PaymentMethod, payment.Plan(req.Plan))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"payment": toPaymentResponse(p),
		"totals": map[string]int64{
			"subtotal": totals.Subtotal,
			"discount": totals.Discount,
			"tax":      totals.Tax,
			"total":    totals.Total,
		},
	})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Payments.List(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]paymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"payments": out})
}

func (h *Handler) refundPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Payments.Refund(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

// --- health and training ---

func (h *Handler) createHealthRecord(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CheckDate        time.Time `json:"check_date"`
		BloodPressureSys int       `json:"blood_pressure_systolic"`
		BloodPressureDia int       `json:"blood_pressure_diastolic"`
		HeartRate        int       `json:"heart_rate"`
		Weight           float64   `json:"weight"`
		Height           float64   `json:"height"`
		Notes            string    `json:"notes"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rec, eval, err := h.svc.Safety.RecordHealthCheck(r.Context(), health.Record{
		UserID:           r.PathValue("id"),
		CheckDate:        req.CheckDate,
		BloodPressureSys: req.BloodPressureSys,
		BloodPressureDia: req.BloodPressureDia,
		HeartRate:        req.HeartRate,
		Weight:           req.Weight,
		Height:           req.Height,
		Notes:            req.Notes,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"record": healthRecordResponse(rec),
		"check":  evalResponse(eval),
	})
}

func (h *Handler) listHealthRecords(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	recs, err := h.svc.Safety.ListHealthRecords(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := map[string]any{"records": healthRecordsResponse(recs)}
	if eval, err := h.svc.Safety.CheckFlightReadiness(r.Context(), userID); err == nil {
		resp["check"] = evalResponse(eval)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func healthRecordResponse(rec health.Record) map[string]any {
	return map[string]any{
		"id":                       rec.ID,
		"user_id":                  rec.UserID,
		"check_date":               rec.CheckDate,
		"blood_pressure_systolic":  rec.BloodPressureSys,
		"blood_pressure_diastolic": rec.BloodPressureDia,
		"heart_rate":               rec.HeartRate,
		"weight":                   rec.Weight,
		"height":                   rec.Height,
		"notes":                    rec.Notes,
	}
}

func healthRecordsResponse(recs []health.Record) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		out = append(out, healthRecordResponse(rec))
	}
	return out
}

func evalResponse(eval health.Evaluation) map[string]any {
	return map[string]any{"passed": eval.Passed, "reasons": eval.Reasons}
}

func (h *Handler) runTrainingSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrainingType string `json:"training_type"`
		Level        string `json:"level"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Level == "" {
		req.Level = string(training.LevelBasic)
	}

	result, err := h.svc.Safety.RunSession(r.Context(), r.PathValue("id"),
		training.Type(strings.ToLower(req.TrainingType)), training.Level(strings.ToLower(req.Level)))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":       result.UserID,
		"training_type": result.TrainingType,
		"level":         result.Level,
		"date":          result.Date,
		"score":         result.Score,
		"passed":        result.Passed,
		"feedback":      result.Feedback,
		"next_steps":    result.NextSteps,
	})
}

func (h *Handler) listTrainingRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Safety.History(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		out = append(out, map[string]any{
			"id":              rec.ID,
			"user_id":         rec.UserID,
			"training_type":   rec.TrainingType,
			"completion_date": rec.CompletionDate,
			"score":           rec.Score,
			"status":          rec.Status,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"records": out})
}

func (h *Handler) buildTrainingSchedule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DepartureDate time.Time `json:"departure_date"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	schedule, err := h.svc.Safety.BuildSchedule(r.PathValue("id"), req.DepartureDate)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	modules := make([]map[string]any, 0, len(schedule.Modules))
	for _, m := range schedule.Modules {
		modules = append(modules, map[string]any{
			"training_type": m.Type,
			"start_date":    m.StartDate,
			"end_date":      m.EndDate,
			"duration_days": m.DurationDays,
			"requirements":  m.Requirements,
			"equipment":     m.Equipment,
			"description":   m.Description,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"user_id":        schedule.UserID,
		"start_date":     schedule.StartDate,
		"end_date":       schedule.EndDate,
		"departure_date": schedule.DepartureDate,
		"modules":        modules,
	})
}

// --- weather and routes ---

func (h *Handler) currentWeather(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Weather.Current(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) planRoute(w http.ResponseWriter, r *http.Request) {
	departure := time.Now().UTC()
	if raw := r.URL.Query().Get("departure"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "departure must be RFC 3339")
			return
		}
		departure = t
	}

	plan, err := h.svc.Routes.Plan(r.PathValue("destination"), departure)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, plan)
}

func (h *Handler) launchWindow(w http.ResponseWriter, r *http.Request) {
	from := time.Now().UTC()
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "from must be RFC 3339")
			return
		}
		from = t
	}

	window, err := h.svc.Routes.NextLaunchWindow(r.PathValue("destination"), from)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"destination": strings.ToLower(r.PathValue("destination")),
		"next_window": window,
	})
}

// --- agents ---

func (h *Handler) createInquiry(w http.ResponseWriter, r *http.Request) {
	var req agents.Inquiry
	if !h.decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.svc.Desk.Handle(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) askAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	result := h.svc.Team.Delegate(r.Context(), r.PathValue("name"), req.Content)
	if result.Err != "" {
		if result.Agent == "" {
			h.writeError(w, http.StatusNotFound, result.Err)
			return
		}
		h.writeError(w, http.StatusBadGateway, result.Err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// --- helpers ---

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	if status >= http.StatusInternalServerError {
		metrics.RecordError("http_internal")
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors onto HTTP statuses: missing rows to
// 404, validation failures to 400.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows), strings.Contains(err.Error(), "not found"):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.writeError(w, http.StatusBadRequest, err.Error())
	}
}
