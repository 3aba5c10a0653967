package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/service"

	"github.com/gorilla/mux"
)

const dateLayout = "2006-01-02"

func (h *Handler) registerBusinessRoutes(r *mux.Router) {
	r.HandleFunc("/api/business/daily-summary", h.dailySummary).Methods("GET")
	r.HandleFunc("/api/business/average-ticket-by-waiter", h.averageTicketByWaiter).Methods("GET")
	r.HandleFunc("/api/business/total-sales-by-origin", h.totalSalesByOrigin).Methods("GET")
	r.HandleFunc("/api/business/top-selling-items", h.topSellingItems).Methods("GET")
	r.HandleFunc("/api/business/top-selling-today", h.topSellingToday).Methods("GET")
	r.HandleFunc("/api/business/records", h.findRecords).Methods("GET")
	r.HandleFunc("/api/business/order/{orderId}", h.getRecordByOrder).Methods("GET")
	r.HandleFunc("/api/business/{id}", h.getRecord).Methods("GET")
}

func (h *Handler) dailySummary(w http.ResponseWriter, r *http.Request) {
	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			http.Error(w, "date must be formatted as YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	summary, err := h.Business.DailySummary(r.Context(), restaurantID(r), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) averageTicketByWaiter(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Business.AverageTicketByWaiter(r.Context(), restaurantID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) totalSalesByOrigin(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Business.TotalSalesByOrigin(r.Context(), restaurantID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return limit, nil
}

func (h *Handler) topSellingItems(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	items, err := h.Business.TopSellingItems(r.Context(), restaurantID(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) topSellingToday(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	items, err := h.Business.TopSellingToday(r.Context(), restaurantID(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) findRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	records, err := h.Business.Find(r.Context(), restaurantID(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.Business.FindOne(r.Context(), restaurantID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) getRecordByOrder(w http.ResponseWriter, r *http.Request) {
	record, err := h.Business.FindByOrderID(r.Context(), restaurantID(r), mux.Vars(r)["orderId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ParseFilter reads business record filters from query parameters. Range
// filters take <name>From and <name>To; a missing To equals From.
func ParseFilter(q url.Values) (domain.BusinessFilter, error) {
	var (
		f   domain.BusinessFilter
		err error
	)

	if raw := q.Get("dateFrom"); raw != "" {
		from, perr := time.ParseInLocation(dateLayout, raw, time.Local)
		if perr != nil {
			return f, fmt.Errorf("dateFrom must be formatted as YYYY-MM-DD")
		}
		to := from
		if rawTo := q.Get("dateTo"); rawTo != "" {
			if to, perr = time.ParseInLocation(dateLayout, rawTo, time.Local); perr != nil {
				return f, fmt.Errorf("dateTo must be formatted as YYYY-MM-DD")
			}
		}
		start, _ := service.DayBounds(from)
		_, end := service.DayBounds(to)
		f.Date = &domain.TimeRange{From: start, To: end}
	}

	if f.WeekDay, err = optionalInt(q, "weekDay"); err != nil {
		return f, err
	}
	intRanges := []struct {
		name   string
		target **domain.IntRange
	}{
		{"hour", &f.HourSlot},
		{"customers", &f.CustomerCount},
		{"items", &f.TotalItems},
		{"timeToStart", &f.TimeToStartPreparing},
		{"timePreparing", &f.TimePreparing},
		{"timeToDelivery", &f.TimeToDelivery},
	}
	for _, rng := range intRanges {
		if *rng.target, err = intRange(q, rng.name); err != nil {
			return f, err
		}
	}
	if f.Discount, err = floatRange(q, "discount"); err != nil {
		return f, err
	}
	if f.DeliveryFee, err = floatRange(q, "deliveryFee"); err != nil {
		return f, err
	}

	if raw := q.Get("paymentMethod"); raw != "" {
		method := domain.PaymentMethod(strings.ToUpper(raw))
		f.PaymentMethod = &method
	}
	if raw := q.Get("origin"); raw != "" {
		origin := domain.Origin(strings.ToUpper(raw))
		f.Origin = &origin
	}
	f.WaiterID = optionalString(q, "waiterId")
	f.WaiterName = optionalString(q, "waiterName")
	f.TransactionHandlerID = optionalString(q, "handlerId")
	f.TransactionHandlerName = optionalString(q, "handlerName")
	f.DeliveryNeighborhood = optionalString(q, "neighborhood")
	f.CancellationReason = optionalString(q, "cancelReason")
	if raw := q.Get("canceled"); raw != "" {
		canceled, perr := strconv.ParseBool(raw)
		if perr != nil {
			return f, fmt.Errorf("canceled must be true or false")
		}
		f.IsCanceled = &canceled
	}
	return f, nil
}

func optionalString(q url.Values, key string) *string {
	if v := strings.TrimSpace(q.Get(key)); v != "" {
		return &v
	}
	return nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

func intRange(q url.Values, name string) (*domain.IntRange, error) {
	from, err := optionalInt(q, name+"From")
	if err != nil || from == nil {
		return nil, err
	}
	to, err := optionalInt(q, name+"To")
	if err != nil {
		return nil, err
	}
	return &domain.IntRange{From: *from, To: to}, nil
}

func floatRange(q url.Values, name string) (*domain.FloatRange, error) {
	rawFrom := q.Get(name + "From")
	if rawFrom == "" {
		return nil, nil
	}
	from, err := strconv.ParseFloat(rawFrom, 64)
	if err != nil {
		return nil, fmt.Errorf("%sFrom must be a number", name)
	}
	rng := &domain.FloatRange{From: from}
	if rawTo := q.Get(name + "To"); rawTo != "" {
		to, err := strconv.ParseFloat(rawTo, 64)
		if err != nil {
			return nil, fmt.Errorf("%sTo must be a number", name)
		}
		rng.To = &to
	}
	return rng, nil
}
