package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"pharma-ops/internal/model"
	"pharma-ops/internal/report"
	"pharma-ops/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// StatusChangeRequest is the body of PATCH /api/orders/{id}/status.
type StatusChangeRequest struct {
	UserID  string `json:"userId" validate:"omitempty,max=128"`
	Status  string `json:"status" validate:"required,max=32"`
	Message string `json:"message" validate:"required,max=500"`
}

// PaymentStatusRequest is the body of PUT /api/pharmacies/{id}/revenue/{month}.
type PaymentStatusRequest struct {
	Status string           `json:"status" validate:"required,max=16"`
	Amount *decimal.Decimal `json:"amount" validate:"required"`
}

// MarkReadRequest is the body of POST /api/notifications/read.
type MarkReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=500,dive,required,max=128"`
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into out and runs struct validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validate, out interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid request body")
	}
	if err := v.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return model.ValidationError("%v", err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return model.ValidationError("%s", strings.Join(msgs, "; "))
}

// Paging holds the page size limits applied to list endpoints.
type Paging struct {
	DefaultPageSize int
	MaxPageSize     int
}

// parseListQuery reads filter and pagination parameters. planType is honoured only when
// allowPlanType is set.
func parseListQuery(r *http.Request, paging Paging, allowPlanType bool) (service.ListQuery, error) {
	q := r.URL.Query()

	filters, err := parseFilters(q.Get, allowPlanType)
	if err != nil {
		return service.ListQuery{}, err
	}

	page := 1
	if s := q.Get("page"); s != "" {
		if page, err = strconv.Atoi(s); err != nil {
			return service.ListQuery{}, model.ValidationError("page must be an integer, got %q", s)
		}
	}

	size := paging.DefaultPageSize
	if s := q.Get("pageSize"); s != "" {
		if size, err = strconv.Atoi(s); err != nil {
			return service.ListQuery{}, model.ValidationError("pageSize must be an integer, got %q", s)
		}
	}
	if paging.MaxPageSize > 0 && size > paging.MaxPageSize {
		size = paging.MaxPageSize
	}

	return service.ListQuery{Filters: filters, Page: page, PageSize: size}, nil
}

// parseFilters reads the filter dimensions. At most one of day, month and year may be set.
// A malformed month is kept and matches nothing; a malformed day or year is rejected.
func parseFilters(get func(string) string, allowPlanType bool) (report.Filters, error) {
	f := report.Filters{
		State:         strings.TrimSpace(get("state")),
		Status:        strings.TrimSpace(get("status")),
		PaymentStatus: strings.TrimSpace(get("paymentStatus")),
	}
	if allowPlanType {
		f.PlanType = strings.TrimSpace(get("planType"))
	}

	day, month, year := get("day"), get("month"), get("year")
	set := 0
	for _, v := range []string{day, month, year} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return report.Filters{}, model.ValidationError("only one of day, month or year may be set")
	}

	switch {
	case day != "":
		d, err := time.Parse("2006-01-02", day)
		if err != nil {
			return report.Filters{}, model.ValidationError("day must be in YYYY-MM-DD format, got %q", day)
		}
		f = f.WithDate(report.ByDay(d))
	case month != "":
		f = f.WithDate(report.ByMonth(month))
	case year != "":
		y, err := strconv.Atoi(year)
		if err != nil || len(year) != 4 {
			return report.Filters{}, model.ValidationError("year must be a four digit number, got %q", year)
		}
		f = f.WithDate(report.ByYear(y))
	}

	return f, nil
}
