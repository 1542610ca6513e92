package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasky/internal/service"
	"github.com/BuzzLyutic/tasky/pkg/respond"
)

type CalendarHandler struct {
	base
	service *service.CalendarService
}

func NewCalendarHandler(srv *service.CalendarService, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{base: base{logger: logger}, service: srv}
}

// Month answers GET /api/calendar?year=2025&month=3 (month is 1-12).
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	if errY != nil || errM != nil {
		h.handleErrors(w, r, fmt.Errorf("%w: year and month are required", service.ErrValidation))
		return
	}

	days, err := h.service.Month(r.Context(), year, month)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, days)
}
