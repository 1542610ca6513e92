package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasky/internal/model"
	"github.com/BuzzLyutic/tasky/internal/service"
	"github.com/BuzzLyutic/tasky/pkg/respond"
)

type NoteHandler struct {
	base
	service *service.NoteService
}

func NewNoteHandler(srv *service.NoteService, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{base: base{logger: logger}, service: srv}
}

type noteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Important bool   `json:"isImportant"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !h.decode(w, r, &req) {
		return
	}

	note, err := h.service.Create(r.Context(), model.Note{
		Title:     req.Title,
		Content:   req.Content,
		Important: req.Important,
	})
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	notes, err := h.service.List(r.Context(), model.NoteFilter{Date: date})
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, notes)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.NotePatch
	if !h.decode(w, r, &req) {
		return
	}

	note, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w, r)
}
