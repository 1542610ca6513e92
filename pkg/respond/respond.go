// Package respond writes JSON API responses.
package respond

import (
	"encoding/json"
	"net/http"
	"reflect"
)

// JSON writes data with the given status. A nil slice is written as [] so
// list endpoints never answer null.
func JSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	if v := reflect.ValueOf(data); v.Kind() == reflect.Slice && v.IsNil() {
		data = []struct{}{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// Created writes 201 with a Location header pointing at the new resource.
func Created(w http.ResponseWriter, r *http.Request, location string, data any) {
	w.Header().Set("Location", location)
	JSON(w, r, http.StatusCreated, data)
}

func NoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}
