package util

import (
	"fmt"
	"net/http"
)

func WriteSuccess(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func WriteError(w http.ResponseWriter, msg string) {
	WriteErrorCode(w, http.StatusInternalServerError, msg)
}

func WriteErrorf(w http.ResponseWriter, msg string, args ...interface{}) {
	WriteErrorCode(w, http.StatusInternalServerError, fmt.Sprintf(msg, args...))
}

func WriteErrorCode(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(msg))
}
