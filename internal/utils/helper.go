package utils

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

var nonDigitRegex = regexp.MustCompile(`[^0-9]+`)

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NilIfEmpty turns "" into nil so optional columns are stored as NULL.
func NilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"error": message})
}

// NormalizePhoneRU converts a Russian phone number into the digits-only
// international form (7XXXXXXXXXX). Unknown formats are returned as digits.
func NormalizePhoneRU(phone string) string {
	digits := nonDigitRegex.ReplaceAllString(phone, "")

	switch {
	case len(digits) == 11 && digits[0] == '8':
		return "7" + digits[1:]
	case len(digits) == 10 && digits[0] == '9':
		return "7" + digits
	}
	return digits
}
