package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"readyroom/core/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorTag(w http.ResponseWriter, status int, tag string) {
	writeJSON(w, status, map[string]string{"error": tag})
}

func writeNotFound(w http.ResponseWriter) {
	writeErrorTag(w, http.StatusNotFound, "not_found")
}

func writeServerError(w http.ResponseWriter) {
	writeErrorTag(w, http.StatusInternalServerError, "server_error")
}

// validationDetails mirrors the wire shape clients already consume:
// form-level messages plus per-field message lists.
type validationDetails struct {
	FormErrors  []string            `json:"formErrors"`
	FieldErrors map[string][]string `json:"fieldErrors"`
}

func newValidationDetails() *validationDetails {
	return &validationDetails{FormErrors: []string{}, FieldErrors: map[string][]string{}}
}

func (d *validationDetails) addField(field, msg string) {
	d.FieldErrors[field] = append(d.FieldErrors[field], msg)
}

func (d *validationDetails) addForm(msg string) {
	d.FormErrors = append(d.FormErrors, msg)
}

func (d *validationDetails) empty() bool {
	return len(d.FormErrors) == 0 && len(d.FieldErrors) == 0
}

func writeValidation(w http.ResponseWriter, details *validationDetails) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "validation",
		"details": details,
	})
}

const maxBodyBytes = 64 * 1024

// decodeBody parses the JSON request body into dst. A malformed body
// is a validation failure, not a server error.
func decodeBody(r *http.Request, dst any) *validationDetails {
	details := newValidationDetails()
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr) && typeErr.Field != "":
			details.addField(typeErr.Field, "invalid type")
		case errors.Is(err, io.EOF):
			details.addForm("request body is required")
		default:
			details.addForm("invalid JSON body")
		}
	}
	return details
}

// currentIdentity fetches the identity attached by the access
// middleware; its absence means the route was wired without the gate.
func currentIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok || id == nil {
		writeErrorTag(w, http.StatusUnauthorized, "missing_token")
		return nil, false
	}
	return id, true
}
