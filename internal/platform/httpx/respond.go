package httpx

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// FragmentHeader is set by the console script on requests that want panel
// fragments instead of a full page.
const FragmentHeader = "X-Console-Fragment"

// WantsFragment reports whether r asked for fragment mode.
func WantsFragment(r *http.Request) bool {
	return r.Header.Get(FragmentHeader) == "1"
}

// Fragment is the fragment-mode answer to an action.
type Fragment struct {
	Message  string                   `json:"message,omitempty"`
	Kind     string                   `json:"kind,omitempty"`
	Panels   map[string]template.HTML `json:"panels,omitempty"`
	Redirect string                   `json:"redirect,omitempty"`
}

// Redirect sends the browser to target: a 303 for plain requests, a 401
// JSON hint in fragment mode so the script can navigate itself.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if WantsFragment(r) {
		JSON(w, http.StatusUnauthorized, Fragment{Redirect: target})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
