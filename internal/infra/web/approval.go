package web

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"applecare-activation/internal/domain"
	"applecare-activation/internal/usecase"
)

var approvalPage = template.Must(template.New("approval").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>Activation Request {{if .OK}}{{.Title}}{{else}}Error{{end}}</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:2rem;}
.card{max-width:560px;border:1px solid #ddd;border-radius:12px;padding:24px;}
.ok{color:#057a55} .fail{color:#b00020}
.small{font-size:12px;color:#666}
</style>
</head>
<body>
<div class="card">
  <h2 class="{{if .OK}}ok{{else}}fail{{end}}">{{if .OK}}&#9989;{{else}}&#9888;&#65039;{{end}} {{.Title}}</h2>
  <p>{{.Msg}}</p>
  <div class="small">You can close this tab.</div>
</div>
</body>
</html>`))

// handleApprovalLink serves the approve/decline links sent by email. The
// token gates the action; the response is a plain HTML page because it is
// opened in a browser, not by the console.
func (s *Server) handleApprovalLink(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		token := r.URL.Query().Get("token")

		if !s.requestUC.VerifyApprovalToken(id, action, token) {
			s.renderApproval(w, http.StatusBadRequest, false, "Invalid Link",
				"This approval link is invalid or has been tampered with.")
			return
		}

		var err error
		if action == usecase.ActionApprove {
			err = s.requestUC.Approve(r.Context(), id)
		} else {
			err = s.requestUC.Decline(r.Context(), id)
		}
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNotAwaitingReview):
			s.renderApproval(w, http.StatusBadRequest, false, "Already Processed",
				"This request has already been reviewed.")
			return
		case errors.Is(err, domain.ErrNotFound):
			s.renderApproval(w, http.StatusNotFound, false, "Not Found",
				"This activation request no longer exists.")
			return
		default:
			s.log.Error().Err(err).Str("request_id", id).Str("action", action).Msg("approval link failed")
			s.renderApproval(w, http.StatusInternalServerError, false, "Error",
				"Something went wrong while processing the request.")
			return
		}

		if action == usecase.ActionApprove {
			s.renderApproval(w, http.StatusOK, true, "Request Approved",
				"The activation request was approved. The support ticket and activation email are being sent.")
		} else {
			s.renderApproval(w, http.StatusOK, true, "Request Declined",
				"The activation request was declined. No further action will be taken.")
		}
	}
}

func (s *Server) renderApproval(w http.ResponseWriter, code int, ok bool, title, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_ = approvalPage.Execute(w, struct {
		OK    bool
		Title string
		Msg   string
	}{OK: ok, Title: title, Msg: msg})
}
