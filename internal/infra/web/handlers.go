package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"applecare-activation/internal/domain/model"
	"applecare-activation/internal/infra/redis"
	"applecare-activation/internal/infra/spreadsheet"
	"applecare-activation/internal/usecase"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "applecare-activation",
	})
}

// ===== Auth =====

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
		return
	}
	user, err := s.authUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.Mint(user.ID)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token string      `json:"access_token"`
		Type  string      `json:"token_type"`
		User  *model.User `json:"user"`
	}{Token: token, Type: "bearer", User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.authUC.GetUser(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
		return
	}
	if err := s.authUC.ChangePassword(r.Context(), UserID(r.Context()), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ===== Plans =====

type planBody struct {
	Name        string `json:"name"`
	PartCode    string `json:"part_code"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	MRP         int64  `json:"mrp"`
}

// handlePlansList serves both surfaces: public=true returns only active
// plans for the intake form without a session, everything else is admin.
func (s *Server) handlePlansList(w http.ResponseWriter, r *http.Request) {
	public := r.URL.Query().Get("public") == "true"
	if !public {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}
	// Listings are active-only unless the admin asks for the full catalog.
	activeOnly := public || r.URL.Query().Get("active_only") != "false"
	plans, err := s.planUC.List(r.Context(), activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	var req planBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
		return
	}
	plan, err := s.planUC.Create(r.Context(), req.Name, req.PartCode, req.SKU, req.Description, req.MRP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handlePlanUpdate(w http.ResponseWriter, r *http.Request) {
	var req planBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
		return
	}
	plan, err := s.planUC.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.PartCode, req.SKU, req.Description, req.MRP)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePlanDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.planUC.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "plan deactivated"})
}

func (s *Server) handlePlanUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("file is required"))
		return
	}
	defer file.Close()

	if !spreadsheet.AllowedExtension(header.Filename) {
		writeJSON(w, http.StatusBadRequest, errBody("only .xls and .xlsx files are supported"))
		return
	}
	rows, err := spreadsheet.ParsePlans(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("could not read spreadsheet"))
		return
	}

	imports := make([]usecase.PlanImport, 0, len(rows))
	for _, row := range rows {
		imports = append(imports, usecase.PlanImport{
			Name:        row.Name,
			PartCode:    row.PartCode,
			SKU:         row.SKU,
			Description: row.Description,
			MRP:         row.MRP,
		})
	}
	n, err := s.planUC.Import(r.Context(), imports)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": n})
}

func (s *Server) handlePlanSample(w http.ResponseWriter, _ *http.Request) {
	buf, err := spreadsheet.SampleTemplate()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="plans_sample.xlsx"`)
	_, _ = w.Write(buf)
}

// ===== Activation requests =====

func (s *Server) handleRequestCreate(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), redis.SubmitKey(clientIP(r)), s.submitLimit, time.Minute)
		if err != nil {
			s.log.Error().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			writeJSON(w, http.StatusTooManyRequests, errBody("too many submissions, try again later"))
			return
		}
	}

	var in model.NewRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
		return
	}
	req, err := s.requestUC.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleRequestList(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.requestUC.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) handleRequestGet(w http.ResponseWriter, r *http.Request) {
	req, err := s.requestUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

type statusBody struct {
	Status string `json:"status"`
}

func (s *Server) handleRequestStatus(w http.ResponseWriter, r *http.Request) {
	// Status comes from the query string or the body, whichever the admin
	// console variant sends.
	status := r.URL.Query().Get("status")
	if status == "" {
		var req statusBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
			return
		}
		status = req.Status
	}
	if err := s.requestUC.SetStatus(r.Context(), chi.URLParam(r, "id"), status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

func (s *Server) handleRequestApprove(w http.ResponseWriter, r *http.Request) {
	if err := s.requestUC.Approve(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "request approved"})
}

func (s *Server) handleRequestDecline(w http.ResponseWriter, r *http.Request) {
	if err := s.requestUC.Decline(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "request declined"})
}

func (s *Server) handleRequestResend(w http.ResponseWriter, r *http.Request) {
	if err := s.requestUC.ResendEmail(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "email queued"})
}

func (s *Server) handleRequestInvoice(w http.ResponseWriter, r *http.Request) {
	req, err := s.requestUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if req.InvoicePath == "" {
		writeJSON(w, http.StatusNotFound, errBody("invoice not generated"))
		return
	}
	if _, err := os.Stat(req.InvoicePath); err != nil {
		writeJSON(w, http.StatusNotFound, errBody("invoice file missing"))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice_%s.pdf"`, req.ID))
	http.ServeFile(w, r, req.InvoicePath)
}

// handleInvoiceUpload accepts a manually prepared PDF and swaps it in for
// the generated invoice.
func (s *Server) handleInvoiceUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("file is required"))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeJSON(w, http.StatusBadRequest, errBody("only .pdf files are supported"))
		return
	}
	if _, err := s.requestUC.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.log.Error().Err(err).Msg("create upload dir failed")
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
		return
	}
	path := filepath.Join(s.uploadDir, fmt.Sprintf("invoice_%s.pdf", id))
	dst, err := os.Create(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("write uploaded invoice failed")
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
		return
	}
	_, copyErr := io.Copy(dst, file)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		s.log.Error().AnErr("copy", copyErr).AnErr("close", closeErr).Str("path", path).Msg("write uploaded invoice failed")
		writeJSON(w, http.StatusInternalServerError, errBody("internal error"))
		return
	}

	if err := s.requestUC.AttachInvoice(r.Context(), id, path); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "invoice uploaded"})
}

// ===== Settings =====

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsUC.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var u model.SettingsUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("invalid request body"))
		return
	}
	settings, err := s.settingsUC.Update(r.Context(), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// ===== Stats =====

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.statsUC.Counts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// clientIP prefers the first X-Forwarded-For hop; the service usually runs
// behind a reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i > 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
