package adoptions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Handlers del review dashboard. El browser habla con este BFF y el BFF
// habla con el backend de adopciones a través del Service; los errores
// normalizados del service se traducen acá a status HTTP.

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/admin/adoption-requests", func(ar chi.Router) {
		ar.Get("/", listHandler(svc))
		ar.Post("/", createHandler(svc))

		// Rutas fijas antes que {requestID} para que chi no las capture.
		ar.Get("/stats", statsHandler(svc))
		ar.Get("/follow-up", followUpHandler(svc))

		ar.Get("/{requestID}", getHandler(svc))
		ar.Patch("/{requestID}/status", updateStatusHandler(svc))
		ar.Post("/{requestID}/communication", addCommunicationHandler(svc))
		ar.Post("/{requestID}/withdraw", withdrawHandler(svc))
		ar.Get("/{requestID}/next-statuses", nextStatusesHandler(svc))
	})
}

// -------------------------
// Request / response shapes
// -------------------------

type addressRequest struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type createRequest struct {
	PetID          string         `json:"petId"`
	ApplicantName  string         `json:"applicantName"`
	ApplicantEmail string         `json:"applicantEmail"`
	ApplicantPhone string         `json:"applicantPhone"`
	Address        addressRequest `json:"address"`

	HousingType string `json:"housingType"`
	HasYard     bool   `json:"hasYard"`
	YardDetails string `json:"yardDetails"`
	HasPets     bool   `json:"hasPets"`
	CurrentPets string `json:"currentPets"`

	Reason               string `json:"reason"`
	PetExperience        string `json:"petExperience"`
	PreferredMeetingTime string `json:"preferredMeetingTime"` // RFC3339 opcional
}

type updateStatusRequest struct {
	// CurrentStatus lo manda la UI (ya tiene la solicitud cargada).
	// Si falta, el handler la busca antes de validar la transición.
	CurrentStatus   string `json:"currentStatus"`
	Status          string `json:"status"`
	AdminNotes      string `json:"adminNotes"`
	RejectionReason string `json:"rejectionReason"`
}

type communicationRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type withdrawRequest struct {
	Reason string `json:"reason"`
}

type errorResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Details   []FieldError `json:"details,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

type addressResponse struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type communicationResponse struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	At      time.Time `json:"createdAt"`
}

type requestResponse struct {
	ID    string `json:"id"`
	PetID string `json:"petId"`

	ApplicantName  string          `json:"applicantName"`
	ApplicantEmail string          `json:"applicantEmail"`
	ApplicantPhone string          `json:"applicantPhone"`
	Address        addressResponse `json:"address"`

	HousingType string `json:"housingType"`
	HasYard     bool   `json:"hasYard"`
	YardDetails string `json:"yardDetails,omitempty"`
	HasPets     bool   `json:"hasPets"`
	CurrentPets string `json:"currentPets,omitempty"`

	Reason               string     `json:"reason"`
	PetExperience        string     `json:"petExperience,omitempty"`
	PreferredMeetingTime *time.Time `json:"preferredMeetingTime,omitempty"`

	Status           string `json:"status"`
	AdminNotes       string `json:"adminNotes,omitempty"`
	RejectionReason  string `json:"rejectionReason,omitempty"`
	FollowUpRequired bool   `json:"followUpRequired"`

	Communications []communicationResponse `json:"communications,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type paginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type listResponse struct {
	Data       []requestResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

type nextStatusesResponse struct {
	Current string   `json:"current"`
	Next    []Status `json:"next"`
}

type statsResponse struct {
	PeriodDays         int     `json:"periodDays"`
	Total              int     `json:"total"`
	Pending            int     `json:"pending"`
	UnderReview        int     `json:"underReview"`
	InterviewScheduled int     `json:"interviewScheduled"`
	Approved           int     `json:"approved"`
	Rejected           int     `json:"rejected"`
	Completed          int     `json:"completed"`
	Withdrawn          int     `json:"withdrawn"`
	ApprovalRate       float64 `json:"approvalRate"`
}

// -------------------------
// Handlers
// -------------------------

func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		opts := ListOptions{
			Status:    Status(q.Get("status")),
			PetID:     q.Get("petId"),
			Search:    q.Get("search"),
			SortBy:    q.Get("sortBy"),
			SortOrder: q.Get("sortOrder"),
			Priority:  q.Get("priority"),
		}
		if v := q.Get("page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, newValidationCode(CodeInvalidPage, "page must be a number"))
				return
			}
			opts.Page = n
		}
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, newValidationCode(CodeInvalidLimit, "limit must be a number"))
				return
			}
			opts.Limit = n
		}
		if v := q.Get("followUpRequired"); v != "" {
			b := v == "true"
			opts.FollowUpRequired = &b
		}

		page, err := svc.List(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}

		out := listResponse{
			Data: make([]requestResponse, 0, len(page.Data)),
			Pagination: paginationResponse{
				Page:       page.Pagination.Page,
				Limit:      page.Pagination.Limit,
				Total:      page.Pagination.Total,
				TotalPages: page.Pagination.TotalPages,
			},
		}
		for _, ar := range page.Data {
			out.Data = append(out.Data, toRequestResponse(ar))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ar, err := svc.GetByID(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRequestResponse(ar))
	}
}

func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var meeting *time.Time
		if strings.TrimSpace(req.PreferredMeetingTime) != "" {
			t, err := time.Parse(time.RFC3339, req.PreferredMeetingTime)
			if err != nil {
				http.Error(w, "preferredMeetingTime must be RFC3339", http.StatusBadRequest)
				return
			}
			meeting = &t
		}

		ar, err := svc.Create(r.Context(), CreateInput{
			PetID:          req.PetID,
			ApplicantName:  req.ApplicantName,
			ApplicantEmail: req.ApplicantEmail,
			ApplicantPhone: req.ApplicantPhone,
			Address: Address{
				Street:  req.Address.Street,
				City:    req.Address.City,
				Region:  req.Address.Region,
				Zip:     req.Address.Zip,
				Country: req.Address.Country,
			},
			HousingType:          req.HousingType,
			HasYard:              req.HasYard,
			YardDetails:          req.YardDetails,
			HasPets:              req.HasPets,
			CurrentPets:          req.CurrentPets,
			Reason:               req.Reason,
			PetExperience:        req.PetExperience,
			PreferredMeetingTime: meeting,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRequestResponse(ar))
	}
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "requestID")

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		current := Status(strings.ToLower(strings.TrimSpace(req.CurrentStatus)))
		if current == "" {
			// La UI no mandó el estado actual: lo buscamos nosotros.
			ar, err := svc.GetByID(r.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			current = ar.Status
		}

		ar, err := svc.UpdateStatus(r.Context(), id, current, UpdateStatusInput{
			Status:          Status(req.Status),
			AdminNotes:      req.AdminNotes,
			RejectionReason: req.RejectionReason,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(ar))
	}
}

func addCommunicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req communicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ar, err := svc.AddCommunicationLog(r.Context(), chi.URLParam(r, "requestID"), CommunicationLogEntry{
			Type:    CommunicationType(req.Type),
			Message: req.Message,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRequestResponse(ar))
	}
}

func withdrawHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req withdrawRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ar, err := svc.Withdraw(r.Context(), chi.URLParam(r, "requestID"), req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRequestResponse(ar))
	}
}

func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := 0
		if v := r.URL.Query().Get("period"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, "period must be a number of days", http.StatusBadRequest)
				return
			}
			period = n
		}

		st, err := svc.GetStats(r.Context(), period)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statsResponse{
			PeriodDays:         st.PeriodDays,
			Total:              st.Total,
			Pending:            st.Pending,
			UnderReview:        st.UnderReview,
			InterviewScheduled: st.InterviewScheduled,
			Approved:           st.Approved,
			Rejected:           st.Rejected,
			Completed:          st.Completed,
			Withdrawn:          st.Withdrawn,
			ApprovalRate:       st.ApprovalRate,
		})
	}
}

func followUpHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListFollowUps(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]requestResponse, 0, len(items))
		for _, ar := range items {
			out = append(out, toRequestResponse(ar))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// nextStatusesHandler alimenta el menú de acciones del dashboard:
// devuelve las transiciones legales desde el estado actual de la solicitud.
func nextStatusesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ar, err := svc.GetByID(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, nextStatusesResponse{
			Current: string(ar.Status),
			Next:    svc.NextStatuses(ar.Status),
		})
	}
}

// -------------------------
// Helpers
// -------------------------

func toRequestResponse(ar AdoptionRequest) requestResponse {
	comms := make([]communicationResponse, 0, len(ar.Communications))
	for _, c := range ar.Communications {
		comms = append(comms, communicationResponse{
			Type:    string(c.Type),
			Message: c.Message,
			At:      c.At,
		})
	}

	return requestResponse{
		ID:    ar.ID,
		PetID: ar.PetID,

		ApplicantName:  ar.ApplicantName,
		ApplicantEmail: ar.ApplicantEmail,
		ApplicantPhone: ar.ApplicantPhone,
		Address: addressResponse{
			Street:  ar.Address.Street,
			City:    ar.Address.City,
			Region:  ar.Address.Region,
			Zip:     ar.Address.Zip,
			Country: ar.Address.Country,
		},

		HousingType: string(ar.HousingType),
		HasYard:     ar.HasYard,
		YardDetails: ar.YardDetails,
		HasPets:     ar.HasPets,
		CurrentPets: ar.CurrentPets,

		Reason:               ar.Reason,
		PetExperience:        ar.PetExperience,
		PreferredMeetingTime: ar.PreferredMeetingTime,

		Status:           string(ar.Status),
		AdminNotes:       ar.AdminNotes,
		RejectionReason:  ar.RejectionReason,
		FollowUpRequired: ar.FollowUpRequired,

		Communications: comms,

		CreatedAt: ar.CreatedAt,
		UpdatedAt: ar.UpdatedAt,
	}
}

// writeError traduce la taxonomía de errores a status HTTP del BFF.
// network/server upstream => 502: el problema no es de este proceso.
func writeError(w http.ResponseWriter, err error) {
	var e *Error
	if !errors.As(err, &e) {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case KindValidation:
		status = http.StatusBadRequest
	case KindAuth:
		status = http.StatusUnauthorized
	case KindPermission:
		status = http.StatusForbidden
	case KindNotFound:
		status = http.StatusNotFound
	case KindConflict:
		status = http.StatusConflict
	case KindRateLimit:
		status = http.StatusTooManyRequests
	case KindServer, KindNetwork:
		status = http.StatusBadGateway
	}

	if e.Kind == KindRateLimit && e.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(e.RetryAfter.Seconds())))
	}

	writeJSON(w, status, errorResponse{
		Code:      e.Code,
		Message:   e.Message,
		Details:   e.Details,
		RequestID: e.RequestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
