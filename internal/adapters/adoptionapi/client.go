package adoptionapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pet-adoption-admin/internal/domain/adoptions"
	"pet-adoption-admin/internal/platform/httpclient"
)

const basePath = "/admin/adoption-requests"

// Client implementa adoptions.API contra el backend REST.
// Toda la resiliencia (retry, refresh, correlation id) vive en el
// wrapper; acá solo se arma el wire format y se mapean errores.
type Client struct {
	http *httpclient.Client
}

func NewClient(h *httpclient.Client) *Client {
	return &Client{http: h}
}

// -------------------------
// Wire format (camelCase, como lo habla el backend)
// -------------------------

type addressWire struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Zip     string `json:"zip"`
	Country string `json:"country,omitempty"`
}

type communicationWire struct {
	Type    string    `json:"type"`
	Message string    `json:"message"`
	At      time.Time `json:"createdAt"`
}

type requestWire struct {
	ID    string `json:"id"`
	PetID string `json:"petId"`

	ApplicantName  string      `json:"applicantName"`
	ApplicantEmail string      `json:"applicantEmail"`
	ApplicantPhone string      `json:"applicantPhone"`
	Address        addressWire `json:"address"`

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
	FollowUpRequired bool   `json:"followUpRequired,omitempty"`

	Communications []communicationWire `json:"communications,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type createWire struct {
	PetID          string      `json:"petId"`
	ApplicantName  string      `json:"applicantName"`
	ApplicantEmail string      `json:"applicantEmail"`
	ApplicantPhone string      `json:"applicantPhone"`
	Address        addressWire `json:"address"`

	HousingType string `json:"housingType"`
	HasYard     bool   `json:"hasYard"`
	YardDetails string `json:"yardDetails,omitempty"`
	HasPets     bool   `json:"hasPets"`
	CurrentPets string `json:"currentPets,omitempty"`

	Reason               string     `json:"reason"`
	PetExperience        string     `json:"petExperience,omitempty"`
	PreferredMeetingTime *time.Time `json:"preferredMeetingTime,omitempty"`

	SubmittedAt time.Time `json:"submittedAt"`
}

type updateStatusWire struct {
	Status           string `json:"status"`
	AdminNotes       string `json:"adminNotes,omitempty"`
	RejectionReason  string `json:"rejectionReason,omitempty"`
	WithdrawalReason string `json:"withdrawalReason,omitempty"`
}

type paginationWire struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// El backend envuelve todo en {"data": ...}; el listado agrega "pagination".
type listEnvelope struct {
	Data       []requestWire   `json:"data"`
	Pagination *paginationWire `json:"pagination"`
}

type itemEnvelope struct {
	Data requestWire `json:"data"`
}

type statsWire struct {
	PeriodDays int `json:"periodDays"`

	Total              int `json:"total"`
	Pending            int `json:"pending"`
	UnderReview        int `json:"underReview"`
	InterviewScheduled int `json:"interviewScheduled"`
	Approved           int `json:"approved"`
	Rejected           int `json:"rejected"`
	Completed          int `json:"completed"`
	Withdrawn          int `json:"withdrawn"`

	ApprovalRate float64 `json:"approvalRate"`
}

type statsEnvelope struct {
	Data statsWire `json:"data"`
}

// errorBody es el shape de error del backend. Campos opcionales:
// si faltan, FromStatus pone defaults por categoría.
type errorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details []adoptions.FieldError `json:"details"`
}

// -------------------------
// Operaciones
// -------------------------

func (c *Client) List(ctx context.Context, opts adoptions.ListOptions) (adoptions.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("limit", strconv.Itoa(opts.Limit))
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.PetID != "" {
		q.Set("petId", opts.PetID)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.SortBy != "" {
		q.Set("sortBy", opts.SortBy)
	}
	if opts.SortOrder != "" {
		q.Set("sortOrder", opts.SortOrder)
	}
	if opts.Priority != "" {
		q.Set("priority", opts.Priority)
	}
	if opts.FollowUpRequired != nil {
		q.Set("followUpRequired", strconv.FormatBool(*opts.FollowUpRequired))
	}

	var out listEnvelope
	err := c.http.DoJSON(ctx, http.MethodGet, basePath+"?"+q.Encode(), nil, nil, &out)
	if err != nil {
		return adoptions.Page{}, mapError("list adoption requests", err)
	}

	page := adoptions.Page{Data: make([]adoptions.AdoptionRequest, 0, len(out.Data))}
	for _, w := range out.Data {
		page.Data = append(page.Data, toDomain(w))
	}
	if out.Pagination != nil {
		page.Pagination = adoptions.Pagination{
			Page:       out.Pagination.Page,
			Limit:      out.Pagination.Limit,
			Total:      out.Pagination.Total,
			TotalPages: out.Pagination.TotalPages,
		}
	}
	return page, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (adoptions.AdoptionRequest, error) {
	var out itemEnvelope
	err := c.http.DoJSON(ctx, http.MethodGet, basePath+"/"+url.PathEscape(id), nil, nil, &out)
	if err != nil {
		return adoptions.AdoptionRequest{}, mapError("get adoption request", err)
	}
	return toDomain(out.Data), nil
}

func (c *Client) Create(ctx context.Context, payload adoptions.CreatePayload) (adoptions.AdoptionRequest, error) {
	in := createWire{
		PetID:          payload.PetID,
		ApplicantName:  payload.ApplicantName,
		ApplicantEmail: payload.ApplicantEmail,
		ApplicantPhone: payload.ApplicantPhone,
		Address: addressWire{
			Street:  payload.Address.Street,
			City:    payload.Address.City,
			Region:  payload.Address.Region,
			Zip:     payload.Address.Zip,
			Country: payload.Address.Country,
		},
		HousingType:          payload.HousingType,
		HasYard:              payload.HasYard,
		YardDetails:          payload.YardDetails,
		HasPets:              payload.HasPets,
		CurrentPets:          payload.CurrentPets,
		Reason:               payload.Reason,
		PetExperience:        payload.PetExperience,
		PreferredMeetingTime: payload.PreferredMeetingTime,
		SubmittedAt:          payload.SubmittedAt,
	}

	var out itemEnvelope
	err := c.http.DoJSON(ctx, http.MethodPost, basePath, nil, in, &out)
	if err != nil {
		return adoptions.AdoptionRequest{}, mapError("create adoption request", err)
	}
	return toDomain(out.Data), nil
}

func (c *Client) UpdateStatus(ctx context.Context, id string, in adoptions.UpdateStatusInput) (adoptions.AdoptionRequest, error) {
	body := updateStatusWire{
		Status:           string(in.Status),
		AdminNotes:       in.AdminNotes,
		RejectionReason:  in.RejectionReason,
		WithdrawalReason: in.WithdrawalReason,
	}

	var out itemEnvelope
	err := c.http.DoJSON(ctx, http.MethodPatch, basePath+"/"+url.PathEscape(id), nil, body, &out)
	if err != nil {
		return adoptions.AdoptionRequest{}, mapError("update adoption request status", err)
	}
	return toDomain(out.Data), nil
}

func (c *Client) AddCommunication(ctx context.Context, id string, entry adoptions.CommunicationLogEntry) (adoptions.AdoptionRequest, error) {
	body := communicationWire{
		Type:    string(entry.Type),
		Message: entry.Message,
		At:      entry.At,
	}

	var out itemEnvelope
	err := c.http.DoJSON(ctx, http.MethodPost, basePath+"/"+url.PathEscape(id)+"/communication", nil, body, &out)
	if err != nil {
		return adoptions.AdoptionRequest{}, mapError("add communication log", err)
	}
	return toDomain(out.Data), nil
}

func (c *Client) Stats(ctx context.Context, periodDays int) (adoptions.Stats, error) {
	var out statsEnvelope
	err := c.http.DoJSON(ctx, http.MethodGet, basePath+"/stats?period="+strconv.Itoa(periodDays), nil, nil, &out)
	if err != nil {
		return adoptions.Stats{}, mapError("get adoption stats", err)
	}

	w := out.Data
	return adoptions.Stats{
		PeriodDays:         w.PeriodDays,
		Total:              w.Total,
		Pending:            w.Pending,
		UnderReview:        w.UnderReview,
		InterviewScheduled: w.InterviewScheduled,
		Approved:           w.Approved,
		Rejected:           w.Rejected,
		Completed:          w.Completed,
		Withdrawn:          w.Withdrawn,
		ApprovalRate:       w.ApprovalRate,
	}, nil
}

func (c *Client) ListFollowUps(ctx context.Context) ([]adoptions.AdoptionRequest, error) {
	var out listEnvelope
	err := c.http.DoJSON(ctx, http.MethodGet, basePath+"/follow-up", nil, nil, &out)
	if err != nil {
		return nil, mapError("list follow-ups", err)
	}

	items := make([]adoptions.AdoptionRequest, 0, len(out.Data))
	for _, w := range out.Data {
		items = append(items, toDomain(w))
	}
	return items, nil
}

// -------------------------
// Mapping
// -------------------------

func toDomain(w requestWire) adoptions.AdoptionRequest {
	comms := make([]adoptions.CommunicationLogEntry, 0, len(w.Communications))
	for _, c := range w.Communications {
		comms = append(comms, adoptions.CommunicationLogEntry{
			Type:    adoptions.CommunicationType(c.Type),
			Message: c.Message,
			At:      c.At,
		})
	}

	return adoptions.AdoptionRequest{
		ID:    w.ID,
		PetID: w.PetID,

		ApplicantName:  w.ApplicantName,
		ApplicantEmail: w.ApplicantEmail,
		ApplicantPhone: w.ApplicantPhone,
		Address: adoptions.Address{
			Street:  w.Address.Street,
			City:    w.Address.City,
			Region:  w.Address.Region,
			Zip:     w.Address.Zip,
			Country: w.Address.Country,
		},

		HousingType: adoptions.HousingType(w.HousingType),
		HasYard:     w.HasYard,
		YardDetails: w.YardDetails,
		HasPets:     w.HasPets,
		CurrentPets: w.CurrentPets,

		Reason:               w.Reason,
		PetExperience:        w.PetExperience,
		PreferredMeetingTime: w.PreferredMeetingTime,

		Status:           adoptions.Status(w.Status),
		AdminNotes:       w.AdminNotes,
		RejectionReason:  w.RejectionReason,
		FollowUpRequired: w.FollowUpRequired,

		Communications: comms,

		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// mapError normaliza lo que venga del wrapper a *adoptions.Error.
// *HTTPError => variante por status (parseando el body del backend si
// es JSON); cualquier otra cosa => falla de red (no hubo respuesta).
func mapError(op string, err error) error {
	var herr *httpclient.HTTPError
	if errors.As(err, &herr) {
		var body errorBody
		_ = json.Unmarshal([]byte(herr.Body), &body)
		return adoptions.FromStatus(herr.StatusCode, body.Code, body.Message, herr.RequestID, body.Details, herr.RetryAfter)
	}

	// Falla de red: no hubo respuesta. StatusCode 0 por contrato.
	return &adoptions.Error{
		Kind:    adoptions.KindNetwork,
		Code:    adoptions.CodeNetworkError,
		Message: fmt.Sprintf("%s: could not reach the adoption service (%v)", op, err),
	}
}
