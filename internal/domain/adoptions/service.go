package adoptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-admin/internal/notify"
)

// Service orquesta el ciclo de vida de solicitudes contra el backend:
// valida primero (fail fast, sin red), normaliza, llama al puerto API
// y garantiza que todo error que sale es un *Error de la taxonomía.
type Service struct {
	api    API
	events *notify.Bus
	now    func() time.Time
}

func NewService(api API, events *notify.Bus) *Service {
	return &Service{
		api:    api,
		events: events,
		now:    time.Now,
	}
}

// List trae una página del listado admin. Page/Limit fuera de rango
// fallan antes de cualquier llamada de red.
func (s *Service) List(ctx context.Context, opts ListOptions) (Page, error) {
	if opts.Page == 0 {
		opts.Page = DefaultPage
	}
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}

	if opts.Page < 1 || opts.Page > MaxPage {
		return Page{}, newValidationCode(CodeInvalidPage, "page must be between 1 and 1000")
	}
	if opts.Limit < 1 || opts.Limit > MaxLimit {
		return Page{}, newValidationCode(CodeInvalidLimit, "limit must be between 1 and 100")
	}

	if opts.Status != "" {
		opts.Status = Status(strings.ToLower(strings.TrimSpace(string(opts.Status))))
		if !IsValidStatus(opts.Status) {
			return Page{}, newValidationCode(CodeInvalidStatus, "status filter is not recognized")
		}
	}

	page, err := s.api.List(ctx, opts)
	if err != nil {
		return Page{}, normalizeErr(err)
	}

	// Defaults de metadata cuando el backend no la manda completa.
	if page.Pagination.Page == 0 {
		page.Pagination.Page = opts.Page
	}
	if page.Pagination.Limit == 0 {
		page.Pagination.Limit = opts.Limit
	}
	if page.Pagination.Total == 0 {
		page.Pagination.Total = len(page.Data)
	}
	if page.Pagination.TotalPages == 0 && page.Pagination.Limit > 0 {
		page.Pagination.TotalPages = (page.Pagination.Total + page.Pagination.Limit - 1) / page.Pagination.Limit
		if page.Pagination.TotalPages == 0 {
			page.Pagination.TotalPages = 1
		}
	}
	if page.Data == nil {
		page.Data = []AdoptionRequest{}
	}

	return page, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AdoptionRequest{}, newValidationCode(CodeMissingRequiredFields, "id is required")
	}

	ar, err := s.api.GetByID(ctx, id)
	if err != nil {
		return AdoptionRequest{}, normalizeErr(err)
	}
	return ar, nil
}

// Create valida, normaliza y postea una solicitud nueva.
// En éxito emite adoption_request.created para los listeners de UI.
func (s *Service) Create(ctx context.Context, in CreateInput) (AdoptionRequest, error) {
	if v := ValidateCreate(in, s.now()); len(v) > 0 {
		return AdoptionRequest{}, NewValidationError(v)
	}

	payload := CreatePayload{
		CreateInput: normalizeCreate(in),
		SubmittedAt: s.now(),
	}

	ar, err := s.api.Create(ctx, payload)
	if err != nil {
		nerr := normalizeErr(err)
		if nerr.Kind == KindConflict {
			// Mensaje específico de aplicación duplicada para el formulario.
			nerr.Code = CodeDuplicateApplication
			nerr.Message = "you already have an active adoption request for this pet"
		}
		return AdoptionRequest{}, nerr
	}

	s.events.Publish(notify.Event{
		Name: notify.EventRequestCreated,
		At:   s.now(),
		Payload: map[string]string{
			"id":    ar.ID,
			"petId": ar.PetID,
		},
	})

	return ar, nil
}

// UpdateStatus aplica una transición de revisión. current es el status
// actual conocido por el caller (la UI lo tiene cargado); así una
// transición ilegal no genera NINGUNA llamada de red. El backend sigue
// siendo la autoridad final sobre el grafo.
func (s *Service) UpdateStatus(ctx context.Context, id string, current Status, in UpdateStatusInput) (AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AdoptionRequest{}, newValidationCode(CodeMissingRequiredFields, "id is required")
	}

	if v := ValidateStatusUpdate(in); len(v) > 0 {
		return AdoptionRequest{}, NewValidationError(v)
	}

	in.Status = Status(strings.ToLower(strings.TrimSpace(string(in.Status))))

	if !CanTransition(current, in.Status) {
		return AdoptionRequest{}, newValidationCode(CodeInvalidStatus,
			"cannot move request from "+string(current)+" to "+string(in.Status))
	}

	ar, err := s.api.UpdateStatus(ctx, id, in)
	if err != nil {
		return AdoptionRequest{}, normalizeErr(err)
	}
	return ar, nil
}

// AddCommunicationLog agrega una entrada al log (append-only).
func (s *Service) AddCommunicationLog(ctx context.Context, id string, entry CommunicationLogEntry) (AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AdoptionRequest{}, newValidationCode(CodeMissingRequiredFields, "id is required")
	}

	if v := ValidateCommunication(entry); len(v) > 0 {
		return AdoptionRequest{}, NewValidationError(v)
	}

	entry.Type = CommunicationType(strings.ToLower(strings.TrimSpace(string(entry.Type))))
	entry.Message = strings.TrimSpace(entry.Message)
	if entry.At.IsZero() {
		entry.At = s.now()
	}

	ar, err := s.api.AddCommunication(ctx, id, entry)
	if err != nil {
		return AdoptionRequest{}, normalizeErr(err)
	}
	return ar, nil
}

// GetStats trae agregados para el dashboard. periodDays <= 0 => 30.
func (s *Service) GetStats(ctx context.Context, periodDays int) (Stats, error) {
	if periodDays <= 0 {
		periodDays = 30
	}
	if periodDays > 365 {
		periodDays = 365
	}

	st, err := s.api.Stats(ctx, periodDays)
	if err != nil {
		return Stats{}, normalizeErr(err)
	}
	if st.PeriodDays == 0 {
		st.PeriodDays = periodDays
	}
	return st, nil
}

// ListFollowUps trae las solicitudes marcadas para seguimiento.
func (s *Service) ListFollowUps(ctx context.Context) ([]AdoptionRequest, error) {
	items, err := s.api.ListFollowUps(ctx)
	if err != nil {
		return nil, normalizeErr(err)
	}
	if items == nil {
		items = []AdoptionRequest{}
	}
	return items, nil
}

// Withdraw retira la solicitud a pedido del aplicante. Solo es legal
// desde pending / under_review / interview_scheduled; el retiro salta
// el grafo de revisión admin y va directo a withdrawn.
func (s *Service) Withdraw(ctx context.Context, id, reason string) (AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	reason = strings.TrimSpace(reason)

	if id == "" {
		return AdoptionRequest{}, newValidationCode(CodeMissingRequiredFields, "id is required")
	}
	if reason == "" {
		return AdoptionRequest{}, newValidationCode(CodeMissingRequiredFields, "a withdrawal reason is required")
	}

	current, err := s.api.GetByID(ctx, id)
	if err != nil {
		return AdoptionRequest{}, normalizeErr(err)
	}

	if !CanWithdraw(current.Status) {
		return AdoptionRequest{}, newValidationCode(CodeInvalidStatus,
			"cannot withdraw a request in status "+string(current.Status))
	}

	ar, err := s.api.UpdateStatus(ctx, id, UpdateStatusInput{
		Status:           StatusWithdrawn,
		WithdrawalReason: reason,
	})
	if err != nil {
		return AdoptionRequest{}, normalizeErr(err)
	}
	return ar, nil
}

// NextStatuses expone la política de workflow para que el dashboard
// arme sus menús de acción. Pura, sin red.
func (s *Service) NextStatuses(current Status) []Status {
	return NextStatuses(current)
}

// normalizeErr garantiza el invariante del boundary: todo error que
// sale del service es *Error. Lo que no venga ya tipado del adapter
// (no debería pasar) se clasifica como falla de red.
func normalizeErr(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newNetworkError(err.Error(), "")
}
