package adoptions

import "context"

// API es el puerto hacia el backend REST de adopciones.
// Lo implementa adapters/adoptionapi sobre el http wrapper con retry.
// Los errores que devuelve ya vienen normalizados a *Error.
type API interface {
	List(ctx context.Context, opts ListOptions) (Page, error)
	GetByID(ctx context.Context, id string) (AdoptionRequest, error)
	Create(ctx context.Context, payload CreatePayload) (AdoptionRequest, error)
	UpdateStatus(ctx context.Context, id string, in UpdateStatusInput) (AdoptionRequest, error)
	AddCommunication(ctx context.Context, id string, entry CommunicationLogEntry) (AdoptionRequest, error)
	Stats(ctx context.Context, periodDays int) (Stats, error)
	ListFollowUps(ctx context.Context) ([]AdoptionRequest, error)
}
