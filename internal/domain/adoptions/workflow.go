package adoptions

// Grafo de transiciones legales del workflow de revisión.
// pending es el único estado inicial (lo asigna el backend al crear).
// completed y withdrawn son terminales.
//
// Esto es una política ADVISORY del cliente: sirve para deshabilitar
// acciones en la UI y cortar requests obviamente ilegales; la autoridad
// final sobre transiciones es siempre el backend.
var transitions = map[Status][]Status{
	StatusPending:            {StatusUnderReview, StatusApproved, StatusRejected},
	StatusUnderReview:        {StatusInterviewScheduled, StatusApproved, StatusRejected},
	StatusInterviewScheduled: {StatusApproved, StatusRejected},
	StatusApproved:           {StatusCompleted},
	StatusRejected:           {StatusUnderReview, StatusPending}, // re-review permitido
	StatusCompleted:          {},
	StatusWithdrawn:          {},
}

// Estados desde los cuales el solicitante puede retirar su aplicación.
// El retiro no es parte del grafo de revisión admin: es una acción del
// aplicante que salta directo a withdrawn.
var withdrawableFrom = map[Status]struct{}{
	StatusPending:            {},
	StatusUnderReview:        {},
	StatusInterviewScheduled: {},
}

// IsValidStatus indica si el valor pertenece al set cerrado de estados.
func IsValidStatus(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// NextStatuses devuelve el set de estados legales siguientes.
// Set vacío => ninguna transición permitida (la UI deshabilita la acción).
// Función pura: siempre devuelve una copia, nunca el slice interno.
func NextStatuses(s Status) []Status {
	next, ok := transitions[s]
	if !ok {
		return []Status{}
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition indica si from -> to es una arista legal del grafo.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal indica si el estado no tiene transiciones salientes.
func IsTerminal(s Status) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanWithdraw indica si el aplicante puede retirar la solicitud desde s.
func CanWithdraw(s Status) bool {
	_, ok := withdrawableFrom[s]
	return ok
}
