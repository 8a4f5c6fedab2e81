package adoptions

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Validadores puros del formulario de adopción. Sin side effects:
// reciben el payload candidato y devuelven Violations (campo -> error).
// El service corta antes de la red si el mapa no viene vacío.

const (
	ReasonMinLen = 20
	ReasonMaxLen = 2000

	PetExperienceMaxLen = 1000

	RejectionReasonMinLen = 10
)

var (
	// Patrón simple a propósito: el backend valida en serio; esto es fail-fast de UI.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Sobre el teléfono YA normalizado (solo dígitos, con '+' inicial opcional).
	phonePattern = regexp.MustCompile(`^[+]?[1-9][0-9]{9,14}$`)

	nonDigits = regexp.MustCompile(`[^0-9]`)
)

var validHousingTypes = map[HousingType]struct{}{
	HousingHouse:      {},
	HousingApartment:  {},
	HousingCondo:      {},
	HousingTownhouse:  {},
	HousingMobileHome: {},
	HousingOther:      {},
}

var validCommunicationTypes = map[CommunicationType]struct{}{
	CommEmailSent:        {},
	CommPhoneCall:        {},
	CommMeetingScheduled: {},
	CommMeetingCompleted: {},
	CommNoteAdded:        {},
}

// NormalizeEmail baja a minúsculas y recorta espacios.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone deja solo dígitos, conservando un '+' inicial si lo había.
// "(555) 123-4567" => "5551234567"; "+54 11 5555-0000" => "+541155550000".
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	plus := strings.HasPrefix(s, "+")
	digits := nonDigits.ReplaceAllString(s, "")
	if plus {
		return "+" + digits
	}
	return digits
}

// ValidateCreate chequea el payload del formulario contra las reglas de negocio.
// now es el instante de validación (inyectado para tests del meeting time).
func ValidateCreate(in CreateInput, now time.Time) Violations {
	v := Violations{}

	required := []struct {
		field string
		value string
	}{
		{"petId", in.PetID},
		{"applicantName", in.ApplicantName},
		{"applicantEmail", in.ApplicantEmail},
		{"applicantPhone", in.ApplicantPhone},
		{"address.street", in.Address.Street},
		{"address.city", in.Address.City},
		{"address.region", in.Address.Region},
		{"address.zip", in.Address.Zip},
		{"housingType", in.HousingType},
		{"reason", in.Reason},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			v.add(f.field, CodeMissingRequiredFields, f.field+" is required")
		}
	}

	if _, bad := v["applicantEmail"]; !bad {
		if !emailPattern.MatchString(NormalizeEmail(in.ApplicantEmail)) {
			v.add("applicantEmail", CodeInvalidEmailFormat, "email format is invalid")
		}
	}

	if _, bad := v["applicantPhone"]; !bad {
		if !phonePattern.MatchString(NormalizePhone(in.ApplicantPhone)) {
			v.add("applicantPhone", CodeInvalidPhoneFormat, "phone must have 10 to 15 digits and not start with 0")
		}
	}

	if _, bad := v["housingType"]; !bad {
		ht := HousingType(strings.ToLower(strings.TrimSpace(in.HousingType)))
		if _, ok := validHousingTypes[ht]; !ok {
			v.add("housingType", CodeInvalidHousingType, "housing type is not recognized")
		}
	}

	if _, bad := v["reason"]; !bad {
		// Bounds inclusivos: 20 y 2000 caracteres son válidos.
		n := utf8.RuneCountInString(strings.TrimSpace(in.Reason))
		switch {
		case n < ReasonMinLen:
			v.add("reason", CodeReasonTooShort, "reason must be at least 20 characters")
		case n > ReasonMaxLen:
			v.add("reason", CodeReasonTooLong, "reason must be at most 2000 characters")
		}
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.PetExperience)) > PetExperienceMaxLen {
		v.add("petExperience", CodeReasonTooLong, "pet experience must be at most 1000 characters")
	}

	// Campos condicionales: la validación es sobre el PAR flag+detalle,
	// no sobre la mera presencia del texto.
	if in.HasYard && strings.TrimSpace(in.YardDetails) == "" {
		v.add("yardDetails", CodeMissingRequiredFields, "yard details are required when you have a yard")
	}
	if in.HasPets && strings.TrimSpace(in.CurrentPets) == "" {
		v.add("currentPets", CodeMissingRequiredFields, "current pets are required when you have pets")
	}

	if in.PreferredMeetingTime != nil && !in.PreferredMeetingTime.After(now) {
		v.add("preferredMeetingTime", CodeInvalidMeetingTime, "preferred meeting time must be in the future")
	}

	return v
}

// ValidateStatusUpdate chequea el PATCH de revisión antes de tocar la red.
// La legalidad de la transición (grafo) se chequea aparte en el service,
// porque necesita el status actual.
func ValidateStatusUpdate(in UpdateStatusInput) Violations {
	v := Violations{}

	target := Status(strings.TrimSpace(string(in.Status)))
	if target == "" {
		v.add("status", CodeMissingRequiredFields, "status is required")
		return v
	}
	if !IsValidStatus(target) {
		v.add("status", CodeInvalidStatus, "status is not recognized")
		return v
	}

	if target == StatusRejected {
		reason := strings.TrimSpace(in.RejectionReason)
		if utf8.RuneCountInString(reason) < RejectionReasonMinLen {
			v.add("rejectionReason", CodeMissingRejectionReason, "a rejection reason of at least 10 characters is required")
		}
	}

	return v
}

// ValidateCommunication chequea una entrada nueva del log (append-only).
func ValidateCommunication(e CommunicationLogEntry) Violations {
	v := Violations{}

	ct := CommunicationType(strings.ToLower(strings.TrimSpace(string(e.Type))))
	if _, ok := validCommunicationTypes[ct]; !ok {
		v.add("type", CodeInvalidCommunication, "communication type is not recognized")
	}
	if strings.TrimSpace(e.Message) == "" {
		v.add("message", CodeMissingRequiredFields, "message is required")
	}

	return v
}

// normalizeCreate devuelve la copia normalizada que viaja al backend:
// email lower/trim, teléfono solo dígitos, housing en minúsculas,
// textos recortados y país defaulteado.
func normalizeCreate(in CreateInput) CreateInput {
	out := in
	out.PetID = strings.TrimSpace(in.PetID)
	out.ApplicantName = strings.TrimSpace(in.ApplicantName)
	out.ApplicantEmail = NormalizeEmail(in.ApplicantEmail)
	out.ApplicantPhone = NormalizePhone(in.ApplicantPhone)
	out.HousingType = strings.ToLower(strings.TrimSpace(in.HousingType))
	out.Reason = strings.TrimSpace(in.Reason)
	out.PetExperience = strings.TrimSpace(in.PetExperience)
	out.YardDetails = strings.TrimSpace(in.YardDetails)
	out.CurrentPets = strings.TrimSpace(in.CurrentPets)

	out.Address.Street = strings.TrimSpace(in.Address.Street)
	out.Address.City = strings.TrimSpace(in.Address.City)
	out.Address.Region = strings.TrimSpace(in.Address.Region)
	out.Address.Zip = strings.TrimSpace(in.Address.Zip)
	out.Address.Country = strings.TrimSpace(in.Address.Country)
	if out.Address.Country == "" {
		out.Address.Country = DefaultCountry
	}

	return out
}
