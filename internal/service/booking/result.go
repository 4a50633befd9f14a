package booking

import "github.com/Domenick1991/skyline/internal/domain"

// Result is the outcome of a booking operation. Validation problems go to
// FieldErrors, business rule failures to GlobalError.
type Result struct {
	FieldErrors map[string]string   `json:"field_errors,omitempty"`
	GlobalError string              `json:"global_error,omitempty"`
	Reservation *domain.Reservation `json:"reservation,omitempty"`
	Ticket      *domain.Ticket      `json:"ticket,omitempty"`
}

func (r Result) Success() bool {
	return len(r.FieldErrors) == 0 && r.GlobalError == ""
}

func (r *Result) addError(field, message string) {
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string]string)
	}
	r.FieldErrors[field] = message
}

func globalError(message string) Result {
	return Result{GlobalError: message}
}
