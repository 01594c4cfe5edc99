package videogen

import (
	"errors"
	"net/http"

	"github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"
	"github.com/lefilcompany/creator-leap-studio-sub000/internal/providers/veo"
)

// ClassifiedError is an asynchronous failure carrying the machine
// classification that drives the compensation decision.
type ClassifiedError struct {
	Class   domain.ErrorClass
	Message string
}

func (e *ClassifiedError) Error() string {
	return string(e.Class) + ": " + e.Message
}

func classified(class domain.ErrorClass, message string) *ClassifiedError {
	return &ClassifiedError{Class: class, Message: message}
}

// classifySubmitError maps a submission failure onto the error taxonomy.
// Anything that never reached the provider's accept path counts as transient
// server trouble, which keeps it refundable.
func classifySubmitError(err error) *ClassifiedError {
	var provErr *veo.Error
	if errors.As(err, &provErr) {
		switch {
		case provErr.StatusCode == http.StatusTooManyRequests:
			return classified(domain.ClassRateLimited, provErr.Message)
		case provErr.StatusCode >= http.StatusInternalServerError:
			return classified(domain.ClassProviderServerError, provErr.Message)
		case provErr.StatusCode >= http.StatusBadRequest:
			return classified(domain.ClassProviderRejected, provErr.Message)
		}
	}
	return classified(domain.ClassProviderServerError, err.Error())
}
