package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"thrive-chatbot/pkg"
)

var validate = validator.New()

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerForm struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type resetForm struct {
	Email string `validate:"required,email"`
}

type chatForm struct {
	Message string `validate:"required"`
}

const (
	msgRequired       = "Please fill in all required fields."
	msgPasswordsMatch = "Passwords do not match."
	msgInvalidEmail   = "Please enter a valid email address."
)

// validateForm checks v's struct tags and returns a pkg.ErrValidation
// carrying a message fit for the page.  Missing fields win over other
// problems so the user fixes the form top-down.
func validateForm(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", pkg.ErrValidation, err)
	}
	msg := ""
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%w: %s", pkg.ErrValidation, msgRequired)
		case "eqfield":
			msg = msgPasswordsMatch
		case "email":
			if msg == "" {
				msg = msgInvalidEmail
			}
		default:
			if msg == "" {
				msg = strings.ToLower(fe.Field()) + " is invalid"
			}
		}
	}
	return fmt.Errorf("%w: %s", pkg.ErrValidation, msg)
}

// statusFor maps an error kind to the response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, pkg.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, pkg.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, pkg.ErrIngestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pkg.ErrExternalAPI):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// displayMessage drops the leading error-kind prefix so the rest can be
// shown to the user.
func displayMessage(err error) string {
	msg := err.Error()
	for _, kind := range []error{pkg.ErrValidation, pkg.ErrAuthentication, pkg.ErrIngestion} {
		if errors.Is(err, kind) {
			msg = strings.TrimPrefix(msg, kind.Error()+": ")
		}
	}
	return msg
}
