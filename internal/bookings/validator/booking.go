package validator

import (
	"errors"
	"fmt"
	"seatwise/pkg/logger"
	"seatwise/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReserveValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReserveValidator(log *logger.Logger) *ReserveValidator {
	return &ReserveValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ReserveValidator) Validate(req *model.ReserveRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if req.SeatID != "" && req.SeatsBooked > 1 {
		return ValidationErrors{
			ValidationError{
				Field:   "SeatsBooked",
				Message: "a seat-level reservation holds exactly one seat",
			},
		}
	}

	if req.SeatID == "" && req.SeatsBooked == 0 {
		return ValidationErrors{
			ValidationError{
				Field:   "SeatID",
				Message: "either seat_id or seats_booked is required",
			},
		}
	}

	return nil
}

func (v *ReserveValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
