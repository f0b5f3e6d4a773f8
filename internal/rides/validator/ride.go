package validator

import (
	"errors"
	"fmt"
	"seatwise/pkg/logger"
	"seatwise/pkg/model"
	"strings"
	"time"

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

type RideValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRideValidator(log *logger.Logger) *RideValidator {
	return &RideValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *RideValidator) Validate(ride *model.Ride) error {
	if err := v.validate.Struct(ride); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if ride.TotalSeats < 2 {
		return ValidationErrors{
			ValidationError{
				Field:   "TotalSeats",
				Message: "a ride needs the driver seat plus at least one bookable seat",
			},
		}
	}

	if ride.DepartureTime.Before(time.Now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "DepartureTime",
				Message: "departure_time cannot be in the past",
			},
		}
	}

	return nil
}

func (v *RideValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
