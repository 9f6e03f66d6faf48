package service

import (
	"fmt"
	"playstore-predictor/internal/dto"
	"reflect"
	"strconv"
	"strings"

	goValidator "github.com/go-playground/validator/v10"
)

// Draft is the form state: the input plus whether a price was typed in,
// which a Paid app requires before it can be submitted.
type Draft struct {
	Input    dto.PredictionInput
	PriceSet bool
}

func NewEmptyDraft() Draft {
	return Draft{Input: dto.NewDraft()}
}

// ApplyField merges one form field into d and returns the new draft. It is
// the only place the app_type/price coupling lives: switching to Free zeroes
// the price in the same step, and the price cannot be edited while Free.
func ApplyField(d Draft, name, value string) (Draft, error) {
	next := d
	switch name {
	case "category":
		next.Input.Category = value
	case "genres":
		next.Input.Genres = value
	case "app_size":
		next.Input.AppSize = value
	case "app_type":
		appType := dto.AppType(value)
		switch appType {
		case dto.AppTypeFree:
			next.Input.Price = 0
			next.PriceSet = false
		case dto.AppTypePaid:
		default:
			return d, fmt.Errorf("%w: app_type must be Free or Paid, got %q", ErrInvalidValue, value)
		}
		next.Input.AppType = appType
	case "price":
		if d.Input.AppType == dto.AppTypeFree {
			return d, fmt.Errorf("%w: price is fixed at 0 for Free apps", ErrFieldDisabled)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			next.Input.Price = 0
			next.PriceSet = false
			break
		}
		next.Input.Price = price
		next.PriceSet = true
	case "content_rating":
		rating := dto.ContentRating(value)
		if !isContentRating(rating) {
			return d, fmt.Errorf("%w: unknown content_rating %q", ErrInvalidValue, value)
		}
		next.Input.ContentRating = rating
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return next, nil
}

func isContentRating(r dto.ContentRating) bool {
	for _, known := range dto.GetContentRatingList() {
		if r == known {
			return true
		}
	}
	return false
}

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *goValidator.Validate {
	v := goValidator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateDraft checks the required-field constraints before anything is
// sent. The error wraps ErrInvalidDraft and reads like a form message.
func ValidateDraft(v *goValidator.Validate, d Draft) error {
	var problems []string
	if err := v.Struct(d.Input); err != nil {
		if fieldErrs, ok := err.(goValidator.ValidationErrors); ok {
			for _, fe := range fieldErrs {
				problems = append(problems, describeFieldError(fe))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"category", d.Input.Category},
		{"genres", d.Input.Genres},
		{"app_size", d.Input.AppSize},
	} {
		if field.value != "" && strings.TrimSpace(field.value) == "" {
			problems = append(problems, field.name+" is required")
		}
	}
	if d.Input.AppType == dto.AppTypePaid && !d.PriceSet {
		problems = append(problems, "price is required for Paid apps")
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidDraft, strings.Join(problems, "; "))
}

func describeFieldError(fe goValidator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// normalize enforces the Free ⇒ price 0 rule on drafts that did not go
// through ApplyField.
func normalize(d Draft) Draft {
	if d.Input.AppType == dto.AppTypeFree {
		d.Input.Price = 0
		d.PriceSet = false
	}
	return d
}
