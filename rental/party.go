package rental

import (
	"errors"
	"fmt"
	"strings"

	"Gin_postgres_redis_rental_kiosk/models"

	"github.com/go-playground/validator/v10"
)

// Party is the composition of the group using an item.
type Party struct {
	Male   int `json:"maleCount" validate:"gte=0,lte=999"`
	Female int `json:"femaleCount" validate:"gte=0,lte=999"`
}

func (p Party) Total() int { return p.Male + p.Female }

// resolveParty decides the counts stored on a record. Items with automatic
// gender counting ignore the supplied counts and count the renter alone.
// When required is set, a manual party must have at least one person.
func (s *Service) resolveParty(item *models.Item, user *models.User, in *Party, required bool) (Party, error) {
	if item.IsAutomaticGenderCount {
		switch strings.ToLower(user.Gender) {
		case models.GenderMale:
			return Party{Male: 1}, nil
		case models.GenderFemale:
			return Party{Female: 1}, nil
		default:
			return Party{}, s.fail(msgValidation, "user %d has no gender on file for automatic counting", user.ID)
		}
	}

	if in == nil {
		if required {
			return Party{}, s.fail(msgValidation, "maleCount and femaleCount are required")
		}
		return Party{}, nil
	}
	if err := s.validateStruct(in); err != nil {
		return Party{}, err
	}
	if required && in.Total() <= 0 {
		return Party{}, s.fail(msgValidation, "party must include at least one person")
	}
	return *in, nil
}

// validateStruct runs validator tags and reports the first failing field.
func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return s.fail(msgValidation, "%s", describeFieldError(fe))
	}
	return s.fail(msgValidation, "%v", err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
