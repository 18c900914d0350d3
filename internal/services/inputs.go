package services

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/littlenotes/encore/internal/core"
)

var validate = validator.New()

// ChildInput is the boundary shape for adding a child to a registration.
// Forms perform their own required-field checks; the service re-checks them.
type ChildInput struct {
	Name   string `validate:"required"`
	Age    int    `validate:"gte=1,lte=18"`
	School string

	Allergies           string
	DietaryRestrictions string
	MedicalConditions   string
	SpecialNeeds        string
	TShirtSize          string

	AccountChildID *uint
}

type PickupInput struct {
	Name         string `validate:"required"`
	Phone        string
	Relationship string
}

func validateChildInput(in ChildInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		var flds []core.FieldError
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				switch ve.Field() {
				case "Name":
					flds = append(flds, core.FieldError{Field: "name", Error: "name is required"})
				case "Age":
					flds = append(flds, core.FieldError{Field: "age", Error: "age must be between 1 and 18"})
				}
			}
		}
		return core.NewValidationError("invalid child", flds...)
	}
	return nil
}

func validatePickupInput(in PickupInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return core.NewValidationError("invalid pickup", core.FieldError{Field: "name", Error: "name is required"})
	}
	return nil
}
