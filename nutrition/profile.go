// Package nutrition derives daily calorie, macro, BMI and water targets from
// a body profile, and estimates exercise energy expenditure.
package nutrition

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps every validation failure returned by this package.
// Callers match it with errors.Is to map bad input to a 400.
var ErrInvalidInput = errors.New("invalid input")

// Sex selects the Mifflin-St Jeor constant.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

func (s Sex) Valid() bool {
	switch s {
	case Male, Female:
		return true
	}
	return false
}

// UnmarshalText rejects anything but the known values so a bad JSON body
// fails at decode time instead of reaching the formulas.
func (s *Sex) UnmarshalText(b []byte) error {
	v := Sex(b)
	if !v.Valid() {
		return fmt.Errorf("%w: sex must be one of: male, female", ErrInvalidInput)
	}
	*s = v
	return nil
}

// ActivityLevel scales BMR into TDEE.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "veryActive"
)

// Multiplier returns the TDEE multiplier for a.
func (a ActivityLevel) Multiplier() (float64, error) {
	switch a {
	case Sedentary:
		return 1.2, nil
	case Light:
		return 1.375, nil
	case Moderate:
		return 1.55, nil
	case Active:
		return 1.725, nil
	case VeryActive:
		return 1.9, nil
	}
	return 0, fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, string(a))
}

func (a ActivityLevel) Valid() bool {
	_, err := a.Multiplier()
	return err == nil
}

func (a *ActivityLevel) UnmarshalText(b []byte) error {
	v := ActivityLevel(b)
	if !v.Valid() {
		return fmt.Errorf("%w: activity_level must be one of: sedentary, light, moderate, active, veryActive", ErrInvalidInput)
	}
	*a = v
	return nil
}

// WeightGoal shifts the maintenance calories by a fixed daily amount.
type WeightGoal string

const (
	Lose     WeightGoal = "lose"
	Maintain WeightGoal = "maintain"
	Gain     WeightGoal = "gain"
)

// CalorieModifier returns the kcal/day added to maintenance for g.
func (g WeightGoal) CalorieModifier() (int, error) {
	switch g {
	case Lose:
		return -500, nil
	case Maintain:
		return 0, nil
	case Gain:
		return 500, nil
	}
	return 0, fmt.Errorf("%w: unknown weight goal %q", ErrInvalidInput, string(g))
}

func (g WeightGoal) Valid() bool {
	_, err := g.CalorieModifier()
	return err == nil
}

func (g *WeightGoal) UnmarshalText(b []byte) error {
	v := WeightGoal(b)
	if !v.Valid() {
		return fmt.Errorf("%w: weight_goal must be one of: lose, maintain, gain", ErrInvalidInput)
	}
	*g = v
	return nil
}

// Profile is the body profile goals are derived from. It is replaced as a
// whole on every edit.
type Profile struct {
	Age           int           `json:"age"            validate:"gt=0,lte=130"`
	Sex           Sex           `json:"sex"            validate:"enum"`
	HeightCm      float64       `json:"height_cm"      validate:"gt=0"`
	WeightKg      float64       `json:"weight_kg"      validate:"gt=0"`
	ActivityLevel ActivityLevel `json:"activity_level" validate:"enum"`
	WeightGoal    WeightGoal    `json:"weight_goal"    validate:"enum"`
	Allergies     string        `json:"allergies,omitempty" validate:"max=500"`
}

/* ─── Validation ─────────────────────────────────────────────────────── */

type enumValue interface{ Valid() bool }

var profileValidate *validator.Validate

func init() {
	profileValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so messages match what the client sent.
	profileValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = profileValidate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		v, ok := fl.Field().Interface().(enumValue)
		return ok && v.Valid()
	})
}

// Validate checks every field of p. The returned error wraps ErrInvalidInput
// and names each failing field.
func (p Profile) Validate() error {
	err := profileValidate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "lte", "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "enum":
		return fmt.Sprintf("%s has unknown value %q", fe.Field(), fmt.Sprint(fe.Value()))
	}
	return fe.Field() + " failed " + fe.Tag()
}
