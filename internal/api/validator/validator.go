package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	// Register custom validation tags
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("user_role", validateUserRole)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("plan_tier", validatePlanTier)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("relation_action", validateRelationAction)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("visibility", validateVisibility)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("event_kind", validateEventKind)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("iso3", validateISO3)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("layer_key", validateLayerKey)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validateUserRole(fl playgroundvalidator.FieldLevel) bool {
	role := fl.Field().String()
	return role == "ANALYST" || role == "SUBSCRIBER"
}

func validatePlanTier(fl playgroundvalidator.FieldLevel) bool {
	tier := fl.Field().String()
	return tier == "INVITED" || tier == "SUBSCRIBER" || tier == "SUBSCRIBER_PLUS"
}

func validateRelationAction(fl playgroundvalidator.FieldLevel) bool {
	action := fl.Field().String()
	return action == "APPROVE" || action == "REJECT"
}

func validateVisibility(fl playgroundvalidator.FieldLevel) bool {
	visibility := fl.Field().String()
	return visibility == "FREE" || visibility == "PAID"
}

func validateEventKind(fl playgroundvalidator.FieldLevel) bool {
	kind := fl.Field().String()
	return kind == "POINT" || kind == "LINE"
}

func validateISO3(fl playgroundvalidator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func validateLayerKey(fl playgroundvalidator.FieldLevel) bool {
	key := fl.Field().String()
	if key == "" {
		return false
	}
	for _, r := range key {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// RegisterRequest creates a user account. Analysts get a tenant provisioned
// on first login.
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       string `json:"role" validate:"required,user_role"`
	PlanTier   string `json:"planTier" validate:"omitempty,plan_tier"`
	TenantName string `json:"tenantName" validate:"required_if=Role ANALYST"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type SubscriptionRequest struct {
	TenantID string `json:"tenantId" validate:"required,uuid"`
}

type DecideRequest struct {
	Action string `json:"action" validate:"required,relation_action"`
}

type ContentItemRequest struct {
	LayerKey    string   `json:"layerKey" validate:"required,layer_key"`
	CountryISO3 string   `json:"countryIso3" validate:"required,iso3"`
	Title       string   `json:"title" validate:"required,max=300"`
	Summary     string   `json:"summary" validate:"required"`
	Body        string   `json:"body"`
	Visibility  string   `json:"visibility" validate:"required,visibility"`
	Tags        []string `json:"tags" validate:"omitempty,dive,min=1"`
	Media       []string `json:"media"`
}

type MapEventRequest struct {
	LayerKey    string      `json:"layerKey" validate:"required,layer_key"`
	CountryISO3 string      `json:"countryIso3" validate:"required,iso3"`
	Kind        string      `json:"kind" validate:"required,event_kind"`
	Title       string      `json:"title" validate:"required,max=300"`
	Summary     string      `json:"summary"`
	Visibility  string      `json:"visibility" validate:"required,visibility"`
	Geometry    interface{} `json:"geometry" validate:"required"`
}

type TenantUpdateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
}
