package middleware

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/wms-platform/transfers/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GroupByValues are the grouping keys accepted by the order search.
var GroupByValues = map[string]bool{
	"orderId":                      true,
	"originFacilityProductId":      true,
	"destinationFacilityProductId": true,
}

func registerCustom(v *validator.Validate) {
	_ = v.RegisterValidation("group_by", validateGroupBy)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// InitValidator initializes the validator with custom rules and installs them on gin's binding engine
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		registerCustom(validate)

		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustom(v)
		}
	})
	return validate
}

func validateGroupBy(fl validator.FieldLevel) bool {
	return GroupByValues[fl.Field().String()]
}

// ValidationErrorFormatter formats validation errors into a map
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			fields[e.Field()] = formatValidationError(e)
		}
	}
	return fields
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "group_by":
		return "must be one of: orderId, originFacilityProductId, destinationFacilityProductId"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

func toAppError(err error, what string) *errors.AppError {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		return errors.ErrValidationWithFields("validation failed", ValidationErrorFormatter(validationErrors))
	}
	return errors.ErrBadRequest("invalid " + what + ": " + err.Error())
}

// BindAndValidate binds the JSON request body and validates it
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		return toAppError(err, "request body")
	}
	return nil
}

// BindQueryAndValidate binds query parameters and validates them
func BindQueryAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindQuery(obj); err != nil {
		return toAppError(err, "query")
	}
	return nil
}
