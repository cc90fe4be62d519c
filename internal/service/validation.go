package service

import (
	"fmt"
	"regexp"
	"strings"

	"crm-core/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// phonePattern accepts forms such as +1234567890 and 123-456-7890
var phonePattern = regexp.MustCompile(`^\+?\d{1,4}?[-.\s]?\(?\d{1,3}?\)?[-.\s]?\d{1,4}[-.\s]?\d{1,4}[-.\s]?\d{1,9}$`)

// maxPrice is the largest value a NUMERIC(10,2) column holds
var maxPrice = decimal.RequireFromString("99999999.99")

const priceScale = 2

// Column widths of the customer and product tables
const (
	maxNameLength  = 100
	maxEmailLength = 254
	maxPhoneLength = 20
)

var validate = validator.New()

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("Name is required.")
	}
	if err := validate.Var(name, fmt.Sprintf("max=%d", maxNameLength)); err != nil {
		return invalid("Name cannot exceed %d characters.", maxNameLength)
	}
	return nil
}

func validateEmail(email string) error {
	if err := validate.Var(email, fmt.Sprintf("max=%d", maxEmailLength)); err != nil {
		return invalid("Email cannot exceed %d characters.", maxEmailLength)
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return invalid("Invalid email format: '%s'.", email)
	}
	return nil
}

func validatePhone(phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}
	if err := validate.Var(*phone, fmt.Sprintf("max=%d", maxPhoneLength)); err != nil {
		return invalid("Phone number cannot exceed %d characters.", maxPhoneLength)
	}
	if !phonePattern.MatchString(*phone) {
		return invalid("Invalid phone number format: '%s'.", *phone)
	}
	return nil
}

// parsePrice parses a strictly positive price that fits NUMERIC(10,2) exactly
func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid("Invalid price format. Must be a float or decimal")
	}
	if !price.IsPositive() {
		return decimal.Zero, invalid("Price must be a positive value.")
	}
	if !price.Equal(price.Round(priceScale)) {
		return decimal.Zero, invalid("Price cannot have more than %d decimal places.", priceScale)
	}
	if price.GreaterThan(maxPrice) {
		return decimal.Zero, invalid("Price exceeds the maximum of %s.", maxPrice.StringFixed(priceScale))
	}
	return price, nil
}
