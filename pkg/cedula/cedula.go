// Package cedula validates Ecuadorian national identity numbers
// (10 digits with an embedded check digit).
package cedula

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/jaapa/jaapa-api/pkg/errors"
)

// Specific failure reasons. All share the IDENTITY_INVALID code so the
// boundary layer can treat them as one validation family.
var (
	ErrBlank      = apperrors.New("IDENTITY_INVALID", http.StatusBadRequest, "la cédula no puede ser nula o vacía")
	ErrNotNumeric = apperrors.New("IDENTITY_INVALID", http.StatusBadRequest, "la cédula debe contener solo dígitos")
	ErrLength     = apperrors.New("IDENTITY_INVALID", http.StatusBadRequest, "la cédula debe tener exactamente 10 dígitos")
	ErrProvince   = apperrors.New("IDENTITY_INVALID", http.StatusBadRequest, "el código de provincia no es válido")
	ErrClassDigit = apperrors.New("IDENTITY_INVALID", http.StatusBadRequest, "el tercer dígito de la cédula debe ser menor a 6")
	ErrChecksum   = apperrors.New("IDENTITY_INVALID", http.StatusBadRequest, "la cédula no es válida")
)

var coefficients = [9]int{2, 1, 2, 1, 2, 1, 2, 1, 2}

// Validate checks a cedula strictly: blank input is an error. Rules run in
// order and the first failure wins.
func Validate(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrBlank
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return ErrNotNumeric
		}
	}
	if len(value) != 10 {
		return ErrLength
	}

	province, _ := strconv.Atoi(value[:2])
	if province < 1 || province > 24 {
		return ErrProvince
	}

	third := int(value[2] - '0')
	if third >= 6 {
		return ErrClassDigit
	}

	if checkDigit(value) != int(value[9]-'0') {
		return ErrChecksum
	}
	return nil
}

// ValidateIfPresent treats blank input as valid so a separate required-field
// check can own that failure. Non-blank input is validated like Validate.
func ValidateIfPresent(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return Validate(value)
}

func checkDigit(value string) int {
	sum := 0
	for i := 0; i < 9; i++ {
		product := int(value[i]-'0') * coefficients[i]
		if product > 9 {
			product -= 9
		}
		sum += product
	}
	if sum%10 == 0 {
		return 0
	}
	return 10 - sum%10
}
