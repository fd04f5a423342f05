package ledger

import (
	"strings"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	pkgvalidator "github.com/mamadbah2/stockledger/pkg/validator"
)

func validateChange(change StockChange) error {
	fields := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&change))
	if !change.UnitPrice.IsPositive() {
		fields["unitPrice"] = "Must be greater than 0"
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

func toValidationError(err error) error {
	fields := pkgvalidator.FormatValidationErrors(err)
	if len(fields) == 0 {
		return err
	}
	return &models.ValidationError{Fields: fields}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if !isBlank(v) {
			return v
		}
	}
	return ""
}
