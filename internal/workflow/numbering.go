package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/talkincode/toughwms/internal/domain"
	"gorm.io/gorm"
)

// Document number prefixes
const (
	NumberPrefixReceipt     = "REC"
	NumberPrefixDelivery    = "DO"
	NumberPrefixManufacture = "MO"
)

func numberPrefix(kind string) string {
	switch kind {
	case domain.DocKindReceipt:
		return NumberPrefixReceipt
	case domain.DocKindDelivery:
		return NumberPrefixDelivery
	case domain.DocKindManufacture:
		return NumberPrefixManufacture
	}
	return ""
}

func numberModel(kind string) interface{} {
	switch kind {
	case domain.DocKindReceipt:
		return &domain.WmsReceipt{}
	case domain.DocKindDelivery:
		return &domain.WmsDelivery{}
	case domain.DocKindManufacture:
		return &domain.WmsManufactureOrder{}
	}
	return nil
}

// NextNumber generates the next document number for the kind, scoped to
// the calendar year of now: PREFIX/YYYY/NNNN. Malformed suffixes on
// existing numbers are skipped, never a failure. The number column is
// unique, so two concurrent creations can still both compute the same
// value; callers retry on duplicate-key conflict.
func NextNumber(tx *gorm.DB, kind string, now time.Time) (string, error) {
	scope := fmt.Sprintf("%s/%d/", numberPrefix(kind), now.Year())

	var numbers []string
	if err := tx.Model(numberModel(kind)).
		Where("number LIKE ?", scope+"%").
		Pluck("number", &numbers).Error; err != nil {
		return "", err
	}

	max := 0
	for _, number := range numbers {
		suffix := strings.TrimPrefix(number, scope)
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return fmt.Sprintf("%s%04d", scope, max+1), nil
}

// isDuplicateKey detects a unique-constraint violation across the
// postgres and sqlite drivers.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	if strings.Contains(err.Error(), "duplicate key") {
		return true
	}
	return strings.Contains(strings.ToUpper(err.Error()), "UNIQUE")
}
