package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/libraryhub/circulation/internal/core/domain"
)

func Test_OutstandingFine_Empty(t *testing.T) {
	assert.Equal(t, domain.Cents(0), OutstandingFine(nil))
	assert.Equal(t, domain.Cents(0), OutstandingFine([]domain.Transaction{}))
}

func Test_OutstandingFine_PaidFinesDoNotCount(t *testing.T) {
	base := []domain.Transaction{{FineAmount: 550}, {FineAmount: 0, FinePaid: true}}
	before := OutstandingFine(base)

	withPaid := append(append([]domain.Transaction{}, base...), domain.Transaction{FineAmount: 99999, FinePaid: true})
	assert.Equal(t, before, OutstandingFine(withPaid))

	withUnpaid := append(append([]domain.Transaction{}, base...), domain.Transaction{FineAmount: 125})
	assert.Equal(t, before+125, OutstandingFine(withUnpaid))
}

func Test_AccruedFine(t *testing.T) {
	due := time.Date(2024, 1, 19, 23, 59, 59, 0, time.UTC)

	assert.Equal(t, domain.Cents(0), AccruedFine(due, due.AddDate(0, 0, -2), 50))
	assert.Equal(t, domain.Cents(0), AccruedFine(due, due, 50))
	assert.Equal(t, domain.Cents(300), AccruedFine(due, refNow, 50))
}

func Test_Cents_String(t *testing.T) {
	assert.Equal(t, "$5.50", domain.Cents(550).String())
	assert.Equal(t, "$0.05", domain.Cents(5).String())
	assert.Equal(t, "-$1.00", domain.Cents(-100).String())
}
