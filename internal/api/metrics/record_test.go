package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/libraryhub/circulation/internal/core/domain"
)

func TestReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("checkout: %w", domain.ErrNoCopiesAvailable), "no_copies"},
		{domain.ErrInvalidDateRange, "invalid_date"},
		{domain.ErrUserInactive, "user_inactive"},
		{domain.ErrAlreadyReturned, "already_returned"},
		{domain.ErrUserNotFound, "not_found"},
		{domain.ErrTransactionNotFound, "not_found"},
		{domain.ErrConcurrentUpdate, "conflict"},
		{domain.ErrRequestInProgress, "conflict"},
		{errors.New("boom"), "error"},
	}

	for _, tc := range cases {
		if got := Reason(tc.err); got != tc.want {
			t.Errorf("Reason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestRecordReturn(t *testing.T) {
	lateBefore := testutil.ToFloat64(ReturnsTotal.WithLabelValues("true"))
	onTimeBefore := testutil.ToFloat64(ReturnsTotal.WithLabelValues("false"))
	finesBefore := testutil.ToFloat64(FinesAssessedCents)

	RecordReturn(300)
	RecordReturn(0)

	if got := testutil.ToFloat64(ReturnsTotal.WithLabelValues("true")) - lateBefore; got != 1 {
		t.Errorf("expected one late return, got %v", got)
	}
	if got := testutil.ToFloat64(ReturnsTotal.WithLabelValues("false")) - onTimeBefore; got != 1 {
		t.Errorf("expected one on-time return, got %v", got)
	}
	if got := testutil.ToFloat64(FinesAssessedCents) - finesBefore; got != 300 {
		t.Errorf("expected 300 cents assessed, got %v", got)
	}
}
