package lifecycle

import (
	"time"

	"github.com/libraryhub/circulation/internal/core/domain"
)

// DueSoonWindow is the number of days before the due date that flags a loan.
const DueSoonWindow = 3

// Label is the user-facing state of a loan.
type Label string

const (
	LabelReturned Label = "returned"
	LabelOverdue  Label = "overdue"
	LabelDueToday Label = "due_today"
	LabelDueSoon  Label = "due_soon"
	LabelActive   Label = "active"
)

// Labels lists every label in precedence order.
var Labels = []Label{LabelReturned, LabelOverdue, LabelDueToday, LabelDueSoon, LabelActive}

// Tier is the severity used to colour a label.
type Tier string

const (
	TierSuccess Tier = "success"
	TierInfo    Tier = "info"
	TierWarning Tier = "warning"
	TierDanger  Tier = "danger"
)

var labelTiers = map[Label]Tier{
	LabelReturned: TierSuccess,
	LabelActive:   TierInfo,
	LabelDueSoon:  TierWarning,
	LabelDueToday: TierWarning,
	LabelOverdue:  TierDanger,
}

var labelTitles = map[Label]string{
	LabelReturned: "Returned",
	LabelOverdue:  "Overdue",
	LabelDueToday: "Due Today",
	LabelDueSoon:  "Due Soon",
	LabelActive:   "Active",
}

// Tier returns the severity for l.
func (l Label) Tier() Tier { return labelTiers[l] }

// Title returns the display text for l.
func (l Label) Title() string { return labelTitles[l] }

// Valid reports whether l is a known label.
func (l Label) Valid() bool {
	_, ok := labelTiers[l]
	return ok
}

// Classification is the derived view of one transaction at a point in time.
// DaysUntilDue is only meaningful when Countdown is true, which is the case
// for every unreturned loan.
type Classification struct {
	Label        Label
	Tier         Tier
	DaysUntilDue int
	Countdown    bool
}

// Classify derives the label of t at now. Rules apply in order: a return date
// wins, then lateness (by date or by the stored overdue hint), then the
// due-today and due-soon windows.
func Classify(t domain.Transaction, now time.Time) Classification {
	if t.ReturnDate != nil {
		return newClassification(LabelReturned, 0, false)
	}

	days := DaysUntilDue(t.DueDate, now)
	switch {
	case days < 0 || t.Status == domain.StatusOverdue:
		return newClassification(LabelOverdue, days, true)
	case days == 0:
		return newClassification(LabelDueToday, days, true)
	case days <= DueSoonWindow:
		return newClassification(LabelDueSoon, days, true)
	default:
		return newClassification(LabelActive, days, true)
	}
}

func newClassification(l Label, days int, countdown bool) Classification {
	return Classification{Label: l, Tier: l.Tier(), DaysUntilDue: days, Countdown: countdown}
}
