package handler

import (
	"time"

	"github.com/libraryhub/circulation/internal/core/domain"
	"github.com/libraryhub/circulation/internal/core/lifecycle"
	"github.com/libraryhub/circulation/internal/core/ports"
)

// --- Request → Service input ---

const dateLayout = "2006-01-02"

func toCheckoutInput(req checkoutRequest, idempotencyKey string) (ports.CheckoutInput, error) {
	in := ports.CheckoutInput{
		BookID:         req.BookID,
		UserID:         req.UserID,
		IdempotencyKey: idempotencyKey,
	}
	if req.DueDate != "" {
		due, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			return in, err
		}
		in.DueDate = due
	}
	return in, nil
}

func toBookFilter(q searchBooksQuery) ports.BookFilter {
	return ports.BookFilter{
		Query:        q.Q,
		Genre:        q.Genre,
		Author:       q.Author,
		Availability: ports.Availability(q.Availability),
	}
}

// --- Service result → HTTP response ---

func toBookResponse(b *domain.Book) bookResponse {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Genre:           b.Genre,
		Description:     b.Description,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Available:       b.AvailableCopies > 0,
		ShelfLocation:   b.ShelfLocation,
		Condition:       string(b.Condition),
		Tags:            tags,
		AverageRating:   b.AverageRating,
		CreatedAt:       b.CreatedAt.UTC(),
		UpdatedAt:       b.UpdatedAt.UTC(),
	}
}

func toSearchResponse(r *ports.SearchResult) searchBooksResponse {
	data := make([]bookResponse, len(r.Books))
	for i := range r.Books {
		data[i] = toBookResponse(&r.Books[i])
	}
	return searchBooksResponse{Data: data, Total: len(data), Genres: r.Genres, Authors: r.Authors}
}

func toTransactionResponse(v *ports.TransactionView) transactionResponse {
	self := "/v1/transactions/" + v.ID
	links := transactionLinks{Self: self}
	if v.ReturnDate == nil {
		links.Return = self + "/return"
	} else if !v.FinePaid && v.FineAmount > 0 {
		links.Payment = self + "/fine/payment"
	}

	var returned *time.Time
	if v.ReturnDate != nil {
		rd := v.ReturnDate.UTC()
		returned = &rd
	}

	return transactionResponse{
		ID:            v.ID,
		BookID:        v.BookID,
		UserID:        v.UserID,
		Type:          string(v.Type),
		Status:        string(v.Status),
		IssueDate:     v.IssueDate.UTC(),
		DueDate:       v.DueDate.UTC(),
		ReturnDate:    returned,
		FineCents:     int64(v.FineAmount),
		Fine:          v.FineAmount.String(),
		FinePaid:      v.FinePaid,
		BookTitle:     v.BookTitle,
		BookAuthor:    v.BookAuthor,
		UserName:      v.UserName,
		LibraryCardID: v.LibraryCardID,
		Display:       toStatusResponse(v.Classification),
		CreatedAt:     v.CreatedAt.UTC(),
		Links:         links,
	}
}

func toStatusResponse(c lifecycle.Classification) statusResponse {
	s := statusResponse{
		Label: string(c.Label),
		Title: c.Label.Title(),
		Tier:  string(c.Tier),
	}
	if c.Countdown {
		days := c.DaysUntilDue
		s.DaysUntilDue = &days
	}
	return s
}

func toTransactionList(views []ports.TransactionView) []transactionResponse {
	out := make([]transactionResponse, len(views))
	for i := range views {
		out[i] = toTransactionResponse(&views[i])
	}
	return out
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		LibraryCardID: u.LibraryCardID,
		Active:        u.Active,
	}
}

func toSummaryResponse(s lifecycle.BorrowingSummary) summaryResponse {
	return summaryResponse{
		Current:              s.Current,
		DueSoon:              s.DueSoon,
		Overdue:              s.Overdue,
		Returned:             s.Returned,
		OutstandingFineCents: int64(s.OutstandingFine),
		OutstandingFine:      s.OutstandingFine.String(),
	}
}

func toBorrowingsResponse(b *ports.Borrowings) borrowingsResponse {
	return borrowingsResponse{
		User:    toUserResponse(b.User),
		Current: toTransactionList(b.Current),
		History: toTransactionList(b.History),
		Summary: toSummaryResponse(b.Summary),
	}
}

func toLibrarianResponse(d *ports.LibrarianDashboard) librarianDashboardResponse {
	byLabel := make(map[string]int, len(d.IssuedByLabel))
	for l, n := range d.IssuedByLabel {
		byLabel[string(l)] = n
	}
	return librarianDashboardResponse{
		Inventory: inventoryResponse{
			Titles:            d.Inventory.Titles,
			TotalCopies:       d.Inventory.TotalCopies,
			AvailableCopies:   d.Inventory.AvailableCopies,
			CheckedOutCopies:  d.Inventory.CheckedOutCopies,
			UnavailableTitles: d.Inventory.UnavailableTitles,
		},
		LoansByLabel:         byLabel,
		OutstandingFineCents: int64(d.OutstandingFine),
		OutstandingFine:      d.OutstandingFine.String(),
	}
}

func toStudentResponse(d *ports.StudentDashboard) studentDashboardResponse {
	return studentDashboardResponse{
		User:    toUserResponse(d.User),
		Summary: toSummaryResponse(d.Summary),
	}
}
