package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// --- Catalogue ---

type searchBooksQuery struct {
	Q            string `query:"q"`
	Genre        string `query:"genre"`
	Author       string `query:"author"`
	Availability string `query:"availability" validate:"omitempty,oneof=all available unavailable"`
}

type bookResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Publisher       string    `json:"publisher"`
	PublicationYear int       `json:"publication_year"`
	Genre           string    `json:"genre"`
	Description     string    `json:"description"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	Available       bool      `json:"available"`
	ShelfLocation   string    `json:"shelf_location"`
	Condition       string    `json:"condition"`
	Tags            []string  `json:"tags"`
	AverageRating   float64   `json:"average_rating"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type searchBooksResponse struct {
	Data    []bookResponse `json:"data"`
	Total   int            `json:"total"`
	Genres  []string       `json:"genres"`
	Authors []string       `json:"authors"`
}

// --- Circulation ---

type checkoutRequest struct {
	BookID string `json:"book_id" validate:"required"`
	UserID string `json:"user_id" validate:"required"`
	// DueDate is a calendar date (YYYY-MM-DD); the loan is due at the end of it.
	DueDate string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type returnItemRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	BookID        string `json:"book_id"`
}

type issuedQuery struct {
	Q     string `query:"q"`
	Label string `query:"label" validate:"omitempty,oneof=returned overdue due_today due_soon active"`
}

type transactionLinks struct {
	Self    string `json:"self"`
	Return  string `json:"return,omitempty"`
	Payment string `json:"payment,omitempty"`
}

type statusResponse struct {
	Label string `json:"label"`
	Title string `json:"title"`
	Tier  string `json:"tier"`
	// DaysUntilDue is present only while the loan shows a due countdown.
	DaysUntilDue *int `json:"days_until_due,omitempty"`
}

type transactionResponse struct {
	ID            string           `json:"id"`
	BookID        string           `json:"book_id"`
	UserID        string           `json:"user_id"`
	Type          string           `json:"type"`
	Status        string           `json:"status"`
	IssueDate     time.Time        `json:"issue_date"`
	DueDate       time.Time        `json:"due_date"`
	ReturnDate    *time.Time       `json:"return_date"`
	FineCents     int64            `json:"fine_cents"`
	Fine          string           `json:"fine"`
	FinePaid      bool             `json:"fine_paid"`
	BookTitle     string           `json:"book_title,omitempty"`
	BookAuthor    string           `json:"book_author,omitempty"`
	UserName      string           `json:"user_name,omitempty"`
	LibraryCardID string           `json:"library_card_id,omitempty"`
	Display       statusResponse   `json:"display"`
	CreatedAt     time.Time        `json:"created_at"`
	Links         transactionLinks `json:"_links"`
}

type listTransactionsResponse struct {
	Data  []transactionResponse `json:"data"`
	Total int                   `json:"total"`
}

type userResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	LibraryCardID string `json:"library_card_id"`
	Active        bool   `json:"is_active"`
}

type summaryResponse struct {
	Current              int    `json:"current"`
	DueSoon              int    `json:"due_soon"`
	Overdue              int    `json:"overdue"`
	Returned             int    `json:"returned"`
	OutstandingFineCents int64  `json:"outstanding_fine_cents"`
	OutstandingFine      string `json:"outstanding_fine"`
}

type borrowingsQuery struct {
	Q string `query:"q"`
}

type borrowingsResponse struct {
	User    userResponse          `json:"user"`
	Current []transactionResponse `json:"current"`
	History []transactionResponse `json:"history"`
	Summary summaryResponse       `json:"summary"`
}

// --- Dashboards ---

type inventoryResponse struct {
	Titles            int `json:"titles"`
	TotalCopies       int `json:"total_copies"`
	AvailableCopies   int `json:"available_copies"`
	CheckedOutCopies  int `json:"checked_out_copies"`
	UnavailableTitles int `json:"unavailable_titles"`
}

type librarianDashboardResponse struct {
	Inventory            inventoryResponse `json:"inventory"`
	LoansByLabel         map[string]int    `json:"loans_by_label"`
	OutstandingFineCents int64             `json:"outstanding_fine_cents"`
	OutstandingFine      string            `json:"outstanding_fine"`
}

type studentDashboardResponse struct {
	User    userResponse    `json:"user"`
	Summary summaryResponse `json:"summary"`
}
