package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/libraryhub/circulation/internal/core/ports"
)

// BookHandler serves the catalogue.
type BookHandler struct {
	service ports.CatalogService
}

func NewBookHandler(service ports.CatalogService) *BookHandler {
	return &BookHandler{service: service}
}

// Search handles GET /v1/books.
//
// @Summary      Search the catalogue
// @Tags         books
// @Produce      json
// @Param        q             query     string  false  "Text matched against title, author, tags and ISBN"
// @Param        genre         query     string  false  "Exact genre"
// @Param        author        query     string  false  "Exact author"
// @Param        availability  query     string  false  "all, available or unavailable"
// @Success      200           {object}  searchBooksResponse
// @Failure      422           {object}  errorResponse
// @Router       /v1/books [get]
func (h *BookHandler) Search(c echo.Context) error {
	var q searchBooksQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	result, err := h.service.Search(c.Request().Context(), toBookFilter(q))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSearchResponse(result))
}

// Get handles GET /v1/books/:id.
//
// @Summary      Get a book
// @Tags         books
// @Produce      json
// @Param        id   path      string  true  "Book id"
// @Success      200  {object}  bookResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	book, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookResponse(book))
}
