package controller

import (
	"context"

	appErrors "github.com/hirepath/admin-console/pkg/errors"
)

// DocumentsView is the placeholder content of the document review screen.
type DocumentsView struct {
	Title   string
	Message string
}

// DocumentsController backs the student document review screen. The backend
// exposes no document endpoints yet, so the screen renders a placeholder and
// every action reports itself as unimplemented instead of pretending to work.
type DocumentsController struct{}

// NewDocumentsController builds the placeholder controller.
func NewDocumentsController() *DocumentsController { return &DocumentsController{} }

// View returns the static placeholder content.
func (c *DocumentsController) View() DocumentsView {
	return DocumentsView{
		Title:   "Student Documents",
		Message: "Student document uploads will show here.",
	}
}

// Load is surfaced in the UI but has no backend endpoint.
func (c *DocumentsController) Load(context.Context) error { return appErrors.ErrNotImplemented }

// Review is surfaced in the UI but has no backend endpoint.
func (c *DocumentsController) Review(string) error { return appErrors.ErrNotImplemented }
