package storefront

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/paperleaf/storefront-go/apperr"
)

// maxCoverBytes caps uploaded cover images at 2 MiB, matching the server
// limit so oversized files are rejected before any bytes travel.
const maxCoverBytes = 2 << 20

// ReviewInput is the create-review submission body.
type ReviewInput struct {
	BookID  int64  `json:"bookId"`
	Star    int    `json:"star"`
	Comment string `json:"comment"`
}

// Validate enforces the submission invariants client-side: a target book,
// a star in [1,5], a non-empty comment.
func (in ReviewInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.BookID, validation.Required),
		validation.Field(&in.Star, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&in.Comment, validation.Required),
	))
}

// ReviewPatch is a partial update body; nil fields are left untouched.
type ReviewPatch struct {
	Star    *int    `json:"star,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

// Validate checks only the fields the patch sets.
func (p ReviewPatch) Validate() error {
	if p.Star == nil && p.Comment == nil {
		return apperr.Validation("nothing to update")
	}
	return wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Star, validation.Min(1), validation.Max(5)),
		validation.Field(&p.Comment, validation.NilOrNotEmpty),
	))
}

// BookInput is the admin create/update body for catalog books.
type BookInput struct {
	Title       string  `json:"title"`
	AuthorID    int64   `json:"authorId"`
	CategoryID  int64   `json:"categoryId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`

	// CoverSize is the byte size of the cover upload accompanying the
	// submission, zero when no cover is attached.
	CoverSize int64 `json:"-"`
}

// Validate enforces the catalog form rules: a title, a selected author and
// category, and a cover within the upload limit.
func (in BookInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.AuthorID, validation.Required),
		validation.Field(&in.CategoryID, validation.Required),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.CoverSize, validation.Max(int64(maxCoverBytes)).Error("cover image is too large")),
	))
}

// AuthorInput is the admin create/update body for authors.
type AuthorInput struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

func (in AuthorInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
	))
}

// CategoryInput is the admin create/update body for categories.
type CategoryInput struct {
	Name string `json:"name"`
}

func (in CategoryInput) Validate() error {
	return wrapValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
	))
}

// PasswordChange is the change-password submission. Confirm must repeat
// New exactly; the mismatch is caught here, never sent to the server.
type PasswordChange struct {
	Current string `json:"currentPassword"`
	New     string `json:"newPassword"`
	Confirm string `json:"-"`
}

func (c PasswordChange) Validate() error {
	return wrapValidation(validation.ValidateStruct(&c,
		validation.Field(&c.Current, validation.Required),
		validation.Field(&c.New, validation.Required, validation.Length(8, 0)),
		validation.Field(&c.Confirm, validation.Required, validation.In(c.New).Error("must match the new password")),
	))
}

// wrapValidation folds ozzo's field-error map into the error taxonomy so
// every validation failure surfaces with CodeValidation.
func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Wrap(apperr.CodeValidation, err.Error(), err)
}
