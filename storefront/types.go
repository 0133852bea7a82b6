package storefront

import "time"

// Review is a user-submitted book review. Star is always within [1,5];
// the server enforces it and ReviewInput re-checks it client-side before
// any request is sent.
type Review struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"bookId"`
	UserID    int64     `json:"userId"`
	Star      int       `json:"star"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookStats carries the recomputed aggregate a review mutation returns.
type BookStats struct {
	BookID      int64   `json:"bookId"`
	AverageStar float64 `json:"averageStar"`
	ReviewCount int64   `json:"reviewCount"`
}

// Book is a catalog entry.
type Book struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	AuthorID    int64     `json:"authorId"`
	CategoryID  int64     `json:"categoryId"`
	Description string    `json:"description"`
	CoverURL    string    `json:"coverUrl"`
	Price       float64   `json:"price"`
	AverageStar float64   `json:"averageStar"`
	ReviewCount int64     `json:"reviewCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Author is a catalog author.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// Category is a catalog category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Profile is the current user's account view. ReviewCount is why review
// mutations invalidate the profile key-space as well.
type Profile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ReviewCount int64     `json:"reviewCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// List wraps a paginated read result. Items and total are cached as one
// unit so a list is never observed with a mismatched count.
type List[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
