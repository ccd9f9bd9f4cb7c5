package models

import "time"

// Todo is an item owned by exactly one user. UserID is fixed at creation.
type Todo struct {
	ID        string
	UserID    string
	Title     string
	Completed bool
	CreatedAt time.Time
}
