package postgres

import "time"

type playerTableModel struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Position    string     `db:"position"`
	ShirtNumber int        `db:"shirt_number"`
	Nationality string     `db:"nationality"`
	DateOfBirth *time.Time `db:"date_of_birth"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type playerInsertModel struct {
	Name        string     `db:"name"`
	Position    string     `db:"position"`
	ShirtNumber int        `db:"shirt_number"`
	Nationality string     `db:"nationality"`
	DateOfBirth *time.Time `db:"date_of_birth"`
}
