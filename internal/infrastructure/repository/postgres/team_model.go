package postgres

import "time"

type teamTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	ShortName string    `db:"short_name"`
	LogoURL   string    `db:"logo_url"`
	Stadium   string    `db:"stadium"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	Name      string `db:"name"`
	ShortName string `db:"short_name"`
	LogoURL   string `db:"logo_url"`
	Stadium   string `db:"stadium"`
}
