package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 3, 6, 16, 0, 0, 0, time.UTC)
	query, args, err := Select("*").
		From("matches").
		Where(Eq("home_team_id", int64(1)), Expr("match_date >= ?", from)).
		OrderBy("match_date").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM matches WHERE home_team_id = $1 AND match_date >= $2 ORDER BY match_date LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(1) || args[1] != from {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("teams").
		Columns("name", "short_name").
		Values("Arsenal", "ARS").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO teams (name, short_name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Arsenal" || args[1] != "ARS" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Update("standings").
		Set("points", 65).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", int64(3))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE standings SET points = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 65 || args[1] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	t.Parallel()

	type row struct {
		Name      string `db:"name"`
		ShortName string `db:"short_name"`
		Skipped   string `db:"-"`
	}

	query, args, err := InsertModel("teams", row{Name: "Chelsea", ShortName: "CHE"}, "ON CONFLICT (name) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert from model: %v", err)
	}

	wantQuery := "INSERT INTO teams (name, short_name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Chelsea" || args[1] != "CHE" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
