package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("external_fixture_id", "league_id", "season").
		From("fixture_cache").
		Where(Eq("needs_update", true), IsNull("local_match_id")).
		OrderBy("fixture_date ASC").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT external_fixture_id, league_id, season FROM fixture_cache WHERE needs_update = $1 AND local_match_id IS NULL ORDER BY fixture_date ASC LIMIT 50"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != true {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderInAndExpr(t *testing.T) {
	query, args, err := Select("public_id", "status").
		From("collection_jobs").
		Where(
			In("status", []any{"COMPLETED", "FAILED"}),
			Expr("league_id = ? AND season = ?", int64(39), 2024),
		).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT public_id, status FROM collection_jobs WHERE status IN ($1, $2) AND league_id = $3 AND season = $4 ORDER BY id DESC LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != int64(39) || args[3] != 2024 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyIn(t *testing.T) {
	query, args, err := Select("date").
		From("quota_ledgers").
		Where(In("date", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT date FROM quota_ledgers WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("quota_ledgers").
		Columns("date", "daily_limit").
		Values("2026-08-31", 7500).
		Suffix("ON CONFLICT (date) DO NOTHING RETURNING date").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO quota_ledgers (date, daily_limit) VALUES ($1, $2) ON CONFLICT (date) DO NOTHING RETURNING date"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "2026-08-31" || args[1] != 7500 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("quota_ledgers").
		Set("requests_remaining", 7400).
		SetExpr("requests_used", "requests_used + ?", 1).
		SetExpr("last_updated", "NOW()").
		Where(Eq("date", "2026-08-31")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE quota_ledgers SET requests_remaining = $1, requests_used = requests_used + $2, last_updated = NOW() WHERE date = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != 7400 || args[1] != 1 || args[2] != "2026-08-31" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
