package postgres

import "time"

type matchTableModel struct {
	ID            int64     `db:"id"`
	HomeTeamID    int64     `db:"home_team_id"`
	AwayTeamID    int64     `db:"away_team_id"`
	CompetitionID int64     `db:"competition_id"`
	SeasonID      int64     `db:"season_id"`
	MatchDate     time.Time `db:"match_date"`
	Status        string    `db:"status"`
	HomeScore     *int      `db:"home_score"`
	AwayScore     *int      `db:"away_score"`
	Venue         string    `db:"venue"`
	Referee       string    `db:"referee"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type matchInsertModel struct {
	HomeTeamID    int64     `db:"home_team_id"`
	AwayTeamID    int64     `db:"away_team_id"`
	CompetitionID int64     `db:"competition_id"`
	SeasonID      int64     `db:"season_id"`
	MatchDate     time.Time `db:"match_date"`
	Status        string    `db:"status"`
	HomeScore     *int      `db:"home_score"`
	AwayScore     *int      `db:"away_score"`
	Venue         string    `db:"venue"`
	Referee       string    `db:"referee"`
}
