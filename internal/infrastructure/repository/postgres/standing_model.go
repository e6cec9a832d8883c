package postgres

import "time"

type standingTableModel struct {
	ID             int64     `db:"id"`
	CompetitionID  int64     `db:"competition_id"`
	SeasonID       int64     `db:"season_id"`
	TeamID         int64     `db:"team_id"`
	Position       int       `db:"position"`
	PlayedGames    int       `db:"played_games"`
	Won            int       `db:"won"`
	Draw           int       `db:"draw"`
	Lost           int       `db:"lost"`
	Points         int       `db:"points"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	GoalDifference int       `db:"goal_difference"`
	Form           string    `db:"form"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type standingInsertModel struct {
	CompetitionID  int64  `db:"competition_id"`
	SeasonID       int64  `db:"season_id"`
	TeamID         int64  `db:"team_id"`
	Position       int    `db:"position"`
	PlayedGames    int    `db:"played_games"`
	Won            int    `db:"won"`
	Draw           int    `db:"draw"`
	Lost           int    `db:"lost"`
	Points         int    `db:"points"`
	GoalsFor       int    `db:"goals_for"`
	GoalsAgainst   int    `db:"goals_against"`
	GoalDifference int    `db:"goal_difference"`
	Form           string `db:"form"`
}
