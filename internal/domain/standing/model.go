package standing

// Standing is one table row, unique per (competition, season, team).
type Standing struct {
	ID             int64
	CompetitionID  int64
	SeasonID       int64
	TeamID         int64
	Position       int
	PlayedGames    int
	Won            int
	Draw           int
	Lost           int
	Points         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Form           string
}
