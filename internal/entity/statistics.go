package entity

// Statistics are advisory process-wide counters.
type Statistics struct {
	PlayersActive int64 `json:"players_active" redis:"players_active"`
	GamesStarted  int64 `json:"games_started" redis:"games_started"`
	TilesPlaced   int64 `json:"tiles_placed" redis:"tiles_placed"`
}
