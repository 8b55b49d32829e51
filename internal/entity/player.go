package entity

import "math/rand"

const (
	RolePlayer   = "player"
	RoleObserver = "observer"
)

// Player - tournament participant as announced by the server.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScoreRow - one line of the tournament score table.
type ScoreRow struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Score float64 `json:"score"`
}

// Roster - player id to display name.
type Roster map[string]string

func (that Roster) Join(player Player) {
	that[player.ID] = player.Name
}

func (that Roster) Drop(id string) {
	delete(that, id)
}

// NameOf - returns the display name of a player, or the id if the player is unknown.
func (that Roster) NameOf(id string) string {
	if name, ok := that[id]; ok && name != "" {
		return name
	}

	return id
}

// ResolveScores - fills in display names for the score rows.
func (that Roster) ResolveScores(rows []ScoreRow) []ScoreRow {
	resolved := make([]ScoreRow, len(rows))
	for i, row := range rows {
		row.Name = that.NameOf(row.ID)
		resolved[i] = row
	}

	return resolved
}

var RandomNames = []string{
	"Luke Skywalker",
	"Jean-Luc Picard",
	"Malcolm Reynolds",
	"Homer Simpson",
	"Peter Griffin",
	"Fred Flintstone",
	"Ted Lasso",
	"Walter White",
	"Bandit Heeler",
	"Calvin and Hobbes",
	"A Cow from The Far Side",
	"Garfield",
	"Snoopy",
	"You from the Future",
	"Doc Brown",
	"Marty McFly",
	"Captain Jack Sparrow",
}

// PickRandomName - picks a display name for a player who didn't choose one.
func PickRandomName(rnd *rand.Rand) string {
	if rnd == nil {
		return RandomNames[rand.Intn(len(RandomNames))] //nolint: gosec // it's ok
	}

	return RandomNames[rnd.Intn(len(RandomNames))]
}

// PlayerStats - lifetime results of one player name across tournaments.
type PlayerStats struct {
	Name       string `json:"name"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Stalemates int    `json:"stalemates"`
}

func (that *PlayerStats) Played() int {
	return that.Wins + that.Losses + that.Stalemates
}
