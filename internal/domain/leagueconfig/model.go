package leagueconfig

// Config drives which leagues are eligible for collection and in what
// order. It is external input: this subsystem reads it and only ever
// increments its own aggregate usage counter.
type Config struct {
	LeagueID          int64
	Name              string
	Priority          int
	Active            bool
	CollectFixtures   bool
	CollectStatistics bool
	CollectStandings  bool
	Seasons           []int
	RequestsUsed      int64
}

// TracksSeason reports whether the config lists the season.
func (c Config) TracksSeason(season int) bool {
	for _, s := range c.Seasons {
		if s == season {
			return true
		}
	}
	return false
}
