package scoring

import "strings"

// Defaults when team pitching data is unavailable.
const (
	defaultStarterIP  = 5.0
	defaultBullpenHR9 = 1.0
)

// teamAbbrevs normalizes the team-name variants the lineup feeds emit.
var teamAbbrevs = map[string]string{
	"ARIZONA": "ARI", "ATLANTA": "ATL", "BALTIMORE": "BAL",
	"BOSTON": "BOS", "CUBS": "CHC", "CHICAGO": "CHC",
	"WHITE SOX": "CWS", "CINCINNATI": "CIN", "CLEVELAND": "CLE",
	"COLORADO": "COL", "DETROIT": "DET", "HOUSTON": "HOU",
	"KANSAS CITY": "KC", "ANGELS": "LAA", "DODGERS": "LAD",
	"LOS ANGELES": "LAD", "MIAMI": "MIA", "MILWAUKEE": "MIL",
	"MINNESOTA": "MIN", "METS": "NYM", "YANKEES": "NYY",
	"NEW YORK": "NYY", "OAKLAND": "OAK", "PHILADELPHIA": "PHI",
	"PITTSBURGH": "PIT", "SAN DIEGO": "SD", "PADRES": "SD",
	"SAN FRANCISCO": "SF", "GIANTS": "SF", "SEATTLE": "SEA",
	"ST. LOUIS": "STL", "TAMPA BAY": "TB", "RAYS": "TB",
	"TEXAS": "TEX", "RANGERS": "TEX", "TORONTO": "TOR",
	"WASHINGTON": "WSH", "NATIONALS": "WSH",
}

// NormalizeTeamCode maps a team name or nickname to its abbreviation.
// Unrecognized names pass through uppercased.
func NormalizeTeamCode(team string) string {
	upper := strings.ToUpper(strings.TrimSpace(team))
	if code, ok := teamAbbrevs[upper]; ok {
		return code
	}
	return upper
}

// BullpenBoost scales with how early the starter leaves and how
// HR-prone the bullpen behind him is. A short starter in front of a
// bad bullpen means more late-game at-bats against weak relievers.
func BullpenBoost(starterAvgIP, bullpenHR9 float64) float64 {
	if starterAvgIP <= 0 {
		starterAvgIP = defaultStarterIP
	}
	if bullpenHR9 <= 0 {
		bullpenHR9 = defaultBullpenHR9
	}
	return (6.0 - starterAvgIP) * (bullpenHR9 / 1.0)
}
