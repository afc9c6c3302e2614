package providers

// parkFactors is the multiplicative HR friendliness of each ballpark
// relative to league average, keyed by home team abbreviation.
var parkFactors = map[string]float64{
	"ARI": 1.05, "ATL": 1.04, "BAL": 1.08, "BOS": 0.96, "CHC": 1.02,
	"CWS": 1.10, "CIN": 1.15, "CLE": 0.98, "COL": 1.12, "DET": 0.93,
	"HOU": 1.06, "KC": 0.92, "LAA": 1.03, "LAD": 1.07, "MIA": 0.90,
	"MIL": 1.06, "MIN": 0.99, "NYM": 0.97, "NYY": 1.09, "OAK": 0.91,
	"PHI": 1.08, "PIT": 0.94, "SD": 0.96, "SEA": 0.95, "SF": 0.90,
	"STL": 0.95, "TB": 0.93, "TEX": 1.02, "TOR": 1.04, "WSH": 1.00,
}

// BallparkLocation is the coordinate used for weather lookups. Indoor
// parks are skipped by the weather stage.
type BallparkLocation struct {
	Latitude  float64
	Longitude float64
	Indoor    bool
}

var ballparkLocations = map[string]BallparkLocation{
	"ARI": {33.4455, -112.0667, true},
	"ATL": {33.8907, -84.4677, false},
	"BAL": {39.2839, -76.6217, false},
	"BOS": {42.3467, -71.0972, false},
	"CHC": {41.9484, -87.6553, false},
	"CWS": {41.8299, -87.6338, false},
	"CIN": {39.0975, -84.5066, false},
	"CLE": {41.4962, -81.6852, false},
	"COL": {39.7559, -104.9942, false},
	"DET": {42.3390, -83.0485, false},
	"HOU": {29.7573, -95.3555, true},
	"KC":  {39.0517, -94.4803, false},
	"LAA": {33.8003, -117.8827, false},
	"LAD": {34.0739, -118.2400, false},
	"MIA": {25.7781, -80.2196, true},
	"MIL": {43.0280, -87.9712, true},
	"MIN": {44.9817, -93.2776, false},
	"NYM": {40.7571, -73.8458, false},
	"NYY": {40.8296, -73.9262, false},
	"OAK": {37.7516, -122.2005, false},
	"PHI": {39.9061, -75.1665, false},
	"PIT": {40.4469, -80.0057, false},
	"SD":  {32.7076, -117.1570, false},
	"SEA": {47.5914, -122.3325, true},
	"SF":  {37.7786, -122.3893, false},
	"STL": {38.6226, -90.1928, false},
	"TB":  {27.7682, -82.6534, true},
	"TEX": {32.7473, -97.0842, true},
	"TOR": {43.6414, -79.3894, true},
	"WSH": {38.8730, -77.0074, false},
}

// ParkFactor returns the HR park factor for a home team, 1.0 when the
// team is unknown.
func ParkFactor(homeTeam string) float64 {
	if factor, ok := parkFactors[homeTeam]; ok {
		return factor
	}
	return 1.0
}

// LocationFor returns the ballpark coordinates for a home team.
func LocationFor(homeTeam string) (BallparkLocation, bool) {
	loc, ok := ballparkLocations[homeTeam]
	return loc, ok
}
