package gps

import (
	"fmt"
	"math"
)

// locationEntry is one row of the built-in reverse-geocoding table.
type locationEntry struct {
	lat  float64
	lon  float64
	name string
}

// locationDB holds approximate coordinates for well-known cities. This is a
// brute-force lookup table, not a geospatial index; matches use plain
// Euclidean distance in degrees.
var locationDB = []locationEntry{
	{40.7128, -74.0060, "New York, USA"},
	{34.0522, -118.2437, "Los Angeles, USA"},
	{41.8781, -87.6298, "Chicago, USA"},
	{37.7749, -122.4194, "San Francisco, USA"},
	{29.7604, -95.3698, "Houston, USA"},
	{33.4484, -112.0740, "Phoenix, USA"},
	{25.7617, -80.1918, "Miami, USA"},
	{47.6062, -122.3321, "Seattle, USA"},
	{39.7392, -104.9903, "Denver, USA"},
	{38.9072, -77.0369, "Washington DC, USA"},
	{42.3601, -71.0589, "Boston, USA"},
	{36.1699, -115.1398, "Las Vegas, USA"},
	{43.6532, -79.3832, "Toronto, Canada"},
	{45.5017, -73.5673, "Montreal, Canada"},
	{49.2827, -123.1207, "Vancouver, Canada"},
	{19.4326, -99.1332, "Mexico City, Mexico"},
	{-23.5505, -46.6333, "Sao Paulo, Brazil"},
	{-22.9068, -43.1729, "Rio de Janeiro, Brazil"},
	{-34.6037, -58.3816, "Buenos Aires, Argentina"},
	{-33.4489, -70.6693, "Santiago, Chile"},
	{4.7110, -74.0721, "Bogota, Colombia"},
	{-12.0464, -77.0428, "Lima, Peru"},
	{51.5074, -0.1278, "London, UK"},
	{48.8566, 2.3522, "Paris, France"},
	{52.5200, 13.4050, "Berlin, Germany"},
	{48.1351, 11.5820, "Munich, Germany"},
	{41.9028, 12.4964, "Rome, Italy"},
	{45.4642, 9.1900, "Milan, Italy"},
	{40.4168, -3.7038, "Madrid, Spain"},
	{41.3851, 2.1734, "Barcelona, Spain"},
	{38.7223, -9.1393, "Lisbon, Portugal"},
	{52.3676, 4.9041, "Amsterdam, Netherlands"},
	{50.8503, 4.3517, "Brussels, Belgium"},
	{47.3769, 8.5417, "Zurich, Switzerland"},
	{48.2082, 16.3738, "Vienna, Austria"},
	{50.0755, 14.4378, "Prague, Czech Republic"},
	{52.2297, 21.0122, "Warsaw, Poland"},
	{59.3293, 18.0686, "Stockholm, Sweden"},
	{59.9139, 10.7522, "Oslo, Norway"},
	{55.6761, 12.5683, "Copenhagen, Denmark"},
	{60.1699, 24.9384, "Helsinki, Finland"},
	{53.3498, -6.2603, "Dublin, Ireland"},
	{37.9838, 23.7275, "Athens, Greece"},
	{41.0082, 28.9784, "Istanbul, Turkey"},
	{55.7558, 37.6173, "Moscow, Russia"},
	{30.0444, 31.2357, "Cairo, Egypt"},
	{6.5244, 3.3792, "Lagos, Nigeria"},
	{-1.2921, 36.8219, "Nairobi, Kenya"},
	{-26.2041, 28.0473, "Johannesburg, South Africa"},
	{-33.9249, 18.4241, "Cape Town, South Africa"},
	{25.2048, 55.2708, "Dubai, UAE"},
	{28.6139, 77.2090, "New Delhi, India"},
	{19.0760, 72.8777, "Mumbai, India"},
	{12.9716, 77.5946, "Bangalore, India"},
	{13.7563, 100.5018, "Bangkok, Thailand"},
	{1.3521, 103.8198, "Singapore"},
	{3.1390, 101.6869, "Kuala Lumpur, Malaysia"},
	{-6.2088, 106.8456, "Jakarta, Indonesia"},
	{14.5995, 120.9842, "Manila, Philippines"},
	{22.3193, 114.1694, "Hong Kong"},
	{31.2304, 121.4737, "Shanghai, China"},
	{39.9042, 116.4074, "Beijing, China"},
	{37.5665, 126.9780, "Seoul, South Korea"},
	{35.6762, 139.6503, "Tokyo, Japan"},
	{34.6937, 135.5023, "Osaka, Japan"},
	{-33.8688, 151.2093, "Sydney, Australia"},
	{-37.8136, 144.9631, "Melbourne, Australia"},
	{-36.8485, 174.7633, "Auckland, New Zealand"},
}

// matchRadius is the degree distance beyond which a table entry is not
// considered a match. The value is a coarse heuristic; near the threshold
// the nearest city can be a poor description of the actual position.
const matchRadius = 8.0

// ReverseGeocode maps a coordinate to the nearest known city name. When no
// table entry is within the match radius, a plain coordinate string is
// returned instead.
func ReverseGeocode(latitude, longitude float64) string {
	closestName := ""
	closestDistance := math.Inf(1)

	for _, entry := range locationDB {
		d := math.Hypot(latitude-entry.lat, longitude-entry.lon)
		if d < closestDistance {
			closestDistance = d
			closestName = entry.name
		}
	}

	if closestDistance < matchRadius {
		return closestName
	}
	return fmt.Sprintf("Coordinates: %.4f°, %.4f°", latitude, longitude)
}
