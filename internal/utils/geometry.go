package utils

import "math"

// RadiusOfEarthInMeters is the mean Earth radius used by Distance.
const RadiusOfEarthInMeters = 6371010.0

// CoordinateBounds is a latitude/longitude bounding box.
type CoordinateBounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// Extend grows b to include the point. A zero-value box is seeded by the first point.
func (b CoordinateBounds) Extend(lat, lon float64, first bool) CoordinateBounds {
	if first {
		return CoordinateBounds{MinLat: lat, MaxLat: lat, MinLon: lon, MaxLon: lon}
	}
	b.MinLat = math.Min(b.MinLat, lat)
	b.MaxLat = math.Max(b.MaxLat, lat)
	b.MinLon = math.Min(b.MinLon, lon)
	b.MaxLon = math.Max(b.MaxLon, lon)
	return b
}

// Center returns the midpoint of the box.
func (b CoordinateBounds) Center() (lat, lon float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLon + b.MaxLon) / 2
}

// Distance returns the great-circle distance in meters between two points.
// Points less than 0.2 degrees apart, which covers the whole subway network,
// use the equirectangular approximation.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLonRad := (lon2 - lon1) * math.Pi / 180

	if math.Abs(lat2-lat1) < 0.2 && math.Abs(lon2-lon1) < 0.2 {
		x := dLonRad * math.Cos((lat1Rad+lat2Rad)/2)
		y := lat2Rad - lat1Rad
		return RadiusOfEarthInMeters * math.Sqrt(x*x+y*y)
	}

	y := math.Hypot(
		math.Cos(lat2Rad)*math.Sin(dLonRad),
		math.Cos(lat1Rad)*math.Sin(lat2Rad)-math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLonRad),
	)
	x := math.Sin(lat1Rad)*math.Sin(lat2Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLonRad)
	return RadiusOfEarthInMeters * math.Atan2(y, x)
}

// CalculateBounds returns the box that encloses a circle of radius meters around a point.
func CalculateBounds(lat, lon, radius float64) CoordinateBounds {
	latRad := lat * math.Pi / 180
	lonRad := lon * math.Pi / 180

	latOffset := radius / RadiusOfEarthInMeters
	lonOffset := radius / (math.Cos(latRad) * RadiusOfEarthInMeters)

	return CoordinateBounds{
		MinLat: (latRad - latOffset) * 180 / math.Pi,
		MaxLat: (latRad + latOffset) * 180 / math.Pi,
		MinLon: (lonRad - lonOffset) * 180 / math.Pi,
		MaxLon: (lonRad + lonOffset) * 180 / math.Pi,
	}
}

// IsOutOfBounds reports whether inner and outer do not overlap at all.
func IsOutOfBounds(inner, outer CoordinateBounds) bool {
	return inner.MaxLat < outer.MinLat ||
		inner.MinLat > outer.MaxLat ||
		inner.MaxLon < outer.MinLon ||
		inner.MinLon > outer.MaxLon
}
