// Package geodist computes great-circle distances between geographic points.
//
// The package implements the haversine formula on a spherical Earth model,
// which is accurate to within ~0.5% for the distances relevant to login
// anomaly detection (city-to-city and continent-to-continent jumps).
//
// # Usage
//
//	sf := geodist.Point{Lat: 37.7749, Lon: -122.4194}
//	ny := geodist.Point{Lat: 40.7128, Lon: -74.0060}
//
//	km := geodist.Haversine(sf, ny) // ~4130 km
//
// Distances are returned in kilometers.
package geodist
