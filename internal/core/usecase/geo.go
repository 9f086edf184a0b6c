package usecase

import (
	"math"

	"github.com/mmcloughlin/geohash"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.32
	maxGeohashLen = 9
)

// haversineKm - расстояние по поверхности Земли между двумя точками.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// coveringCells подбирает самую мелкую точность geohash, при которой ячейка
// точки и ее 8 соседей покрывают круг радиуса radiusKm.
// nil означает, что радиус больше любой ячейки и фильтровать по ячейкам нельзя.
func coveringCells(lat, lng, radiusKm float64) []string {
	for precision := uint(maxGeohashLen); precision >= 1; precision-- {
		hash := geohash.EncodeWithPrecision(lat, lng, precision)
		box := geohash.BoundingBox(hash)

		heightKm := (box.MaxLat - box.MinLat) * kmPerDegree
		widthKm := (box.MaxLng - box.MinLng) * kmPerDegree * math.Cos(lat*math.Pi/180)
		if math.Min(heightKm, widthKm) < radiusKm {
			continue
		}

		cells := append([]string{hash}, geohash.Neighbors(hash)...)
		return cells
	}
	return nil
}
