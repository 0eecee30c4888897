package geo

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// DegreesPerKM is an approximate conversion factor for latitude degrees to kilometers.
// At mid-latitudes, 1 degree of latitude is approximately 111 km.
const DegreesPerKM = 1.0 / 111.0

const (
	// DefaultCellKM is the grid cell spacing used when none is given.
	DefaultCellKM = 1.5
	// DefaultRadiusM is the per-cell search radius used when none is given.
	DefaultRadiusM = 1000
)

// Cell is one search point in a city coverage grid.
type Cell struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusM   int     `json:"radius_m"`
	CellID    string  `json:"cell_id"`
}

// GenerateGrid covers a boundary with cells spaced cellKM apart. Rows run
// south to north, columns west to east, both edges inclusive. Cell IDs are
// "{city}-{n}" with n starting at 1 in generation order.
func GenerateGrid(b Boundary, cellKM float64, radiusM int) []Cell {
	latStep := cellKM * DegreesPerKM
	centerLat := (b.MinLat + b.MaxLat) / 2
	lngStep := cellKM / (111.0 * math.Cos(centerLat*math.Pi/180))

	var cells []Cell
	n := 0
	for lat := b.MinLat; lat <= b.MaxLat; lat += latStep {
		for lng := b.MinLng; lng <= b.MaxLng; lng += lngStep {
			n++
			cells = append(cells, Cell{
				Latitude:  lat,
				Longitude: lng,
				RadiusM:   radiusM,
				CellID:    fmt.Sprintf("%s-%d", b.Name, n),
			})
		}
	}

	zap.L().Debug("generated grid",
		zap.String("city", b.Name),
		zap.Float64("cell_km", cellKM),
		zap.Int("cells", len(cells)),
		zap.Float64("area_km2", AreaKM2(b)),
	)
	return cells
}

// GenerateForCity resolves a city boundary and generates its grid. Zero or
// negative cellKM and radiusM fall back to the defaults.
func GenerateForCity(city string, cellKM float64, radiusM int) ([]Cell, error) {
	b, err := LookupBoundary(city)
	if err != nil {
		return nil, err
	}
	if cellKM <= 0 {
		cellKM = DefaultCellKM
	}
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}
	return GenerateGrid(b, cellKM, radiusM), nil
}

// AreaKM2 returns the approximate area of a boundary rectangle in square
// kilometers.
func AreaKM2(b Boundary) float64 {
	centerLat := (b.MinLat + b.MaxLat) / 2
	latKM := (b.MaxLat - b.MinLat) * 111.0
	lngKM := (b.MaxLng - b.MinLng) * 111.0 * math.Cos(centerLat*math.Pi/180)
	return latKM * lngKM
}
