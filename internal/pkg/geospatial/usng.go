package geospatial

import (
	"fmt"
	"math"
	"strings"
)

const (
	blockSize = 100000 // 100 km square

	setRowSize = 20
	setColSize = 8
)

// Column letters of the 100 km squares repeat every three zones.
var setColumns = [...]string{
	"ABCDEFGH",
	"JKLMNPQR",
	"STUVWXYZ",
}

// Row letters alternate between odd and even numbered sets.
const (
	oddSetRows  = "ABCDEFGHJKLMNPQRSTUV"
	evenSetRows = "FGHJKLMNPQRSTUVABCDE"
)

// gridSet returns the 100 km letter set (1-6) of a zone.
func gridSet(zone int) int {
	s := zone % 6
	if s <= 0 {
		s += 6
	}
	return s
}

// GridSquareID returns the two-letter 100 km square identifier for a UTM position.
// Northing must already carry the southern hemisphere false northing.
func GridSquareID(zone int, northing, easting float64) string {
	north := math.Round(northing)
	east := math.Round(easting)

	row := (1 + int(math.Floor(north/blockSize))) % setRowSize
	col := int(math.Floor(east/blockSize)) % setColSize
	if row < 0 {
		row += setRowSize
	}
	if col < 0 {
		col += setColSize
	}

	// row and col are one-based with the wrap landing on zero
	if row == 0 {
		row = setRowSize - 1
	} else {
		row--
	}
	if col == 0 {
		col = setColSize - 1
	} else {
		col--
	}

	set := gridSet(zone)
	rows := oddSetRows
	if set%2 == 0 {
		rows = evenSetRows
	}
	return string([]byte{setColumns[(set-1)%3][col], rows[row]})
}

// ToUSNG formats a position as a USNG string. digits selects the precision per
// axis: 0 for the 100 km square only, up to 5 for one meter.
//
//	5 -> "18S UJ 23487 06483"
//	2 -> "18S UJ 23 06"
func (p *Projection) ToUSNG(lat, lon float64, digits int) (string, error) {
	if digits < 0 || digits > 5 {
		return "", fmt.Errorf("usng precision %d out of range 0-5", digits)
	}

	utm, err := p.ToUTM(lat, lon, 0)
	if err != nil {
		return "", err
	}
	northing := utm.FalseNorthing()

	var b strings.Builder
	fmt.Fprintf(&b, "%d%s %s", utm.Zone, utm.Letter, GridSquareID(utm.Zone, northing, utm.Easting))
	if digits == 0 {
		return b.String(), nil
	}

	div := int64(math.Pow10(5 - digits))
	e := (int64(math.Round(utm.Easting)) % blockSize) / div
	n := (int64(math.Round(northing)) % blockSize) / div
	fmt.Fprintf(&b, " %0*d %0*d", digits, e, digits, n)
	return b.String(), nil
}
