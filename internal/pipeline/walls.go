package pipeline

import (
	"math"
	"strconv"

	"github.com/joseph-ayodele/plan-parser/constants"
	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

// footprintAspect is the length:width ratio assumed when reconstructing the
// building outline from room areas.
const footprintAspect = 1.5

// deriveWalls estimates wall runs from the room schedule. The outline is a
// rectangle with the summed room area; internal walls are the remaining
// room perimeter, halved because each is shared by two rooms.
func deriveWalls(rooms []entity.RoomRecord, vocab constants.Vocabulary) (*entity.WallDimensions, *entity.WallProperties) {
	var area, perimeter float64
	height := parseMeters(vocab.Defaults.Height)
	for i, r := range rooms {
		l, w := parseMeters(r.Length), parseMeters(r.Width)
		area += l * w
		perimeter += 2 * (l + w)
		if i == 0 {
			if h := parseMeters(r.Height); h > 0 {
				height = h
			}
		}
	}
	width := math.Sqrt(area / footprintAspect)
	length := width * footprintAspect
	external := 2 * (length + width)
	internal := math.Max(0, perimeter-external) / 2

	dims := &entity.WallDimensions{
		ExternalWallPerimeter: constants.Round3(external),
		InternalWallPerimeter: constants.Round3(internal),
		ExternalWallHeight:    constants.Round3(height),
		InternalWallHeight:    constants.Round3(height),
		Length:                constants.Round3(length),
		Width:                 constants.Round3(width),
	}
	props := &entity.WallProperties{
		BlockType: vocab.Defaults.BlockType,
		Thickness: parseMeters(vocab.Defaults.Thickness),
		Plaster:   vocab.Defaults.Plaster,
	}
	return dims, props
}

func parseMeters(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
