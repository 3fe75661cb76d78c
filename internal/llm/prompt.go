package llm

import (
	"fmt"
	"strings"
)

// InstructionVersion is recorded with every remote call so replies can be
// traced back to the instruction that produced them.
const InstructionVersion = "plan-v3"

// InstructionOptions are the configurable parts of the instruction.
type InstructionOptions struct {
	Mode              string // "rooms" or "walls"
	RebarNotation     string // "Y" or "D"
	GroundFloorFloors int    // floors implied by a lone "ground floor"
	Defaults          RoomDefaultsHint
}

// RoomDefaultsHint are the values the model should use when the drawing is silent.
type RoomDefaultsHint struct {
	Height    string
	Thickness string
	BlockType string
	Plaster   string
}

// BuildInstruction composes the fixed structured-output instruction sent
// alongside the document.
func BuildInstruction(opts InstructionOptions) string {
	rebar := strings.TrimSpace(opts.RebarNotation)
	if rebar == "" {
		rebar = "Y"
	}
	ground := opts.GroundFloorFloors
	if ground < 1 {
		ground = 1
	}

	parts := []string{
		"You are an architectural drawing analyst. Read the attached floor plan and return ONLY one JSON object, no prose, no code fences.",
		`Shape: {"rooms":[{"roomType":string,"room_name":string,"length":string,"width":string,"height":string,"thickness":string,"blockType":string,"plaster":string,"doors":[{"sizeType":"standard"|"custom","standardSize":string,"custom":{"height":string,"width":string},"type":string,"frame":string,"count":integer}],"windows":[{"sizeType":"standard"|"custom","standardSize":string,"custom":{"height":string,"width":string},"glass":string,"frame":string,"count":integer}]}],"floors":integer}.`,
		"All measurements are decimal strings in meters (\"4.5\", not \"4500mm\" and not 4.5).",
		"List every distinct room once. rooms must not be empty.",
		fmt.Sprintf("Count floors from level labels. A drawing that only mentions the ground floor has %d floor(s).", ground),
		fmt.Sprintf("Reinforcement bars use the %s prefix (e.g. %s10, %s12).", rebar, rebar, rebar),
	}
	if d := opts.Defaults; d.Height != "" {
		parts = append(parts, fmt.Sprintf(
			"When the drawing is silent use height %q, thickness %q, blockType %q, plaster %q.",
			d.Height, d.Thickness, d.BlockType, d.Plaster))
	}
	if opts.Mode == "walls" {
		parts = append(parts,
			`Also include "wallDimensions":{"externalWallPerimiter":number,"internalWallPerimiter":number,"externalWallHeight":number,"internalWallHeight":number} and "wallProperties":{"blockType":string,"thickness":number,"plaster":string}, numbers in meters.`)
	}
	parts = append(parts,
		`If the document is not a floor plan, return {"error":"<reason>"}.`,
		"Never output null. Omit fields you cannot read.",
		"Instruction version: "+InstructionVersion+".",
	)
	return strings.Join(parts, " ")
}
