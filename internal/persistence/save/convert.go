package save

import (
	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/mathx"
)

func EncodeStructures(in []build.Structure) []StructureV1 {
	out := make([]StructureV1, 0, len(in))
	for _, s := range in {
		out = append(out, StructureV1{
			ID:       s.ID,
			Position: s.Position.ToArray(),
			Kind:     string(s.Kind),
			Rotation: s.Rotation,
		})
	}
	return out
}

func DecodeStructures(in []StructureV1) []build.Structure {
	out := make([]build.Structure, 0, len(in))
	for _, s := range in {
		out = append(out, build.Structure{
			ID:       s.ID,
			Position: mathx.FromArray(s.Position),
			Kind:     build.Kind(s.Kind),
			Rotation: build.NormalizeRadians(s.Rotation),
		})
	}
	return out
}
