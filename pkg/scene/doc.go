// Package scene loads sketches from TOML files and builds solver models.
//
// A scene declares named nodes and the constraints between them:
//
//	name = "triangle"
//
//	[[node]]
//	name = "A"
//	x = 0
//	y = 0
//	fixed = true
//
//	[[node]]
//	name = "B"
//	x = 180
//	y = 0
//
//	[[distance]]
//	name = "base"
//	a = "A"
//	b = "B"
//	length = 100
//
//	[[angle]]
//	a = "A"
//	b = "C"
//	pivot = "B"
//	min = 30
//	max = 60
//
//	[[rail]]
//	a = "A"
//	b = "B"
//	captives = ["M"]
//
//	[[drag]]
//	node = "B"
//	to_x = 240
//	to_y = 40
//	frames = 30
//
//	[tuning]
//	stiffness = 300
//
// Bounds are literal numbers or the name of another constraint whose live
// quantity is used instead ("equal", "min_ref", "max_ref", "ref"). Distances
// follow distances or rails; angles follow angles.
//
// [Build] validates the whole scene before creating anything and reports
// every problem it finds as an [errors.List]. The returned [Model] owns the
// meta graph and the name tables, and can be advanced with [Model.Run] or
// [Model.Step] and exported with [Model.Snapshot].
//
// [errors.List]: github.com/matzehuels/modelsketch/pkg/errors
package scene
