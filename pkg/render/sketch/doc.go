// Package sketch draws a solved snapshot as an SVG line drawing.
//
// Nodes are circles (filled when pinned), connections are solid lines, and
// rails are dotted lines running past their end nodes. With [WithOverlay]
// every constraint is annotated: distances get a dashed dimension line with
// their current length, angles an arc at the pivot with their value in
// degrees. Constraints outside their bounds are drawn in red.
//
//	svg := sketch.RenderSVG(snap, sketch.WithLabels(), sketch.WithOverlay())
//
// [RenderPNG] and [RenderPDF] wrap the SVG output with the conversions in
// the parent render package.
package sketch
