// Package pkg provides the libraries behind modelsketch, a spring solver for
// hand-drawn geometric sketches.
//
// # Overview
//
// A sketch is a set of points joined by lines, plus constraints such as "this
// side is 100 long", "this angle follows that one" or "this point slides on
// that line". Modelsketch turns every constraint into springs and lets the
// drawing relax frame by frame. The pkg directory is organized into layers:
//
//  1. [geom] - Points and the few formulas the solver needs
//  2. [construction] - Nodes, springs and the integrator
//  3. [meta] - Constraints with literal or referenced bounds, pushed into springs each frame
//  4. [scene] - TOML scene files, validation and model building
//  5. [graph] - The JSON snapshot of a solved sketch
//  6. [render] - SVG, PNG and PDF drawings and the graphviz constraint graph
//  7. [pipeline] - Orchestration (parse → solve → render) with caching
//
// # Architecture
//
// The typical data flow through modelsketch:
//
//	scene.toml
//	     ↓
//	[scene] package (decode + validate + build)
//	     ↓
//	[meta] / [construction] packages (step frames)
//	     ↓
//	[graph] package (snapshot)
//	     ↓
//	SVG/PNG/PDF/JSON/DOT output
//
// # Quick Start
//
//	s, _ := scene.Load("examples/triangle.toml")
//	m, _ := scene.Build(s)
//	m.Run(ctx, scene.RunOptions{Settle: true})
//	svg := sketch.RenderSVG(m.Snapshot(), sketch.WithLabels())
//
// Or use the pipeline, which adds caching and every output format:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{ScenePath: "triangle.toml", Settle: true})
package pkg
