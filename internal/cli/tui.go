package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/modelsketch/pkg/construction"
	"github.com/matzehuels/modelsketch/pkg/geom"
	"github.com/matzehuels/modelsketch/pkg/graph"
	"github.com/matzehuels/modelsketch/pkg/scene"
)

// Canvas styles
var (
	canvasEdgeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	canvasViolatedStyle = lipgloss.NewStyle().Foreground(colorRed)
	canvasRailStyle     = lipgloss.NewStyle().Foreground(colorBlue)
	canvasNodeStyle     = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	canvasFixedStyle    = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	canvasLabelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	canvasCursorStyle   = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

const (
	// statusLines is the number of rows below the canvas.
	statusLines = 2

	// viewFrequency and viewDamping tune the auto-fit spring. A damping
	// ratio of 1 reaches the target without overshoot.
	viewFrequency = 4.0
	viewDamping   = 1.0

	// hitCells is the pick radius around the cursor, in rows.
	hitCells = 1.5

	glyphNode  = '●'
	glyphFixed = '■'
)

// =============================================================================
// Viewport - smooth auto-fit
// =============================================================================

// viewAxis is one animated viewport quantity.
type viewAxis struct {
	pos, vel float64
}

// viewport maps scene coordinates to terminal cells. Its center and scale
// follow the sketch's bounding box through a critically damped spring, so
// the view glides instead of jumping when nodes move.
type viewport struct {
	spring harmonica.Spring
	cx, cy viewAxis
	scale  viewAxis // scene units per row; a column covers half a row
	cols   int
	rows   int
	primed bool
}

func newViewport(fps int) viewport {
	return viewport{spring: harmonica.NewSpring(harmonica.FPS(fps), viewFrequency, viewDamping)}
}

// resize sets the canvas size in cells.
func (v *viewport) resize(cols, rows int) {
	v.cols, v.rows = max(cols, 1), max(rows, 1)
}

// fit moves the viewport one frame towards framing lo..hi. The first call
// jumps straight to the target.
func (v *viewport) fit(lo, hi geom.Point) {
	span := hi.Sub(lo)
	scale := max(span.Y/float64(v.rows), 2*span.X/float64(v.cols)) * 1.25
	scale = max(scale, 1)
	cx, cy := (lo.X+hi.X)/2, (lo.Y+hi.Y)/2

	if !v.primed {
		v.cx.pos, v.cy.pos, v.scale.pos = cx, cy, scale
		v.primed = true
		return
	}
	v.step(&v.cx, cx)
	v.step(&v.cy, cy)
	v.step(&v.scale, scale)
}

func (v *viewport) step(a *viewAxis, target float64) {
	a.pos, a.vel = v.spring.Update(a.pos, a.vel, target)
}

// toCell returns the cell that shows p.
func (v *viewport) toCell(p geom.Point) (col, row int) {
	col = int(math.Round((p.X-v.cx.pos)/(v.scale.pos/2) + float64(v.cols)/2))
	row = int(math.Round((p.Y-v.cy.pos)/v.scale.pos + float64(v.rows)/2))
	return col, row
}

// toScene returns the scene point at the center of a cell.
func (v *viewport) toScene(col, row int) geom.Point {
	return geom.Pt(
		v.cx.pos+(float64(col)-float64(v.cols)/2)*v.scale.pos/2,
		v.cy.pos+(float64(row)-float64(v.rows)/2)*v.scale.pos,
	)
}

// =============================================================================
// Canvas - styled cell grid
// =============================================================================

type cell struct {
	r     rune
	style *lipgloss.Style
}

type canvas struct {
	cols, rows int
	cells      []cell
}

func newCanvas(cols, rows int) *canvas {
	c := &canvas{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) set(col, row int, r rune, style *lipgloss.Style) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = cell{r: r, style: style}
}

func (c *canvas) node(col, row int) bool {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return false
	}
	r := c.cells[row*c.cols+col].r
	return r == glyphNode || r == glyphFixed
}

// line draws a straight line with Bresenham's algorithm.
func (c *canvas) line(c0, r0, c1, r1 int, r rune, style *lipgloss.Style) {
	dc, dr := abs(c1-c0), -abs(r1-r0)
	sc, sr := sign(c1-c0), sign(r1-r0)
	e := dc + dr
	for {
		c.set(c0, r0, r, style)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

// text writes s starting at col. It draws over lines but never over a
// node glyph.
func (c *canvas) text(col, row int, s string, style *lipgloss.Style) {
	for i, r := range []rune(s) {
		if !c.node(col+i, row) {
			c.set(col+i, row, r, style)
		}
	}
}

// String renders the grid, styling runs of equal style together.
func (c *canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		var run strings.Builder
		var style *lipgloss.Style
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if style == nil {
				b.WriteString(run.String())
			} else {
				b.WriteString(style.Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			if cl.style != style {
				flush()
				style = cl.style
			}
			run.WriteRune(cl.r)
		}
		flush()
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

// =============================================================================
// WatchModel - live simulation
// =============================================================================

// tickMsg advances the simulation by one frame.
type tickMsg time.Time

// WatchModel is the bubbletea model of the watch command. It steps the
// solver once per tick and lets the user drag nodes with a cursor.
type WatchModel struct {
	model *scene.Model
	fps   int
	dt    time.Duration
	view  viewport

	cursorCol, cursorRow int
	dragNode             string
	dragSpring           construction.SpringID
	dragging             bool
	paused               bool
	message              string

	width, height int
}

// NewWatchModel wraps a built scene for live display at fps frames per
// second.
func NewWatchModel(m *scene.Model, fps int) *WatchModel {
	if fps <= 0 {
		fps = scene.DefaultFrameRate
	}
	w := &WatchModel{
		model: m,
		fps:   fps,
		dt:    time.Duration(harmonica.FPS(fps) * float64(time.Second)),
		view:  newViewport(fps),
	}
	w.resize(80, 24)
	return w
}

func (w *WatchModel) tick() tea.Cmd {
	return tea.Tick(w.dt, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WatchModel) Init() tea.Cmd {
	return w.tick()
}

func (w *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return w, w.handleKey(msg.String())
	case tea.WindowSizeMsg:
		w.resize(msg.Width, msg.Height)
	case tickMsg:
		w.frame()
		return w, w.tick()
	}
	return w, nil
}

func (w *WatchModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c", "esc":
		w.release()
		return tea.Quit
	case "up", "k":
		w.moveCursor(0, -1)
	case "down", "j":
		w.moveCursor(0, 1)
	case "left", "h":
		w.moveCursor(-1, 0)
	case "right", "l":
		w.moveCursor(1, 0)
	case " ", "space":
		w.toggleDrag()
	case "x":
		w.removeUnderCursor()
	case "p":
		w.paused = !w.paused
	case "n":
		if w.paused {
			w.model.Step(w.dt)
		}
	}
	return nil
}

func (w *WatchModel) resize(width, height int) {
	w.width, w.height = width, height
	w.view.resize(width, height-statusLines)
	w.cursorCol, w.cursorRow = w.view.cols/2, w.view.rows/2
	if lo, hi, ok := w.model.Construction().Bounds(); ok {
		w.view.primed = false
		w.view.fit(lo, hi)
	}
}

// frame steps the solver and refits the view. The fit is frozen during a
// drag so the cursor stays on the dragged point.
func (w *WatchModel) frame() {
	if !w.paused {
		w.model.Step(w.dt)
	}
	if w.dragging {
		return
	}
	if lo, hi, ok := w.model.Construction().Bounds(); ok {
		w.view.fit(lo, hi)
	}
}

func (w *WatchModel) cursor() geom.Point {
	return w.view.toScene(w.cursorCol, w.cursorRow)
}

func (w *WatchModel) moveCursor(dc, dr int) {
	w.cursorCol = min(max(w.cursorCol+dc, 0), w.view.cols-1)
	w.cursorRow = min(max(w.cursorRow+dr, 0), w.view.rows-1)
	if w.dragging {
		w.model.Construction().Drag(w.dragSpring, w.cursor())
	}
}

// pick returns the node under the cursor.
func (w *WatchModel) pick() (construction.NodeID, bool) {
	return w.model.Construction().NodeAt(w.cursor(), hitCells*w.view.scale.pos)
}

func (w *WatchModel) toggleDrag() {
	if w.dragging {
		w.release()
		return
	}
	id, ok := w.pick()
	if !ok {
		w.message = "no node under the cursor"
		return
	}
	w.dragSpring = w.model.Construction().BeginDrag(id, w.cursor())
	w.dragNode = w.model.NodeName(id)
	w.dragging = true
	w.message = ""
}

func (w *WatchModel) release() {
	if !w.dragging {
		return
	}
	w.model.Construction().EndDrag(w.dragSpring)
	w.dragging = false
	w.dragNode = ""
}

func (w *WatchModel) removeUnderCursor() {
	id, ok := w.pick()
	if !ok {
		w.message = "no node under the cursor"
		return
	}
	name := w.model.NodeName(id)
	if name == w.dragNode {
		w.release()
	}
	w.model.RemoveNode(name)
	w.message = "removed " + name
}

// View draws the sketch, the cursor and a status block.
func (w *WatchModel) View() string {
	snap := w.model.Snapshot()
	c := newCanvas(w.view.cols, w.view.rows)
	w.draw(c, snap)

	var b strings.Builder
	b.WriteString(c.String())
	b.WriteByte('\n')
	b.WriteString(w.status(snap))
	b.WriteByte('\n')
	b.WriteString(StyleDim.Render("arrows move  space drag/drop  x delete  p pause  n step  q quit"))
	return b.String()
}

func (w *WatchModel) draw(c *canvas, snap *graph.Snapshot) {
	at := func(id string) (int, int, bool) {
		n, ok := snap.Node(id)
		if !ok {
			return 0, 0, false
		}
		col, row := w.view.toCell(geom.Pt(n.X, n.Y))
		return col, row, true
	}
	segment := func(a, b string, r rune, style *lipgloss.Style) {
		c0, r0, ok0 := at(a)
		c1, r1, ok1 := at(b)
		if ok0 && ok1 {
			c.line(c0, r0, c1, r1, r, style)
		}
	}

	for _, e := range snap.Edges {
		segment(e.From, e.To, '·', &canvasEdgeStyle)
	}
	for i := range snap.Constraints {
		con := &snap.Constraints[i]
		switch {
		case con.Kind == graph.KindRail:
			segment(con.Nodes[0], con.Nodes[1], '─', &canvasRailStyle)
		case !con.Satisfied() && con.Kind == graph.KindDistance:
			segment(con.Nodes[0], con.Nodes[1], '×', &canvasViolatedStyle)
		case !con.Satisfied():
			if p, ok := con.Pivot(); ok {
				segment(p, con.Nodes[0], '×', &canvasViolatedStyle)
				segment(p, con.Nodes[1], '×', &canvasViolatedStyle)
			}
		}
	}
	for _, n := range snap.Nodes {
		col, row := w.view.toCell(geom.Pt(n.X, n.Y))
		if n.Fixed {
			c.set(col, row, glyphFixed, &canvasFixedStyle)
		} else {
			c.set(col, row, glyphNode, &canvasNodeStyle)
		}
	}
	for _, n := range snap.Nodes {
		col, row := w.view.toCell(geom.Pt(n.X, n.Y))
		c.text(col+2, row, n.ID, &canvasLabelStyle)
	}
	c.set(w.cursorCol, w.cursorRow, '+', &canvasCursorStyle)
}

func (w *WatchModel) status(snap *graph.Snapshot) string {
	held := 0
	var broken []string
	for i := range snap.Constraints {
		if snap.Constraints[i].Satisfied() {
			held++
		} else {
			broken = append(broken, snap.Constraints[i].ID)
		}
	}

	parts := []string{
		StyleTitle.Render(snap.Scene),
		fmt.Sprintf("frame %d", snap.Frame),
		fmt.Sprintf("energy %.3g", snap.Energy),
		fmt.Sprintf("%d/%d constraints", held, len(snap.Constraints)),
	}
	if w.paused {
		parts = append(parts, StyleWarning.Render("paused"))
	}
	if w.dragging {
		parts = append(parts, canvasCursorStyle.Render("dragging "+w.dragNode))
	}
	line := strings.Join(parts, StyleDim.Render(" · "))
	switch {
	case w.message != "":
		line += "  " + StyleDim.Render(w.message)
	case len(broken) > 0:
		line += "  " + StyleError.Render("violated: "+strings.Join(broken, ", "))
	}
	return line
}
