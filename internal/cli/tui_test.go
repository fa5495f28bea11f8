package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/modelsketch/pkg/geom"
	"github.com/matzehuels/modelsketch/pkg/scene"
)

func newTestWatch(t *testing.T) *WatchModel {
	t.Helper()
	s, err := scene.Load(hingeScene)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m, err := scene.Build(s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	w := NewWatchModel(m, 60)
	w.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return w
}

func press(w *WatchModel, key string) tea.Cmd {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	}
	_, cmd := w.Update(msg)
	return cmd
}

func ticks(w *WatchModel, n int) {
	for range n {
		w.Update(tickMsg(time.Now()))
	}
}

// cursorOn moves the cursor onto the named node.
func cursorOn(t *testing.T, w *WatchModel, name string) {
	t.Helper()
	id, ok := w.model.NodeID(name)
	if !ok {
		t.Fatalf("no node %q", name)
	}
	w.cursorCol, w.cursorRow = w.view.toCell(w.model.Construction().Position(id))
}

func TestWatchFrameStep(t *testing.T) {
	w := newTestWatch(t)

	ticks(w, 10)
	if got := w.model.Frame(); got != 10 {
		t.Errorf("frame after 10 ticks = %d, want 10", got)
	}

	press(w, "p")
	ticks(w, 5)
	if got := w.model.Frame(); got != 10 {
		t.Errorf("paused model advanced to frame %d", got)
	}

	press(w, "n")
	if got := w.model.Frame(); got != 11 {
		t.Errorf("single step while paused gave frame %d, want 11", got)
	}
}

func TestWatchDrag(t *testing.T) {
	w := newTestWatch(t)
	cursorOn(t, w, "A")

	press(w, " ")
	if !w.dragging || w.dragNode != "A" {
		t.Fatalf("space on A: dragging=%v node=%q", w.dragging, w.dragNode)
	}
	cg := w.model.Construction()

	for range 5 {
		press(w, "right")
	}
	s := cg.Spring(w.dragSpring)
	if s == nil {
		t.Fatal("drag spring missing")
	}
	if p, _ := s.Point(); p.Dist(w.cursor()) > geom.Epsilon {
		t.Errorf("drag target %v does not follow cursor %v", p, w.cursor())
	}

	press(w, " ")
	if w.dragging {
		t.Fatal("second space did not drop the node")
	}
	ticks(w, 1)
	if cg.Spring(w.dragSpring) != nil {
		t.Error("released drag spring survived a frame")
	}
}

func TestWatchDragMissesEmptyCell(t *testing.T) {
	w := newTestWatch(t)
	w.cursorCol, w.cursorRow = 0, 0

	press(w, " ")
	if w.dragging {
		t.Error("picked up a node from an empty corner")
	}
	if !strings.Contains(w.View(), "no node under the cursor") {
		t.Error("status does not explain the miss")
	}
}

func TestWatchRemoveNode(t *testing.T) {
	w := newTestWatch(t)
	cursorOn(t, w, "B")

	press(w, "x")
	if _, ok := w.model.NodeID("B"); ok {
		t.Error("B still present after x")
	}
	snap := w.model.Snapshot()
	if len(snap.Constraints) != 1 || snap.Constraints[0].ID != "armA" {
		t.Errorf("constraints after removing B = %v", snap.Constraints)
	}
}

func TestWatchQuit(t *testing.T) {
	w := newTestWatch(t)
	cmd := press(w, "q")
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestWatchView(t *testing.T) {
	w := newTestWatch(t)
	ticks(w, 3)

	view := w.View()
	for _, want := range []string{"hinge", "frame 3", "P", "A", "B", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines != 30 {
		t.Errorf("view has %d lines, want 30", lines)
	}
}

func TestViewportRoundTrip(t *testing.T) {
	v := newViewport(60)
	v.resize(80, 20)
	v.fit(geom.Pt(0, 0), geom.Pt(100, 50))

	for _, cell := range [][2]int{{0, 0}, {40, 10}, {79, 19}} {
		col, row := v.toCell(v.toScene(cell[0], cell[1]))
		if col != cell[0] || row != cell[1] {
			t.Errorf("cell %v round-tripped to (%d, %d)", cell, col, row)
		}
	}
}

func TestViewportGlides(t *testing.T) {
	v := newViewport(60)
	v.resize(80, 20)
	v.fit(geom.Pt(0, 0), geom.Pt(100, 50))
	start := v.cx.pos

	v.fit(geom.Pt(1000, 0), geom.Pt(1100, 50))
	if v.cx.pos <= start || v.cx.pos >= 1050 {
		t.Errorf("center jumped to %v; want a step between %v and 1050", v.cx.pos, start)
	}
}

func TestCanvasLine(t *testing.T) {
	c := newCanvas(5, 3)
	c.line(0, 0, 4, 2, '*', nil)

	got := c.String()
	want := "*    \n **  \n   **"
	if got != want {
		t.Errorf("line:\n%s\nwant:\n%s", got, want)
	}
}
