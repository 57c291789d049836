package toolkit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spetersoncode/talk2mcp/tool"
)

// Canvas dimensions. Text without a rectangle is centered on the canvas.
const (
	CanvasWidth  = 800
	CanvasHeight = 600
)

// ErrCanvasClosed is returned by drawing tools before open_canvas.
var ErrCanvasClosed = errors.New("canvas is not open, call open_canvas first")

// Rect is an axis-aligned rectangle with X1,Y1 at the top left.
type Rect struct {
	X1 int `json:"x1" required:"true"`
	Y1 int `json:"y1" required:"true"`
	X2 int `json:"x2" required:"true"`
	Y2 int `json:"y2" required:"true"`
}

// Center returns the midpoint of r.
func (r Rect) Center() (int, int) {
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// Label is text placed at a point.
type Label struct {
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// State is a snapshot of a canvas.
type State struct {
	Open   bool    `json:"open"`
	Rects  []Rect  `json:"rects"`
	Labels []Label `json:"labels"`
}

// Canvas is an in-memory drawing surface. It is safe for concurrent use.
type Canvas struct {
	mu     sync.Mutex
	open   bool
	rects  []Rect
	labels []Label
}

// NewCanvas returns a closed, empty canvas.
func NewCanvas() *Canvas {
	return &Canvas{}
}

// Open opens the canvas, clearing anything drawn before.
func (c *Canvas) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.rects = nil
	c.labels = nil
}

// DrawRect adds a rectangle. The corners may be given in any order.
func (c *Canvas) DrawRect(x1, y1, x2, y2 int) (Rect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return Rect{}, ErrCanvasClosed
	}
	r := Rect{X1: min(x1, x2), Y1: min(y1, y2), X2: max(x1, x2), Y2: max(y1, y2)}
	c.rects = append(c.rects, r)
	return r, nil
}

// AddText places text at the center of the last rectangle.
func (c *Canvas) AddText(text string) (Label, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return Label{}, ErrCanvasClosed
	}
	if strings.TrimSpace(text) == "" {
		return Label{}, errors.New("text is empty")
	}
	l := Label{Text: text, X: CanvasWidth / 2, Y: CanvasHeight / 2}
	if n := len(c.rects); n > 0 {
		l.X, l.Y = c.rects[n-1].Center()
	}
	c.labels = append(c.labels, l)
	return l, nil
}

// State returns a copy of the canvas contents.
func (c *Canvas) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Open:   c.open,
		Rects:  append([]Rect{}, c.rects...),
		Labels: append([]Label{}, c.labels...),
	}
}

type textArgs struct {
	Text string `json:"text" desc:"Text to write" required:"true"`
}

// Tools returns the canvas tools bound to c.
func (c *Canvas) Tools() []tool.Registration {
	return []tool.Registration{
		tool.Func("open_canvas", "Open a blank canvas", func(context.Context, struct{}) (string, error) {
			c.Open()
			return "Canvas opened successfully", nil
		}),
		tool.Func("draw_rectangle", "Draw a rectangle on the canvas from (x1,y1) to (x2,y2)",
			func(_ context.Context, args Rect) (string, error) {
				r, err := c.DrawRect(args.X1, args.Y1, args.X2, args.Y2)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Rectangle drawn from (%d,%d) to (%d,%d)", r.X1, r.Y1, r.X2, r.Y2), nil
			}),
		tool.Func("add_text", "Write text inside the last rectangle on the canvas", func(_ context.Context, args textArgs) (string, error) {
			l, err := c.AddText(args.Text)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Text '%s' added successfully at center coordinates (%d, %d)", l.Text, l.X, l.Y), nil
		}),
		tool.Func("canvas_state", "Describe what is drawn on the canvas", func(context.Context, struct{}) (string, error) {
			return formatJSON(c.State())
		}),
	}
}
