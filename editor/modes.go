package editor

// GestureKind is the pointer gesture in progress
type GestureKind int

const (
	GestureIdle         GestureKind = iota // No pointer is down
	GesturePanning                         // Dragging the background
	GestureDraggingNode                    // Moving one node
	GestureDraggingGroup                   // Moving the multi-selection
	GestureMarquee                         // Drawing a selection rectangle
	GestureLinkPending                     // Shift-press on a node, not moved yet
	GestureLinkActive                      // Drawing a new edge
	GesturePinch                           // Two-pointer zoom
)

// String returns the gesture name for display
func (g GestureKind) String() string {
	switch g {
	case GestureIdle:
		return "IDLE"
	case GesturePanning:
		return "PAN"
	case GestureDraggingNode:
		return "DRAG"
	case GestureDraggingGroup:
		return "DRAG GROUP"
	case GestureMarquee:
		return "SELECT"
	case GestureLinkPending, GestureLinkActive:
		return "LINK"
	case GesturePinch:
		return "PINCH"
	default:
		return "UNKNOWN"
	}
}

// Dragging reports whether nodes are being moved.
func (g GestureKind) Dragging() bool {
	return g == GestureDraggingNode || g == GestureDraggingGroup
}
