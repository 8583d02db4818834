package editor

import (
	"spatial-engine/math"
	"spatial-engine/scene"
)

// TransformTool defines what the arrow keys do to the selection
type TransformTool int

const (
	ToolSelect TransformTool = iota
	ToolTranslate
	ToolRotate
	ToolScale
)

func (t TransformTool) String() string {
	switch t {
	case ToolTranslate:
		return "Move"
	case ToolRotate:
		return "Rotate"
	case ToolScale:
		return "Scale"
	default:
		return "Select"
	}
}

// Selection tracks the selected entities
type Selection struct {
	Objects []*scene.Entity

	// Active object (last selected, shown in the status bar)
	ActiveObject *scene.Entity
}

func NewSelection() *Selection {
	return &Selection{
		Objects: make([]*scene.Entity, 0),
	}
}

func (s *Selection) Clear() {
	s.Objects = s.Objects[:0]
	s.ActiveObject = nil
}

// SelectSingle selects a single entity, clearing the previous selection
func (s *Selection) SelectSingle(e *scene.Entity) {
	s.Objects = append(s.Objects[:0], e)
	s.ActiveObject = e
}

// ToggleObject adds/removes an entity from the selection (Shift+Click)
func (s *Selection) ToggleObject(e *scene.Entity) {
	for i, n := range s.Objects {
		if n == e {
			s.Objects = append(s.Objects[:i], s.Objects[i+1:]...)
			if s.ActiveObject == e {
				s.ActiveObject = s.last()
			}
			return
		}
	}
	s.Objects = append(s.Objects, e)
	s.ActiveObject = e
}

func (s *Selection) IsSelected(e *scene.Entity) bool {
	for _, n := range s.Objects {
		if n == e {
			return true
		}
	}
	return false
}

// Roots returns the selected entities that have no selected ancestor.
func (s *Selection) Roots() []*scene.Entity {
	roots := make([]*scene.Entity, 0, len(s.Objects))
	for _, e := range s.Objects {
		nested := false
		for _, other := range s.Objects {
			if other != e && e.IsDescendantOf(other) {
				nested = true
				break
			}
		}
		if !nested {
			roots = append(roots, e)
		}
	}
	return roots
}

// Prune drops entities that are no longer part of a scene.
func (s *Selection) Prune() {
	kept := s.Objects[:0]
	for _, e := range s.Objects {
		if e.Scene() != nil {
			kept = append(kept, e)
		}
	}
	s.Objects = kept
	if s.ActiveObject != nil && s.ActiveObject.Scene() == nil {
		s.ActiveObject = s.last()
	}
}

// GetSelectionCenter returns the mean world position of the selection
func (s *Selection) GetSelectionCenter() math.Vec3 {
	if len(s.Objects) == 0 {
		return math.Vec3Zero
	}

	center := math.Vec3Zero
	for _, obj := range s.Objects {
		center = center.Add(obj.WorldPosition())
	}
	return center.Div(float32(len(s.Objects)))
}

func (s *Selection) HasSelection() bool {
	return len(s.Objects) > 0
}

func (s *Selection) last() *scene.Entity {
	if len(s.Objects) == 0 {
		return nil
	}
	return s.Objects[len(s.Objects)-1]
}
