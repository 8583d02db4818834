package editor

import (
	"spatial-engine/core"
	"spatial-engine/math"
	"spatial-engine/scene"
)

// Command represents an undoable editor action
type Command interface {
	Execute()
	Undo()
	Description() string
}

// History manages undo/redo stacks
type History struct {
	undoStack []Command
	redoStack []Command
	maxDepth  int
}

// NewHistory creates a new history with the given max undo depth
func NewHistory(maxDepth int) *History {
	return &History{
		undoStack: make([]Command, 0, maxDepth),
		redoStack: make([]Command, 0, maxDepth),
		maxDepth:  maxDepth,
	}
}

// Do executes a command and pushes it to the undo stack
func (h *History) Do(cmd Command) {
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	if len(h.undoStack) > h.maxDepth {
		h.undoStack = h.undoStack[1:]
	}
	h.redoStack = h.redoStack[:0]
}

// Undo reverts the last action
func (h *History) Undo() (Command, bool) {
	if len(h.undoStack) == 0 {
		return nil, false
	}
	cmd := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	cmd.Undo()
	h.redoStack = append(h.redoStack, cmd)
	return cmd, true
}

// Redo reapplies the last undone action
func (h *History) Redo() (Command, bool) {
	if len(h.redoStack) == 0 {
		return nil, false
	}
	cmd := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	cmd.Execute()
	h.undoStack = append(h.undoStack, cmd)
	return cmd, true
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// Clear wipes all undo/redo history
func (h *History) Clear() {
	h.undoStack = h.undoStack[:0]
	h.redoStack = h.redoStack[:0]
}

// --- Concrete Commands ---
//
// Transform commands go through the entity setters, which queue the entity
// for quadtree migration on the next Scene.Update.

// TransformCommand records a full transform change on an entity
type TransformCommand struct {
	Entity       *scene.Entity
	OldTransform core.Transform
	NewTransform core.Transform
	desc         string
}

func NewTransformCommand(e *scene.Entity, newTransform core.Transform, desc string) *TransformCommand {
	return &TransformCommand{
		Entity:       e,
		OldTransform: e.Transform,
		NewTransform: newTransform,
		desc:         desc,
	}
}

func (c *TransformCommand) Execute()            { c.Entity.SetTransform(c.NewTransform) }
func (c *TransformCommand) Undo()               { c.Entity.SetTransform(c.OldTransform) }
func (c *TransformCommand) Description() string { return c.desc }

type MoveCommand struct {
	Entity *scene.Entity
	OldPos math.Vec3
	NewPos math.Vec3
}

func NewMoveCommand(e *scene.Entity, newPos math.Vec3) *MoveCommand {
	return &MoveCommand{Entity: e, OldPos: e.Transform.Position, NewPos: newPos}
}

func (c *MoveCommand) Execute()            { c.Entity.SetPosition(c.NewPos) }
func (c *MoveCommand) Undo()               { c.Entity.SetPosition(c.OldPos) }
func (c *MoveCommand) Description() string { return "Move " + c.Entity.Name }

type RotateCommand struct {
	Entity *scene.Entity
	OldRot math.Quaternion
	NewRot math.Quaternion
}

func NewRotateCommand(e *scene.Entity, newRot math.Quaternion) *RotateCommand {
	return &RotateCommand{Entity: e, OldRot: e.Transform.Rotation, NewRot: newRot}
}

func (c *RotateCommand) Execute()            { c.Entity.SetRotation(c.NewRot) }
func (c *RotateCommand) Undo()               { c.Entity.SetRotation(c.OldRot) }
func (c *RotateCommand) Description() string { return "Rotate " + c.Entity.Name }

type ScaleCommand struct {
	Entity   *scene.Entity
	OldScale math.Vec3
	NewScale math.Vec3
}

func NewScaleCommand(e *scene.Entity, newScale math.Vec3) *ScaleCommand {
	return &ScaleCommand{Entity: e, OldScale: e.Transform.Scale, NewScale: newScale}
}

func (c *ScaleCommand) Execute()            { c.Entity.SetScale(c.NewScale) }
func (c *ScaleCommand) Undo()               { c.Entity.SetScale(c.OldScale) }
func (c *ScaleCommand) Description() string { return "Scale " + c.Entity.Name }

// AddEntityCommand records adding an entity under Parent (nil for the scene
// root).
type AddEntityCommand struct {
	Scene  *scene.Scene
	Entity *scene.Entity
	Parent *scene.Entity
}

func NewAddEntityCommand(s *scene.Scene, e, parent *scene.Entity) *AddEntityCommand {
	return &AddEntityCommand{Scene: s, Entity: e, Parent: parent}
}

func (c *AddEntityCommand) Execute()            { c.Scene.AddEntity(c.Entity, c.Parent) }
func (c *AddEntityCommand) Undo()               { c.Scene.Destroy(c.Entity) }
func (c *AddEntityCommand) Description() string { return "Add " + c.Entity.Name }

// DeleteEntityCommand destroys an entity and its descendants. Undo puts the
// same subtree back under its former parent.
type DeleteEntityCommand struct {
	Scene  *scene.Scene
	Entity *scene.Entity
	Parent *scene.Entity
}

func NewDeleteEntityCommand(s *scene.Scene, e *scene.Entity) *DeleteEntityCommand {
	return &DeleteEntityCommand{Scene: s, Entity: e, Parent: e.Parent}
}

func (c *DeleteEntityCommand) Execute()            { c.Scene.Destroy(c.Entity) }
func (c *DeleteEntityCommand) Undo()               { c.Scene.AddEntity(c.Entity, c.Parent) }
func (c *DeleteEntityCommand) Description() string { return "Delete " + c.Entity.Name }

// duplicateOffset keeps a duplicate from overlapping its original.
var duplicateOffset = math.Vec3{X: 0.5}

// DuplicateEntityCommand records duplicating an entity subtree next to the
// original.
type DuplicateEntityCommand struct {
	Scene     *scene.Scene
	Original  *scene.Entity
	Duplicate *scene.Entity
	Parent    *scene.Entity
}

func NewDuplicateEntityCommand(s *scene.Scene, original *scene.Entity) *DuplicateEntityCommand {
	dup := original.Clone()
	dup.Name = original.Name + ".copy"
	dup.Transform.Position = dup.Transform.Position.Add(duplicateOffset)
	return &DuplicateEntityCommand{Scene: s, Original: original, Duplicate: dup, Parent: original.Parent}
}

func (c *DuplicateEntityCommand) Execute()            { c.Scene.AddEntity(c.Duplicate, c.Parent) }
func (c *DuplicateEntityCommand) Undo()               { c.Scene.Destroy(c.Duplicate) }
func (c *DuplicateEntityCommand) Description() string { return "Duplicate " + c.Original.Name }
