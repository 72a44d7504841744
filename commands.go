package mado

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
)

// ComponentValue is a typed component value boxed for deferred insertion.
// Build one with Value.
type ComponentValue interface {
	ComponentType() reflect.Type
	insert(w *World, e Entity, missing bool) error
}

type componentValue[T any] struct {
	v T
}

// Value wraps v so it can be recorded in a CommandBuffer.
func Value[T any](v T) ComponentValue {
	return componentValue[T]{v: v}
}

func (c componentValue[T]) ComponentType() reflect.Type {
	return reflect.TypeFor[T]()
}

func (c componentValue[T]) insert(w *World, e Entity, missing bool) error {
	if missing {
		_, err := SetMissing(w, e, c.v)
		return err
	}
	return Set(w, e, c.v)
}

type opKind uint8

const (
	opSet opKind = iota
	opSetMissing
	opRemove
	opSpawn
	opDespawn
	opAttach
	opDetach
	opDefer
)

type command struct {
	kind   opKind
	target Entity
	parent Entity
	values []ComponentValue
	typ    reflect.Type
	fn     func(*World) error
}

// CommandBuffer records world mutations for later application. Systems record
// into it while a query is borrowed, since the borrowed world cannot change
// structurally until the borrow ends.
//
// Validity is checked when the buffer is applied, not when a command is
// recorded: commands targeting an entity that is dead by then are skipped.
type CommandBuffer struct {
	cmds []command
}

// NewCommandBuffer returns an empty buffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{cmds: make([]command, 0, 16)}
}

// Set records an overwrite of each value on e.
func (c *CommandBuffer) Set(e Entity, vals ...ComponentValue) {
	c.cmds = append(c.cmds, command{kind: opSet, target: e, values: vals})
}

// SetMissing records an insertion of each value that e does not already carry.
// Values already present are left untouched.
func (c *CommandBuffer) SetMissing(e Entity, vals ...ComponentValue) {
	c.cmds = append(c.cmds, command{kind: opSetMissing, target: e, values: vals})
}

// Remove records removal of the component of type t from e.
func (c *CommandBuffer) Remove(e Entity, t reflect.Type) {
	c.cmds = append(c.cmds, command{kind: opRemove, target: e, typ: t})
}

// Spawn records the creation of a root entity carrying vals.
func (c *CommandBuffer) Spawn(vals ...ComponentValue) {
	c.cmds = append(c.cmds, command{kind: opSpawn, values: vals})
}

// SpawnChild records the creation of an entity carrying vals and attached to
// parent. Nothing is spawned if parent is dead at apply time.
func (c *CommandBuffer) SpawnChild(parent Entity, vals ...ComponentValue) {
	c.cmds = append(c.cmds, command{kind: opSpawn, parent: parent, values: vals})
}

// Despawn records the recursive removal of e.
func (c *CommandBuffer) Despawn(e Entity) {
	c.cmds = append(c.cmds, command{kind: opDespawn, target: e})
}

// Attach records making child a child of parent.
func (c *CommandBuffer) Attach(child, parent Entity) {
	c.cmds = append(c.cmds, command{kind: opAttach, target: child, parent: parent})
}

// Detach records turning child into a root.
func (c *CommandBuffer) Detach(child Entity) {
	c.cmds = append(c.cmds, command{kind: opDetach, target: child})
}

// Defer records an arbitrary mutation. It runs in order with the other
// commands and its error is reported like theirs.
func (c *CommandBuffer) Defer(fn func(*World) error) {
	c.cmds = append(c.cmds, command{kind: opDefer, fn: fn})
}

// Len returns the number of recorded commands.
func (c *CommandBuffer) Len() int {
	return len(c.cmds)
}

// Reset drops every recorded command.
func (c *CommandBuffer) Reset() {
	clear(c.cmds)
	c.cmds = c.cmds[:0]
}

// Apply runs the recorded commands against w in recording order and resets
// the buffer. Commands whose target died earlier are no-ops. Any other
// failure is collected and the pass continues; the combined error is
// returned.
//
// Apply performs structural changes and therefore panics if a query is
// still borrowed.
//
// Parameters:
//   - w: The World to mutate.
//
// Returns:
//   - nil, or every failure joined with multierr.
func (c *CommandBuffer) Apply(w *World) error {
	var errs error
	for i := range c.cmds {
		errs = multierr.Append(errs, c.cmds[i].apply(w))
	}
	c.Reset()
	return errs
}

func (cmd *command) apply(w *World) error {
	switch cmd.kind {
	case opSet, opSetMissing:
		if !w.IsAlive(cmd.target) {
			return nil
		}
		return insertAll(w, cmd.target, cmd.values, cmd.kind == opSetMissing)
	case opRemove:
		if !w.IsAlive(cmd.target) {
			return nil
		}
		return w.removeType(cmd.target, cmd.typ)
	case opSpawn:
		if !cmd.parent.IsZero() && !w.IsAlive(cmd.parent) {
			return nil
		}
		e := w.Spawn()
		err := insertAll(w, e, cmd.values, false)
		if !cmd.parent.IsZero() {
			err = multierr.Append(err, w.Attach(e, cmd.parent))
		}
		return err
	case opDespawn:
		if !w.IsAlive(cmd.target) {
			return nil
		}
		return w.Despawn(cmd.target)
	case opAttach:
		if !w.IsAlive(cmd.target) || !w.IsAlive(cmd.parent) {
			return nil
		}
		return w.Attach(cmd.target, cmd.parent)
	case opDetach:
		if !w.IsAlive(cmd.target) {
			return nil
		}
		return w.Detach(cmd.target)
	case opDefer:
		return cmd.fn(w)
	}
	return fmt.Errorf("mado: unknown command kind %d", cmd.kind)
}

func insertAll(w *World, e Entity, vals []ComponentValue, missing bool) error {
	var errs error
	for _, v := range vals {
		if err := v.insert(w, e, missing); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("insert %s: %w", v.ComponentType(), err))
		}
	}
	return errs
}
