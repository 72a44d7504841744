package mado

import (
	"fmt"

	"go.uber.org/zap"
)

// System is one step of a Schedule. Structural mutations must be recorded in
// cmd; they become visible at the next flush.
type System interface {
	Name() string
	Run(w *World, cmd *CommandBuffer) error
}

type funcSystem struct {
	name string
	fn   func(w *World, cmd *CommandBuffer) error
}

// NewSystem adapts a function to the System interface.
func NewSystem(name string, fn func(w *World, cmd *CommandBuffer) error) System {
	return &funcSystem{name: name, fn: fn}
}

func (s *funcSystem) Name() string { return s.name }

func (s *funcSystem) Run(w *World, cmd *CommandBuffer) error { return s.fn(w, cmd) }

// Schedule is an ordered pipeline of systems split into stages by flush
// points. Systems run sequentially in the order they were added; at every
// flush, and after the last stage, the commands recorded so far are applied.
type Schedule struct {
	stages [][]System
	cmd    *CommandBuffer
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{
		stages: [][]System{nil},
		cmd:    NewCommandBuffer(),
	}
}

// WithSystem appends sys to the current stage.
func (s *Schedule) WithSystem(sys System) *Schedule {
	last := len(s.stages) - 1
	s.stages[last] = append(s.stages[last], sys)
	return s
}

// Flush closes the current stage. Systems added afterwards see every command
// recorded before this point applied.
func (s *Schedule) Flush() *Schedule {
	if len(s.stages[len(s.stages)-1]) > 0 {
		s.stages = append(s.stages, nil)
	}
	return s
}

// Systems returns the system names per stage.
func (s *Schedule) Systems() [][]string {
	out := make([][]string, 0, len(s.stages))
	for _, stage := range s.stages {
		if len(stage) == 0 {
			continue
		}
		names := make([]string, len(stage))
		for i, sys := range stage {
			names[i] = sys.Name()
		}
		out = append(out, names)
	}
	return out
}

// Execute runs every stage once against w. The first system error aborts the
// run; pending commands of the failed stage are discarded.
//
// Parameters:
//   - w: The World the systems run against.
//
// Returns:
//   - The first system error, wrapped with the system name, or the stage's Apply error.
func (s *Schedule) Execute(w *World) error {
	for i, stage := range s.stages {
		for _, sys := range stage {
			if err := sys.Run(w, s.cmd); err != nil {
				s.cmd.Reset()
				return fmt.Errorf("system %s: %w", sys.Name(), err)
			}
		}
		if s.cmd.Len() == 0 {
			continue
		}
		n := s.cmd.Len()
		if err := s.cmd.Apply(w); err != nil {
			return fmt.Errorf("flush stage %d: %w", i, err)
		}
		w.log.Debug("flushed commands", zap.Int("stage", i), zap.Int("commands", n))
	}
	return nil
}
