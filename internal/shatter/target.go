package shatter

import (
	"strconv"
	"strings"
)

// Name prefixes marking objects that were already scattered.
const (
	FragmentNamePrefix = "Scam_"
	DebrisNamePrefix   = "ScamDebris_"
)

// FragmentName returns the name of the n-th (1-based) fragment of a request.
func FragmentName(n int) string {
	return FragmentNamePrefix + strconv.Itoa(n)
}

// DebrisName returns the name a fragment takes once it has been turned into
// physics debris.
func DebrisName(fragmentName string) string {
	return DebrisNamePrefix + strings.TrimPrefix(fragmentName, FragmentNamePrefix)
}

// IsScattered reports whether name carries a fragment or debris marker.
func IsScattered(name string) bool {
	return strings.HasPrefix(name, FragmentNamePrefix) || strings.HasPrefix(name, DebrisNamePrefix)
}

// Target is the host's handle on the object being scattered.
type Target interface {
	Name() string
	// Destroyed reports whether the host has destroyed the object.
	Destroyed() bool
}

// Instructor is implemented by targets that override how they are scattered.
type Instructor interface {
	ScatterInstruction() Instruction
}

// Instruction tells the decomposer how to treat a target. The set of
// instructions is closed: DefaultInstruction, RefuseInstruction and
// CustomInstruction.
type Instruction interface {
	instruction()
}

// DefaultInstruction scatters the target with the request's parameters.
type DefaultInstruction struct{}

// RefuseInstruction marks a target that must never be scattered.
type RefuseInstruction struct{}

// CustomInstruction scatters the target with its own parameters. Zero fields
// fall back to the request's parameters.
type CustomInstruction struct {
	Params Params
}

func (DefaultInstruction) instruction() {}
func (RefuseInstruction) instruction()  {}
func (CustomInstruction) instruction()  {}

// ResolveInstruction asks t how it wants to be scattered.
func ResolveInstruction(t Target) Instruction {
	if in, ok := t.(Instructor); ok {
		if instr := in.ScatterInstruction(); instr != nil {
			return instr
		}
	}
	return DefaultInstruction{}
}

// Scatterable reports whether t is live, not already scattered, and does not
// refuse to be scattered.
func Scatterable(t Target) bool {
	if !alive(t) || IsScattered(t.Name()) {
		return false
	}
	_, refused := ResolveInstruction(t).(RefuseInstruction)
	return !refused
}

// alive reports whether t is a live target.
func alive(t Target) bool {
	return t != nil && !t.Destroyed()
}
