package control

import (
	"errors"
	"fmt"

	"pyrt/internal/limits"
	"pyrt/internal/object"
)

// Scope holds the names bound by the stages of a generator.
type Scope map[string]*object.Value

// Source yields the iterable a stage walks, given the current bindings.
type Source func(Scope) (*object.Value, error)

// Binder stores the element a stage just produced.
type Binder func(Scope, *object.Value) error

type Predicate func(Scope) (bool, error)

type Producer func(Scope) (*object.Value, error)

type stage struct {
	source  Source
	bind    Binder
	filters []Predicate
	it      *object.Value
}

// GeneratorType is the class of generator values.
var GeneratorType = object.DefineClass("generator").
	In("builtins").
	Method("__iter__", func(self *object.Value) (*object.Value, error) {
		return self, nil
	}, object.Arg("self")).
	Method("__next__", func(self *object.Value) (*object.Value, error) {
		g, ok := self.Payload().(*Generator)
		if !ok {
			return nil, object.Raisef(object.TypeErrorType, "descriptor '__next__' requires a 'generator' object")
		}
		v, ok, err := g.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, object.Raise(object.NewException(object.StopIterationType))
		}
		return v, nil
	}, object.Arg("self")).
	MustBuild()

// Builder assembles the stage chain of a generator. The first error is
// kept and reported by Yield.
type Builder struct {
	scope  Scope
	stages []*stage
	budget *limits.Budget
	err    error
}

func NewGenerator() *Builder {
	return &Builder{scope: Scope{}}
}

// With binds a name visible to every stage before the first pull.
func (b *Builder) With(name string, v *object.Value) *Builder {
	b.scope[name] = v
	return b
}

// ForEach adds a stage walking a fixed iterable.
func (b *Builder) ForEach(iterable *object.Value) *Builder {
	return b.ForEachOf(func(Scope) (*object.Value, error) { return iterable, nil })
}

// ForEachOf adds a stage whose iterable is computed from the bindings each
// time the stage restarts.
func (b *Builder) ForEachOf(src Source) *Builder {
	b.stages = append(b.stages, &stage{source: src})
	return b
}

func (b *Builder) last(what string) *stage {
	if len(b.stages) == 0 {
		b.fail(fmt.Errorf("generator: %s before ForEach", what))
		return nil
	}
	return b.stages[len(b.stages)-1]
}

// Name sets the binder of the latest stage.
func (b *Builder) Name(binder Binder) *Builder {
	if st := b.last("Name"); st != nil {
		if st.bind != nil {
			b.fail(errors.New("generator: stage already has a binding"))
			return b
		}
		st.bind = binder
	}
	return b
}

func (b *Builder) Bind(name string) *Builder {
	return b.Name(func(s Scope, v *object.Value) error {
		s[name] = v
		return nil
	})
}

// Unpack binds the elements of each produced sequence to names.
func (b *Builder) Unpack(names ...string) *Builder {
	return b.Name(func(s Scope, v *object.Value) error {
		elems, err := object.ToSlice(v)
		if err != nil {
			return err
		}
		if len(elems) < len(names) {
			return object.Raisef(object.ValueErrorType, "not enough values to unpack (expected %d, got %d)", len(names), len(elems))
		}
		if len(elems) > len(names) {
			return object.Raisef(object.ValueErrorType, "too many values to unpack (expected %d)", len(names))
		}
		for i, n := range names {
			s[n] = elems[i]
		}
		return nil
	})
}

// Filter adds a predicate to the latest stage.
func (b *Builder) Filter(pred Predicate) *Builder {
	if st := b.last("Filter"); st != nil {
		st.filters = append(st.filters, pred)
	}
	return b
}

// WithBudget charges one step per element pulled from any stage.
func (b *Builder) WithBudget(budget *limits.Budget) *Builder {
	b.budget = budget
	return b
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Yield completes the chain and returns the generator value.
func (b *Builder) Yield(produce Producer) (*object.Value, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stages) == 0 {
		return nil, errors.New("generator: no stages")
	}
	for i, st := range b.stages {
		if st.bind == nil {
			return nil, fmt.Errorf("generator: stage %d has no binding", i)
		}
	}
	if produce == nil {
		return nil, errors.New("generator: nil producer")
	}
	g := &Generator{scope: b.scope, stages: b.stages, produce: produce, budget: b.budget}
	return object.NewInstance(GeneratorType, g), nil
}

// Generator drives a stage chain depth first. It is not safe for use by
// more than one caller.
type Generator struct {
	scope      Scope
	stages     []*stage
	produce    Producer
	budget     *limits.Budget
	positioned int
	done       bool
}

// Next returns the next produced value; ok is false once every stage is
// exhausted. Exhaustion and errors are sticky.
func (g *Generator) Next() (v *object.Value, ok bool, err error) {
	if g.done {
		return nil, false, nil
	}
	defer func() {
		if err != nil {
			g.done = true
		}
	}()

	n := len(g.stages)
	level := g.positioned
	if level == n {
		level = n - 1
	}
	for level < n {
		if level < 0 {
			g.done = true
			g.positioned = 0
			return nil, false, nil
		}
		st := g.stages[level]
		if st.it == nil {
			src, err := st.source(g.scope)
			if err != nil {
				return nil, false, err
			}
			if st.it, err = object.Iter(src); err != nil {
				return nil, false, err
			}
		}
		elem, more, err := object.Next(st.it)
		if err != nil {
			return nil, false, err
		}
		if !more {
			st.it = nil
			level--
			continue
		}
		if err := g.budget.Charge(1); err != nil {
			return nil, false, object.Raisef(object.RuntimeErrorType, "generator: %v", err)
		}
		if err := st.bind(g.scope, elem); err != nil {
			return nil, false, err
		}
		pass, err := g.check(st)
		if err != nil {
			return nil, false, err
		}
		if pass {
			level++
		}
	}
	g.positioned = n
	v, err = g.produce(g.scope)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (g *Generator) check(st *stage) (bool, error) {
	for _, pred := range st.filters {
		ok, err := pred(g.scope)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Next advances a generator value.
func Next(gen *object.Value) (*object.Value, bool, error) {
	if g, ok := gen.Payload().(*Generator); ok {
		return g.Next()
	}
	return object.Next(gen)
}

// Collect drains an iterable into a list.
func Collect(iterable *object.Value) (*object.Value, error) {
	var out []*object.Value
	err := object.ForEach(iterable, func(v *object.Value) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("collected %d values", len(out))
	return object.List(out...), nil
}
