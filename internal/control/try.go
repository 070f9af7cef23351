package control

import (
	"pyrt/internal/object"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("pyrt.control")

// Handler receives the raised exception value.
type Handler func(exc *object.Value) error

type except struct {
	handler Handler
	classes []*object.Value
}

// Block is a protected block. Handlers match the raised exception's exact
// class, in registration order.
type Block struct {
	body    func() error
	excepts []except
	dflt    Handler
	orElse  func() error
	finally func() error
}

func Try(body func() error) *Block {
	return &Block{body: body}
}

func (b *Block) Except(h Handler, classes ...*object.Value) *Block {
	b.excepts = append(b.excepts, except{handler: h, classes: classes})
	return b
}

// Default handles any exception no Except entry matched.
func (b *Block) Default(h Handler) *Block {
	b.dflt = h
	return b
}

func (b *Block) Else(fn func() error) *Block {
	b.orElse = fn
	return b
}

func (b *Block) Finally(fn func() error) *Block {
	b.finally = fn
	return b
}

// Run executes the block. Errors that are not modeled exceptions pass
// through untouched. An error from the finally block replaces the result.
func (b *Block) Run() (err error) {
	if b.finally != nil {
		defer func() {
			if ferr := b.finally(); ferr != nil {
				err = ferr
			}
		}()
	}

	err = b.body()
	if err == nil {
		if b.orElse != nil {
			return b.orElse()
		}
		return nil
	}

	exc, ok := object.ExceptionOf(err)
	if !ok {
		return err
	}
	if h := b.match(exc.Class()); h != nil {
		return h(exc)
	}
	log.Debugf("unhandled %s", object.TypeName(exc))
	return err
}

func (b *Block) match(cls *object.Value) Handler {
	for _, e := range b.excepts {
		for _, c := range e.classes {
			if c == cls {
				return e.handler
			}
		}
	}
	return b.dflt
}
