package dataflow

import (
	"github.com/kvasirlab/conflux/analysis/cfg"
)

// A TransferFunction maps the input bundle of one node to a transfer
// result, defining one step of abstract interpretation.
//
// A transfer function that panics aborts the run for the whole CFG; the
// panic is reported as an error by Analysis.Run and the run is not retried.
type TransferFunction[V AbstractValue[V], S Store[S]] interface {
	Transfer(n *cfg.Node, in *TransferInput[V, S]) TransferResult[V, S]
}

// Handler is a transfer function for a single node kind.
type Handler[V AbstractValue[V], S Store[S]] func(n *cfg.Node, in *TransferInput[V, S]) TransferResult[V, S]

// Identity is the default transfer: it propagates the regular store
// unchanged and assigns no abstract value.
func Identity[V AbstractValue[V], S Store[S]](n *cfg.Node, in *TransferInput[V, S]) TransferResult[V, S] {
	return NewResult[V](in.RegularStore())
}

// A Dispatcher is a TransferFunction assembled from per-kind handlers.
// Node kinds without a registered handler fall back to the identity
// transfer, unless a custom fallback is installed.
type Dispatcher[V AbstractValue[V], S Store[S]] struct {
	handlers map[cfg.Kind]Handler[V, S]
	fallback Handler[V, S]
}

func NewDispatcher[V AbstractValue[V], S Store[S]]() *Dispatcher[V, S] {
	return &Dispatcher[V, S]{handlers: make(map[cfg.Kind]Handler[V, S])}
}

// Register installs the handler for the given node kind, replacing any
// previous one.
func (d *Dispatcher[V, S]) Register(kind cfg.Kind, h Handler[V, S]) *Dispatcher[V, S] {
	d.handlers[kind] = h
	return d
}

// Fallback installs the handler used for node kinds without a registered
// one, replacing the identity transfer.
func (d *Dispatcher[V, S]) Fallback(h Handler[V, S]) *Dispatcher[V, S] {
	d.fallback = h
	return d
}

// Transfer dispatches on the node's kind.
func (d *Dispatcher[V, S]) Transfer(n *cfg.Node, in *TransferInput[V, S]) TransferResult[V, S] {
	if h, found := d.handlers[n.Kind()]; found {
		return h(n, in)
	}
	if d.fallback != nil {
		return d.fallback(n, in)
	}
	return Identity[V, S](n, in)
}
