package hci

import (
	"github.com/pkg/errors"

	"github.com/rigado/lecore/linux/hci/cmd"
	"github.com/rigado/lecore/linux/hci/evt"
)

type queuedCommand struct {
	c  cmd.Command
	cb func(EventPacket)
}

// SequentialCommandRunner sends a batch of commands one after the other. Each
// command must complete successfully before the next one is sent; the first
// failure aborts the batch.
type SequentialCommandRunner struct {
	ch *CommandChannel

	queue    []queuedCommand
	statusCb func(error)
	running  bool
	closeID  EventHandlerID

	// generation invalidates completions that arrive after Cancel.
	generation uint64
}

// NewSequentialCommandRunner ...
func NewSequentialCommandRunner(ch *CommandChannel) *SequentialCommandRunner {
	return &SequentialCommandRunner{ch: ch}
}

// QueueCommand appends c to the batch. cb, if not nil, receives the Command
// Complete of c when it succeeds. Commands may be queued while the batch is
// running; they run after the ones already queued.
func (r *SequentialCommandRunner) QueueCommand(c cmd.Command, cb func(EventPacket)) {
	r.queue = append(r.queue, queuedCommand{c: c, cb: cb})
}

// RunCommands starts the batch. statusCb is called once: nil when every
// command succeeded, the first failure otherwise. A channel that stops while
// the batch runs fails it with ErrChannelClosed.
func (r *SequentialCommandRunner) RunCommands(statusCb func(error)) error {
	if r.running {
		return errors.Wrap(ErrNotReady, "commands already running")
	}
	if len(r.queue) == 0 {
		return errors.Wrap(ErrInvalidParams, "no commands queued")
	}
	r.running = true
	r.statusCb = statusCb
	gen := r.generation
	r.closeID = r.ch.AddCloseHandler(func(err error) {
		if gen != r.generation || !r.running {
			return
		}
		r.generation++
		r.finish(err)
	})
	r.next()
	return nil
}

// IsReady reports whether RunCommands can be called.
func (r *SequentialCommandRunner) IsReady() bool { return !r.running }

// HasQueuedCommands ...
func (r *SequentialCommandRunner) HasQueuedCommands() bool { return len(r.queue) > 0 }

// Cancel drops the queued commands. A running batch reports ErrCanceled;
// completions of commands already sent are ignored.
func (r *SequentialCommandRunner) Cancel() {
	r.queue = nil
	r.generation++
	if !r.running {
		return
	}
	r.finish(ErrCanceled)
}

func (r *SequentialCommandRunner) finish(err error) {
	cb := r.statusCb
	r.running = false
	r.statusCb = nil
	r.ch.RemoveEventHandler(r.closeID)
	r.closeID = 0
	if err != nil {
		r.queue = nil
	}
	if cb != nil {
		cb(err)
	}
}

func (r *SequentialCommandRunner) next() {
	if len(r.queue) == 0 {
		r.finish(nil)
		return
	}
	qc := r.queue[0]
	r.queue = r.queue[1:]

	gen := r.generation
	_, err := r.ch.SendCommand(qc.c, evt.CommandCompleteCode, func(_ TransactionID, e EventPacket) {
		if gen != r.generation || !r.running {
			return
		}
		if err := EventStatus(e); err != nil {
			r.generation++
			r.finish(err)
			return
		}
		if qc.cb != nil {
			qc.cb(e)
		}
		if gen != r.generation || !r.running {
			return
		}
		r.next()
	})
	if err != nil {
		r.generation++
		r.finish(errors.Wrapf(err, "can't send %v", qc.c))
	}
}
