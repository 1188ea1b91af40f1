package hci_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/fake"
)

var (
	localAddr = fake.DefaultBDADDR
	peerAddr1 = lecore.MustParseAddress(lecore.AddrTypeLEPublic, "00:00:00:00:00:01")
	peerAddr2 = lecore.MustParseAddress(lecore.AddrTypeLERandom, "C0:00:00:00:00:02")
)

// testEnv wires a CommandChannel to a fake controller on one TestLoop.
type testEnv struct {
	t     *testing.T
	loop  *dispatch.TestLoop
	ctrl  *fake.Controller
	ch    *hci.CommandChannel
	notes []fake.Notification
	chErr error
}

func newTestEnv(t *testing.T, s fake.Settings) *testEnv {
	loop := dispatch.NewTestLoop()
	env := &testEnv{t: t, loop: loop, ctrl: fake.NewController(loop, s)}
	env.ctrl.SetNotificationHandler(loop, func(n fake.Notification) {
		env.notes = append(env.notes, n)
	})
	ch, err := hci.NewCommandChannel(env.ctrl, loop, hci.WithErrorHandler(func(err error) {
		env.chErr = err
	}))
	require.NoError(t, err)
	env.ch = ch
	return env
}

func (env *testEnv) addPeer(p *fake.Peer) *fake.Peer {
	require.NoError(env.t, env.ctrl.AddPeer(p))
	return p
}

func (env *testEnv) takeNotes() []fake.Notification {
	n := env.notes
	env.notes = nil
	return n
}

func (env *testEnv) connectionNotes() []fake.ConnectionStateChanged {
	var out []fake.ConnectionStateChanged
	for _, n := range env.takeNotes() {
		if c, ok := n.(fake.ConnectionStateChanged); ok {
			out = append(out, c)
		}
	}
	return out
}

// connResult records the invocations of a ConnectionResultCallback.
type connResult struct {
	calls int
	err   error
	conn  *hci.Connection
}

func (r *connResult) callback() hci.ConnectionResultCallback {
	return func(err error, c *hci.Connection) {
		r.calls++
		r.err = err
		r.conn = c
	}
}
