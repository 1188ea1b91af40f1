package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/rigado/lecore"
	"github.com/rigado/lecore/dispatch"
	"github.com/rigado/lecore/linux/hci"
	"github.com/rigado/lecore/linux/hci/fake"
)

const h4DialTimeout = 5 * time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// stack is an initialized host running on its own loop. Host objects are
// only touched through do.
type stack struct {
	loop  *dispatch.Loop
	ch    *hci.CommandChannel
	ctrl  *fake.Controller
	state *hci.AdapterState
	fatal chan error
}

func setup(c *cli.Context) error {
	if c.GlobalBool("verbose") {
		lecore.SetLogLevelMax()
	}
	return nil
}

func withStack(fn func(c *cli.Context, s *stack) error) func(c *cli.Context) error {
	return func(c *cli.Context) error {
		s, err := openStack(c)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(c, s)
	}
}

func presetSettings(name string) (fake.Settings, error) {
	switch name {
	case "legacy":
		return fake.LegacyLEConfig(), nil
	case "le":
		return fake.LEOnlyDefaults(), nil
	case "dual":
		return fake.DualModeDefaults(), nil
	}
	return fake.Settings{}, errors.Errorf("unknown preset %q", name)
}

func openTransport(c *cli.Context, loop *dispatch.Loop) (hci.Transport, *fake.Controller, error) {
	dev := c.GlobalString("device")
	var cfg hci.TransportConfig
	switch c.GlobalString("transport") {
	case "fake":
		settings, err := presetSettings(c.GlobalString("preset"))
		if err != nil {
			return nil, nil, err
		}
		ctrl := fake.NewController(loop, settings)
		if f := c.GlobalString("peers"); f != "" {
			if err := fake.LoadPeers(ctrl, f); err != nil {
				return nil, nil, errors.Wrap(err, "can't load peers")
			}
		}
		return ctrl, ctrl, nil
	case "hci":
		id, err := strconv.Atoi(dev)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "invalid device id %q", dev)
		}
		cfg = hci.TransportHCISocket(id)
	case "uart":
		cfg = hci.TransportH4Uart(dev)
	case "tcp":
		cfg = hci.TransportH4Socket(dev, h4DialTimeout)
	default:
		return nil, nil, errors.Errorf("unknown transport %q", c.GlobalString("transport"))
	}
	t, err := hci.OpenTransport(loop, cfg)
	return t, nil, err
}

func openStack(c *cli.Context) (*stack, error) {
	s := &stack{
		loop:  dispatch.NewLoop(),
		fatal: make(chan error, 1),
	}
	err := s.doErr(func() error {
		t, ctrl, err := openTransport(c, s.loop)
		if err != nil {
			return err
		}
		s.ctrl = ctrl
		s.ch, err = hci.NewCommandChannel(t, s.loop, hci.WithErrorHandler(func(err error) {
			select {
			case s.fatal <- err:
			default:
			}
		}))
		if err != nil {
			t.Close()
		}
		return err
	})
	if err != nil {
		s.loop.Close()
		return nil, errors.Wrap(err, "can't open controller")
	}

	res := make(chan error, 1)
	err = s.doErr(func() error {
		return hci.InitializeAdapterState(s.ch, func(st *hci.AdapterState, err error) {
			s.state = st
			res <- err
		})
	})
	if err == nil {
		err = s.wait(res, 0)
	}
	if err == nil && s.state == nil {
		err = errors.New("initialization interrupted")
	}
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// do runs fn on the host loop.
func (s *stack) do(fn func()) {
	if err := s.loop.Sync(fn); err != nil {
		panic(err)
	}
}

func (s *stack) doErr(fn func() error) error {
	var err error
	s.do(func() { err = fn() })
	return err
}

// wait blocks for res, a fatal channel error, an interrupt or, when d is
// positive, d to elapse. The last two yield nil.
func (s *stack) wait(res <-chan error, d time.Duration) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	var timeout <-chan time.Time
	if d > 0 {
		timeout = time.After(d)
	}
	select {
	case err := <-res:
		return err
	case err := <-s.fatal:
		return errors.Wrap(err, "controller failed")
	case <-sig:
		fmt.Fprintln(os.Stderr, "interrupted")
		return nil
	case <-timeout:
		return nil
	}
}

func (s *stack) close() {
	s.do(func() {
		if s.ch != nil {
			s.ch.Close()
		}
	})
	s.loop.Close()
	<-s.loop.Done()
}

func output(c *cli.Context, v interface{}, text string) error {
	if !c.GlobalBool("json") {
		fmt.Println(text)
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "can't encode output")
	}
	fmt.Println(string(b))
	return nil
}

func parseAddr(c *cli.Context) (lecore.DeviceAddress, error) {
	t := lecore.AddrTypeLEPublic
	if c.Bool("random") {
		t = lecore.AddrTypeLERandom
	}
	if c.String("addr") == "" {
		return lecore.DeviceAddress{}, errors.New("missing --addr")
	}
	return lecore.ParseAddress(t, c.String("addr"))
}
