package plugin

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/votemax/exchange"
	"github.com/xraph/votemax/ledger"
)

type namedPlugin struct{ name string }

func (p *namedPlugin) Name() string { return p.name }

type transferCounter struct {
	namedPlugin
	calls atomic.Int32
	err   error
}

func (p *transferCounter) OnTransfer(_ context.Context, _ *ledger.Transfer) error {
	p.calls.Add(1)
	return p.err
}

type slowSwapPlugin struct {
	namedPlugin
	delay time.Duration
}

func (p *slowSwapPlugin) OnTokensSwapped(ctx context.Context, _ *exchange.Swap) error {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
	}
	return nil
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&namedPlugin{name: "a"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&namedPlugin{name: "a"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if r.Count() != 1 {
		t.Errorf("Count: got %d, want 1", r.Count())
	}
	if r.Get("a") == nil || r.Get("missing") != nil {
		t.Error("Get returned unexpected result")
	}
	if len(r.List()) != 1 {
		t.Errorf("List: got %d plugins", len(r.List()))
	}
}

func TestImplementedInterfaces(t *testing.T) {
	got := implementedInterfaces(&transferCounter{namedPlugin: namedPlugin{name: "t"}})
	if len(got) != 1 || got[0] != "OnTransfer" {
		t.Errorf("implementedInterfaces: got %v", got)
	}
	if got := implementedInterfaces(&namedPlugin{name: "n"}); len(got) != 0 {
		t.Errorf("bare plugin reported hooks: %v", got)
	}
}

func TestEmitDispatchesOnlyToImplementers(t *testing.T) {
	r := NewRegistry()
	a := &transferCounter{namedPlugin: namedPlugin{name: "a"}}
	b := &transferCounter{namedPlugin: namedPlugin{name: "b"}, err: errors.New("boom")}
	c := &transferCounter{namedPlugin: namedPlugin{name: "c"}}

	for _, p := range []Plugin{a, b, c, &namedPlugin{name: "bare"}} {
		if err := r.Register(p); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	r.EmitTransfer(context.Background(), &ledger.Transfer{})
	r.EmitApproval(context.Background(), &ledger.Approval{})

	// A failing hook must not stop the others.
	for _, p := range []*transferCounter{a, b, c} {
		if got := p.calls.Load(); got != 1 {
			t.Errorf("%s: got %d calls, want 1", p.Name(), got)
		}
	}
}

func TestEmitTimesOut(t *testing.T) {
	r := NewRegistry().WithTimeout(10 * time.Millisecond)
	if err := r.Register(&slowSwapPlugin{namedPlugin: namedPlugin{name: "slow"}, delay: time.Second}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	start := time.Now()
	r.EmitTokensSwapped(context.Background(), &exchange.Swap{})
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("emit blocked for %v", elapsed)
	}
}

func TestWithTimeoutIgnoresNonPositive(t *testing.T) {
	r := NewRegistry().WithTimeout(0)
	if r.timeout != DefaultTimeout {
		t.Errorf("timeout: got %v, want %v", r.timeout, DefaultTimeout)
	}
}
