package device

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"synthd/pkg/types"
)

type fakeAccel struct {
	kind     string
	probeErr error
	mem      types.DeviceInfo
	memErr   error
	syncs    int
	releases int
}

func (f *fakeAccel) Kind() string                { return f.kind }
func (f *fakeAccel) Probe(context.Context) error { return f.probeErr }
func (f *fakeAccel) Memory(context.Context) (types.DeviceInfo, error) {
	return f.mem, f.memErr
}
func (f *fakeAccel) Synchronize(context.Context) error { f.syncs++; return nil }
func (f *fakeAccel) ReleaseCached(context.Context) error {
	f.releases++
	return nil
}

func TestSelectCPUWhenNoAccelerator(t *testing.T) {
	c := Select(context.Background(), "auto", nil, zerolog.Nop())
	if c.Kind() != "cpu" {
		t.Fatalf("expected cpu, got %s", c.Kind())
	}
	if c.Accelerated() {
		t.Fatal("expected no accelerator")
	}
	if got := c.Snapshot(context.Background()); got != (types.DeviceInfo{}) {
		t.Fatalf("expected zero snapshot on cpu, got %+v", got)
	}
}

func TestSelectAccelerator(t *testing.T) {
	fa := &fakeAccel{kind: "cuda", mem: types.DeviceInfo{Allocated: 10, Total: 100}}
	c := Select(context.Background(), "accelerator", fa, zerolog.Nop())
	if c.Kind() != "cuda" {
		t.Fatalf("expected cuda, got %s", c.Kind())
	}
	snap := c.Snapshot(context.Background())
	if snap.Allocated != 10 || snap.Total != 100 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestSelectFallsBackWhenProbeFails(t *testing.T) {
	fa := &fakeAccel{kind: "cuda", probeErr: errors.New("worker unreachable")}
	c := Select(context.Background(), "accelerator", fa, zerolog.Nop())
	if c.Kind() != "cpu" {
		t.Fatalf("expected fallback to cpu, got %s", c.Kind())
	}
}

func TestSelectFallsBackWhenAcceleratorMissing(t *testing.T) {
	c := Select(context.Background(), "cuda", nil, zerolog.Nop())
	if c.Kind() != "cpu" {
		t.Fatalf("expected fallback to cpu, got %s", c.Kind())
	}
}

func TestSelectCPUPreferredSkipsAccelerator(t *testing.T) {
	fa := &fakeAccel{kind: "cuda"}
	c := Select(context.Background(), "cpu", fa, zerolog.Nop())
	if c.Kind() != "cpu" {
		t.Fatalf("expected cpu, got %s", c.Kind())
	}
	if c.Accelerated() {
		t.Fatal("cpu context must not hold an accelerator")
	}
}

func TestSelectCPUKindRuntimeFallsBack(t *testing.T) {
	// A runtime that reports cpu execution is not an accelerator.
	fa := &fakeAccel{kind: "cpu"}
	c := Select(context.Background(), "accelerator", fa, zerolog.Nop())
	if c.Kind() != "cpu" || c.Accelerated() {
		t.Fatalf("expected plain cpu context, got kind=%s accelerated=%v", c.Kind(), c.Accelerated())
	}
}

func TestSnapshotZeroOnQueryError(t *testing.T) {
	fa := &fakeAccel{kind: "cuda", memErr: errors.New("query failed")}
	c := Select(context.Background(), "auto", fa, zerolog.Nop())
	if got := c.Snapshot(context.Background()); got != (types.DeviceInfo{}) {
		t.Fatalf("expected zero snapshot on error, got %+v", got)
	}
}

func TestSynchronizeAndRelease(t *testing.T) {
	cpu := Select(context.Background(), "cpu", nil, zerolog.Nop())
	if err := cpu.Synchronize(context.Background()); err != nil {
		t.Fatalf("cpu synchronize: %v", err)
	}
	cpu.ReleaseCached(context.Background())

	fa := &fakeAccel{kind: "cuda"}
	acc := Select(context.Background(), "auto", fa, zerolog.Nop())
	if err := acc.Synchronize(context.Background()); err != nil {
		t.Fatalf("synchronize: %v", err)
	}
	acc.ReleaseCached(context.Background())
	if fa.syncs != 1 || fa.releases != 1 {
		t.Fatalf("expected delegation, got syncs=%d releases=%d", fa.syncs, fa.releases)
	}
}
