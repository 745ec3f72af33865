package game

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"wildscrap.game/internal/persistence/save"
	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/input"
	"wildscrap.game/internal/sim/inventory"
	"wildscrap.game/internal/sim/mathx"
	"wildscrap.game/internal/sim/tuning"
	"wildscrap.game/internal/sim/world"
)

type recorder struct {
	mu      sync.Mutex
	events  []Event
	notices []Notice
}

func (r *recorder) WriteEvent(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) lastNotice(t *testing.T) Notice {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		t.Fatalf("no notices")
	}
	return r.notices[len(r.notices)-1]
}

func (r *recorder) hasEvent(typ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

// quietTuning has no enemies so vitals only change through the test.
func quietTuning() tuning.Tuning {
	t := tuning.Defaults()
	t.Enemies.Spawns = nil
	return t
}

func newTestLoop(t *testing.T, tu tuning.Tuning, saves save.Store) (*Loop, *recorder) {
	t.Helper()
	rec := &recorder{}
	cfg := ConfigFromTuning(tu)
	n := 0
	cfg.NewID = func() string {
		n++
		return "st-" + string(rune('a'+n-1))
	}
	l := NewLoop(tu, Deps{
		Store:    NewStore(cfg),
		Saves:    saves,
		Events:   rec,
		Notifier: rec,
	})
	return l, rec
}

func completeNext(t *testing.T, l *Loop) {
	t.Helper()
	select {
	case c := <-l.done:
		l.complete(c)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for persistence completion")
	}
}

func TestLoop_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	saves := save.NewMemoryStore()
	l, rec := newTestLoop(t, quietTuning(), saves)

	l.Apply(ctx, Command{Op: OpAddItem, Resource: inventory.Wood, Amount: 3})
	l.Apply(ctx, Command{Op: OpTakeDamage, Damage: 10})
	pos := mathx.V(2, 0, 4)
	l.Apply(ctx, Command{Op: OpAddStructure, Kind: build.Floor, Position: &pos})
	if err := l.Apply(ctx, Command{Op: OpSave}); err != nil {
		t.Fatalf("save: %v", err)
	}
	completeNext(t, l)
	if n := rec.lastNotice(t); n.Op != OpSave || n.Level != NoticeInfo {
		t.Fatalf("save notice: %+v", n)
	}

	for i := 0; i < 500; i++ {
		l.StepOnce(1.0 / 60)
	}
	l.Apply(ctx, Command{Op: OpAddItem, Resource: inventory.Stone, Amount: 7})
	l.Apply(ctx, Command{Op: OpTakeDamage, Damage: 30})
	before := l.Latest()

	l.Apply(ctx, Command{Op: OpLoad})
	completeNext(t, l)
	got := l.Latest()
	if got.HP != 90 {
		t.Fatalf("hp=%v want 90", got.HP)
	}
	if got.Inventory != (inventory.Counts{Wood: 3}) {
		t.Fatalf("inventory=%+v", got.Inventory)
	}
	if len(got.Structures) != 1 || got.Structures[0].Position != pos {
		t.Fatalf("structures=%+v", got.Structures)
	}
	if got.Hunger != before.Hunger || got.Thirst != before.Thirst {
		t.Fatalf("load restored hunger/thirst")
	}
	if !rec.hasEvent(EventSaved) || !rec.hasEvent(EventLoaded) {
		t.Fatalf("journal missing save/load events")
	}
}

func TestLoop_LoadMissingSlotLeavesState(t *testing.T) {
	ctx := context.Background()
	l, rec := newTestLoop(t, quietTuning(), save.NewMemoryStore())
	l.Apply(ctx, Command{Op: OpAddItem, Resource: inventory.Scrap})
	before := l.Latest()

	l.Apply(ctx, Command{Op: OpLoad})
	completeNext(t, l)
	after := l.Latest()
	if after.Inventory != before.Inventory || after.HP != before.HP {
		t.Fatalf("state changed on missing save")
	}
	if n := rec.lastNotice(t); n.Level != NoticeError || n.Text != "No save found" {
		t.Fatalf("notice: %+v", n)
	}
}

type failingStore struct{ err error }

func (f failingStore) Upsert(context.Context, int64, save.Snapshot) error { return f.err }
func (f failingStore) Fetch(context.Context, int64) (save.Snapshot, error) {
	return save.Snapshot{}, f.err
}

func TestLoop_SaveFailureIsReported(t *testing.T) {
	ctx := context.Background()
	l, rec := newTestLoop(t, quietTuning(), failingStore{err: errors.New("network down")})
	l.Apply(ctx, Command{Op: OpAddItem, Resource: inventory.Water, Amount: 2})
	l.Apply(ctx, Command{Op: OpSave})
	completeNext(t, l)
	if n := rec.lastNotice(t); n.Level != NoticeError || n.Op != OpSave {
		t.Fatalf("notice: %+v", n)
	}
	if l.Latest().Inventory.Water != 2 {
		t.Fatalf("failed save changed state")
	}
	if !rec.hasEvent(EventSaveFailed) {
		t.Fatalf("missing SAVE_FAILED event")
	}
}

// gatedStore answers each Fetch with the snapshot sent on its gate.
type gatedStore struct {
	gates chan chan save.Snapshot
}

func (g *gatedStore) Upsert(context.Context, int64, save.Snapshot) error { return nil }
func (g *gatedStore) Fetch(ctx context.Context, _ int64) (save.Snapshot, error) {
	gate := make(chan save.Snapshot)
	g.gates <- gate
	select {
	case s := <-gate:
		return s, nil
	case <-ctx.Done():
		return save.Snapshot{}, ctx.Err()
	}
}

func TestLoop_StaleLoadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	g := &gatedStore{gates: make(chan chan save.Snapshot, 2)}
	l, rec := newTestLoop(t, quietTuning(), g)

	l.Apply(ctx, Command{Op: OpLoad})
	first := <-g.gates
	l.Apply(ctx, Command{Op: OpLoad})
	second := <-g.gates

	second <- save.Snapshot{HP: 40}
	completeNext(t, l)
	first <- save.Snapshot{HP: 70}
	completeNext(t, l)

	if hp := l.Latest().HP; hp != 40 {
		t.Fatalf("hp=%v want 40 from the latest load", hp)
	}
	if !rec.hasEvent(EventLoadDiscard) {
		t.Fatalf("stale load not journaled")
	}
}

func TestLoop_UnfencedLoadAppliesInArrivalOrder(t *testing.T) {
	ctx := context.Background()
	tu := quietTuning()
	tu.Persist.FenceStaleLoads = false
	g := &gatedStore{gates: make(chan chan save.Snapshot, 2)}
	l, _ := newTestLoop(t, tu, g)

	l.Apply(ctx, Command{Op: OpLoad})
	first := <-g.gates
	l.Apply(ctx, Command{Op: OpLoad})
	second := <-g.gates
	second <- save.Snapshot{HP: 40}
	completeNext(t, l)
	first <- save.Snapshot{HP: 70}
	completeNext(t, l)
	if hp := l.Latest().HP; hp != 70 {
		t.Fatalf("hp=%v want 70", hp)
	}
}

func TestLoop_AttackCollectsNodeInFront(t *testing.T) {
	tu := quietTuning()
	tu.WorldGen.Trees, tu.WorldGen.Rocks, tu.WorldGen.Scrap = 0, 0, 0
	field := world.NewField(tu)
	l := NewLoop(tu, Deps{Field: field})
	l.StepOnce(0)
	l.input.SetAction(input.ActionAttack, true)
	l.StepOnce(0)
	if l.Latest().Inventory != (inventory.Counts{}) {
		t.Fatalf("attack on empty world collected something")
	}
	if l.input.Poll().Actions.Attack {
		t.Fatalf("attack flag not cleared")
	}

	tu.WorldGen.Rocks = 200
	tu.WorldGen.RockSpread = 6
	l = NewLoop(tu, Deps{Field: world.NewField(tu)})
	for turn := 0; turn < 64 && l.Latest().Inventory.Stone == 0; turn++ {
		l.input.SetAction(input.ActionAttack, true)
		l.input.SetLook(2*math.Pi/64/tu.Player.LookScale, 0)
		l.StepOnce(0)
	}
	if l.Latest().Inventory.Stone != 1 {
		t.Fatalf("stone=%d want 1", l.Latest().Inventory.Stone)
	}
	if len(l.Latest().World.Collected) != 1 {
		t.Fatalf("collected=%v", l.Latest().World.Collected)
	}
}

func TestLoop_BuildActionPlacesOnlyInBuildMode(t *testing.T) {
	ctx := context.Background()
	l, rec := newTestLoop(t, quietTuning(), nil)
	l.input.SetAction(input.ActionBuild, true)
	l.StepOnce(0)
	if len(l.Latest().Structures) != 0 {
		t.Fatalf("placed outside build mode")
	}
	if l.input.Poll().Actions.Build {
		t.Fatalf("build flag not cleared")
	}

	l.Apply(ctx, Command{Op: OpToggleBuild})
	l.Apply(ctx, Command{Op: OpSetBuildItem, Kind: build.Shelter})
	l.Apply(ctx, Command{Op: OpRotate})
	l.input.SetAction(input.ActionBuild, true)
	l.StepOnce(0)
	s := l.Latest().Structures
	if len(s) != 1 {
		t.Fatalf("structures=%d want 1", len(s))
	}
	if s[0].Kind != build.Shelter || s[0].Position != mathx.V(0, 0, -4) {
		t.Fatalf("placed %+v", s[0])
	}
	if math.Abs(s[0].Rotation-math.Pi/2) > 1e-12 {
		t.Fatalf("rotation=%v", s[0].Rotation)
	}
	if !rec.hasEvent(EventPlaced) {
		t.Fatalf("placement not journaled")
	}
}

func TestLoop_EnemyBitesAndDeathIsJournaled(t *testing.T) {
	tu := tuning.Defaults()
	tu.Enemies.Spawns = [][3]float64{{1, 0, 0}}
	tu.Enemies.BiteChance = 1
	tu.Enemies.BiteDamage = 25
	l, rec := newTestLoop(t, tu, nil)
	for i := 0; i < 4; i++ {
		l.StepOnce(1.0 / 60)
	}
	st := l.Latest()
	if !st.IsDead || st.HP != 0 {
		t.Fatalf("expected death, got hp=%v dead=%v", st.HP, st.IsDead)
	}
	if !rec.hasEvent(EventDeath) {
		t.Fatalf("death not journaled")
	}
	l.Apply(context.Background(), Command{Op: OpReset})
	if st := l.Latest(); st.IsDead || st.HP != 100 {
		t.Fatalf("reset: %+v", st.View)
	}
}

func TestLoop_RunAppliesCommandsAndTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tu := quietTuning()
	tu.TickRateHz = 200
	l, _ := newTestLoop(t, tu, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	if err := l.Submit(ctx, Command{Op: OpAddItem, Resource: inventory.Wood, Amount: 2}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := l.Submit(ctx, Command{Op: "fly"}); !errors.Is(err, ErrUnknownOp) {
		t.Fatalf("unknown op err=%v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		st := l.Latest()
		if st.Inventory.Wood == 2 && st.Tick > 5 {
			if st.Hunger >= 100 {
				t.Fatalf("ticks did not decay hunger")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("loop did not make progress: %+v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("run err=%v", err)
	}
}
