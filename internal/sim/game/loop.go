package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"wildscrap.game/internal/persistence/save"
	"wildscrap.game/internal/sim/build"
	"wildscrap.game/internal/sim/input"
	"wildscrap.game/internal/sim/mathx"
	"wildscrap.game/internal/sim/tuning"
	"wildscrap.game/internal/sim/world"
)

var ErrUnknownOp = errors.New("unknown op")

type LoopConfig struct {
	TickRateHz int

	Slot            int64
	FenceStaleLoads bool
	PersistTimeout  time.Duration

	MeleeRange float64
	BuildReach float64
	GridSize   float64
	BiteDamage float64
}

func LoopConfigFromTuning(t tuning.Tuning) LoopConfig {
	return LoopConfig{
		TickRateHz:      t.TickRateHz,
		Slot:            t.Persist.SlotID,
		FenceStaleLoads: t.Persist.FenceStaleLoads,
		PersistTimeout:  time.Duration(t.Persist.TimeoutMs) * time.Millisecond,
		MeleeRange:      t.Player.MeleeRange,
		BuildReach:      t.Build.Reach,
		GridSize:        t.Build.GridSize,
		BiteDamage:      t.Enemies.BiteDamage,
	}
}

type Deps struct {
	Store    *Store
	Field    *world.Field
	Input    *input.State
	Saves    save.Store
	Events   EventLogger
	Notifier Notifier
	Logger   *log.Logger
}

// State is what the loop publishes after every change.
type State struct {
	Tick uint64 `json:"tick"`
	View
	World world.FieldView `json:"world"`
}

// Loop owns the Store and the world Field. Run is the only goroutine that
// mutates them; everything else posts Commands.
type Loop struct {
	cfg    LoopConfig
	tuning tuning.Tuning

	store  *Store
	field  *world.Field
	input  *input.State
	saves  save.Store
	events EventLogger
	notify Notifier
	logger *log.Logger

	inbox chan Command
	done  chan completion

	tick    uint64
	loadSeq uint64
	wasDead bool

	latest atomic.Pointer[State]
}

type completion struct {
	op   Op
	seq  uint64
	snap save.Snapshot
	err  error
}

func NewLoop(t tuning.Tuning, d Deps) *Loop {
	if d.Store == nil {
		d.Store = NewStore(ConfigFromTuning(t))
	}
	if d.Field == nil {
		d.Field = world.NewField(t)
	}
	if d.Input == nil {
		d.Input = input.New()
	}
	if d.Saves == nil {
		d.Saves = save.NewMemoryStore()
	}
	cfg := LoopConfigFromTuning(t)
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 60
	}
	if cfg.Slot <= 0 {
		cfg.Slot = save.DefaultSlot
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 5 * time.Second
	}
	l := &Loop{
		cfg:     cfg,
		tuning:  t,
		store:   d.Store,
		field:   d.Field,
		input:   d.Input,
		saves:   d.Saves,
		events:  d.Events,
		notify:  d.Notifier,
		logger:  d.Logger,
		inbox:   make(chan Command, 256),
		done:    make(chan completion, 16),
		wasDead: d.Store.Dead(),
	}
	l.publish()
	return l
}

func (l *Loop) Input() *input.State { return l.input }

// Latest returns the most recently published state. It never blocks.
func (l *Loop) Latest() *State { return l.latest.Load() }

// Submit posts a command to the owner goroutine.
func (l *Loop) Submit(ctx context.Context, cmd Command) error {
	if !cmd.Op.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
	}
	select {
	case l.inbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(l.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	dt := interval.Seconds()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-l.inbox:
			if err := l.Apply(ctx, cmd); err != nil {
				l.logf("apply %s: %v", cmd.Op, err)
			}
		case c := <-l.done:
			l.complete(c)
		case <-ticker.C:
			l.StepOnce(dt)
		}
	}
}

// StepOnce runs one frame: input-driven actions, enemies, then one survival
// tick. Tests call it directly instead of Run.
func (l *Loop) StepOnce(dt float64) {
	l.tick++
	f := l.input.Poll()
	attack := l.input.Consume(input.ActionAttack)
	place := l.input.Consume(input.ActionBuild)

	if !l.store.Dead() {
		l.field.MovePlayer(f, dt)
		if attack {
			l.attack()
		}
		if place && l.store.BuildState().BuildMode {
			l.placeStructure(nil, nil, "")
		}
	}
	for n := l.field.StepEnemies(dt); n > 0; n-- {
		l.store.TakeDamage(l.cfg.BiteDamage)
	}
	l.store.Tick()
	l.checkDeath()
	l.publish()
}

// Apply runs one command on the owner goroutine.
func (l *Loop) Apply(ctx context.Context, cmd Command) error {
	defer l.publish()
	switch cmd.Op {
	case OpAddItem:
		l.store.AddItem(cmd.Resource, amountOrOne(cmd.Amount))
	case OpRemoveItem:
		l.store.RemoveItem(cmd.Resource, amountOrOne(cmd.Amount))
	case OpTakeDamage:
		l.store.TakeDamage(cmd.Damage)
		l.checkDeath()
	case OpToggleBuild:
		l.store.ToggleBuildMode()
	case OpSetBuildItem:
		l.store.SetBuildItem(cmd.Kind)
	case OpRotate:
		l.store.RotateStructure()
	case OpAddStructure:
		l.placeStructure(cmd.Position, cmd.Rotation, cmd.Kind)
	case OpReset:
		l.store.ResetGame()
		l.field.Respawn(l.tuning)
		l.wasDead = l.store.Dead()
		l.record(Event{Type: EventReset})
	case OpSave:
		l.saveGame(ctx)
	case OpLoad:
		l.loadGame(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, cmd.Op)
	}
	return nil
}

func amountOrOne(n int) int {
	if n == 0 {
		return 1
	}
	return n
}

func (l *Loop) attack() {
	p := l.field.Player()
	hit, ok := l.field.RaycastResource(p.Pos, p.Forward(), l.cfg.MeleeRange)
	if !ok {
		return
	}
	res, ok := l.field.Collect(hit.NodeID)
	if !ok {
		return
	}
	l.store.AddItem(res, 1)
	l.record(Event{Type: EventCollected, ID: hit.NodeID, Kind: string(res)})
}

func (l *Loop) placeStructure(pos *mathx.Vec3, rot *float64, kind build.Kind) {
	if kind == "" {
		kind = l.store.BuildState().Selected
	}
	var at mathx.Vec3
	if pos != nil {
		at = *pos
	} else {
		p := l.field.Player()
		at = build.PlacementPoint(p.Pos, p.Yaw, l.cfg.BuildReach, l.cfg.GridSize)
	}
	var (
		st build.Structure
		ok bool
	)
	if rot != nil {
		st, ok = l.store.AddStructureRotated(at, kind, *rot)
	} else {
		st, ok = l.store.AddStructure(at, kind)
	}
	if ok {
		l.record(Event{Type: EventPlaced, ID: st.ID, Kind: string(st.Kind)})
	}
}

func (l *Loop) checkDeath() {
	dead := l.store.Dead()
	if dead && !l.wasDead {
		l.record(Event{Type: EventDeath})
		l.notice(Notice{Level: NoticeWarn, Text: "You died"})
	}
	l.wasDead = dead
}

// saveGame captures the snapshot now and upserts it in the background.
// Saves are not fenced: every issued save is written and reported.
func (l *Loop) saveGame(ctx context.Context) {
	snap := l.store.Snapshot()
	slot := l.cfg.Slot
	go func() {
		opCtx, cancel := context.WithTimeout(ctx, l.cfg.PersistTimeout)
		defer cancel()
		err := l.saves.Upsert(opCtx, slot, snap)
		l.post(ctx, completion{op: OpSave, snap: snap, err: err})
	}()
}

// loadGame fetches the slot in the background; the result is applied by the
// owner goroutine when it arrives.
func (l *Loop) loadGame(ctx context.Context) {
	l.loadSeq++
	seq := l.loadSeq
	slot := l.cfg.Slot
	go func() {
		opCtx, cancel := context.WithTimeout(ctx, l.cfg.PersistTimeout)
		defer cancel()
		snap, err := l.saves.Fetch(opCtx, slot)
		l.post(ctx, completion{op: OpLoad, seq: seq, snap: snap, err: err})
	}()
}

func (l *Loop) post(ctx context.Context, c completion) {
	select {
	case l.done <- c:
	case <-ctx.Done():
	}
}

func (l *Loop) complete(c completion) {
	defer l.publish()
	switch c.op {
	case OpSave:
		if c.err != nil {
			l.logf("save slot %d: %v", l.cfg.Slot, c.err)
			l.record(Event{Type: EventSaveFailed, Slot: l.cfg.Slot, Detail: c.err.Error()})
			l.notice(Notice{Level: NoticeError, Op: OpSave, Text: "Save failed: " + c.err.Error()})
			return
		}
		hp := c.snap.HP
		l.record(Event{Type: EventSaved, Slot: l.cfg.Slot, SavedHP: &hp, Structures: len(c.snap.Structures)})
		l.notice(Notice{Level: NoticeInfo, Op: OpSave, Text: "Game saved"})
	case OpLoad:
		if l.cfg.FenceStaleLoads && c.seq != l.loadSeq {
			l.record(Event{Type: EventLoadDiscard, Slot: l.cfg.Slot, Detail: fmt.Sprintf("seq %d superseded by %d", c.seq, l.loadSeq)})
			return
		}
		err := c.err
		if err == nil {
			err = l.store.ApplySnapshot(c.snap)
		}
		if err != nil {
			l.logf("load slot %d: %v", l.cfg.Slot, err)
			l.record(Event{Type: EventLoadFailed, Slot: l.cfg.Slot, Detail: err.Error()})
			text := "Load failed: " + err.Error()
			if errors.Is(err, save.ErrNotFound) {
				text = "No save found"
			}
			l.notice(Notice{Level: NoticeError, Op: OpLoad, Text: text})
			return
		}
		hp := c.snap.HP
		l.record(Event{Type: EventLoaded, Slot: l.cfg.Slot, SavedHP: &hp, Structures: len(c.snap.Structures)})
		l.notice(Notice{Level: NoticeInfo, Op: OpLoad, Text: "Game loaded"})
		l.checkDeath()
	}
}

func (l *Loop) publish() {
	s := &State{Tick: l.tick, View: l.store.View(), World: l.field.View()}
	l.latest.Store(s)
}

func (l *Loop) record(e Event) {
	if l.events == nil {
		return
	}
	e.Tick = l.tick
	e.Hours = l.store.Hours()
	e.HP = l.store.Vitals().HP()
	if err := l.events.WriteEvent(e); err != nil {
		l.logf("journal %s: %v", e.Type, err)
	}
}

func (l *Loop) notice(n Notice) {
	if l.notify != nil {
		l.notify.Notify(n)
	}
}

func (l *Loop) logf(format string, args ...any) {
	if l.logger != nil {
		l.logger.Printf(format, args...)
	}
}
