package sim

import (
	"fmt"

	"github.com/tomz197/swarm/internal/particle"
	"github.com/tomz197/swarm/internal/physics"
	"golang.org/x/sync/errgroup"
)

// StepStats counts what happened during one engine step.
type StepStats struct {
	Moved    int // Particles whose position was committed
	Rejected int // Moves dropped because they would leave the world
	Contacts int // Ordered contact pairs that exchanged an impulse
}

// engine runs the per-tick passes over the particle store and keeps the
// spatial grid consistent with it.
type engine struct {
	cfg     Config
	store   *particle.Store
	grid    *physics.SpatialGrid
	cursors []Cursor

	// Per-worker impulse accumulators for the parallel evasion pass.
	deltas [][]physics.Vec2
}

// step runs attraction, integration and evasion once, in that order.
func (e *engine) step() (StepStats, error) {
	var stats StepStats

	e.attract()

	moved, rejected, err := e.integrate()
	if err != nil {
		return stats, err
	}
	stats.Moved = moved
	stats.Rejected = rejected

	if e.cfg.Workers > 1 {
		stats.Contacts, err = e.evadeParallel(e.cfg.Workers)
	} else {
		stats.Contacts, err = e.evade()
	}
	return stats, err
}

// attract pulls every particle toward its owner's cursor, spring style.
func (e *engine) attract() {
	pos := e.store.Positions()
	vel := e.store.Velocities()
	owners := e.store.Owners()
	follow := e.cfg.CursorFollowSpeed

	for i := range pos {
		target := e.cursors[owners[i]].Position
		vel[i] = vel[i].Add(target.Sub(pos[i]).Scale(follow))
	}
}

// integrate applies velocity to position and decays velocity.
// Moves that would leave the world are dropped; the drag still applies.
func (e *engine) integrate() (moved, rejected int, err error) {
	pos := e.store.Positions()
	vel := e.store.Velocities()
	slowdown := e.cfg.SlowdownFactor

	for i := range pos {
		old := pos[i]
		next := old.Add(vel[i])
		vel[i] = vel[i].Scale(slowdown)

		if !e.grid.Contains(next) {
			rejected++
			continue
		}
		if err := e.grid.Relocate(i, old, next); err != nil {
			return moved, rejected, fmt.Errorf("relocate particle %d: %w", i, err)
		}
		pos[i] = next
		moved++
	}
	return moved, rejected, nil
}

// evade applies pairwise repulsion between particles closer than BallDiameter.
// Positions are only read and velocities only written, so visiting order does
// not change the outcome. Each unordered pair is seen twice, once from each side.
func (e *engine) evade() (int, error) {
	pos := e.store.Positions()
	vel := e.store.Velocities()
	owners := e.store.Owners()

	contacts := 0
	for a := range pos {
		n, err := e.evadeFrom(a, pos, owners, func(b int, imp physics.Vec2) {
			vel[a] = vel[a].Sub(imp)
			vel[b] = vel[b].Add(imp)
		})
		if err != nil {
			return contacts, err
		}
		contacts += n
	}
	return contacts, nil
}

// evadeParallel splits particles into contiguous chunks, one per worker. Each
// worker writes impulses into its own delta buffer; the buffers are merged in
// worker order afterwards so a given particle's velocity is updated serially.
func (e *engine) evadeParallel(workers int) (int, error) {
	pos := e.store.Positions()
	vel := e.store.Velocities()
	owners := e.store.Owners()
	n := len(pos)
	if n == 0 {
		return 0, nil
	}

	workers = min(workers, n)
	if len(e.deltas) != workers {
		e.deltas = make([][]physics.Vec2, workers)
	}
	counts := make([]int, workers)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for w := range workers {
		if len(e.deltas[w]) != n {
			e.deltas[w] = make([]physics.Vec2, n)
		} else {
			clear(e.deltas[w])
		}
		lo, hi := w*chunk, min((w+1)*chunk, n)

		g.Go(func() error {
			dv := e.deltas[w]
			for a := lo; a < hi; a++ {
				c, err := e.evadeFrom(a, pos, owners, func(b int, imp physics.Vec2) {
					dv[a] = dv[a].Sub(imp)
					dv[b] = dv[b].Add(imp)
				})
				if err != nil {
					return err
				}
				counts[w] += c
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	contacts := 0
	for w := range workers {
		dv := e.deltas[w]
		for i := range vel {
			vel[i] = vel[i].Add(dv[i])
		}
		contacts += counts[w]
	}
	return contacts, nil
}

// evadeFrom finds the contacts of particle a and reports each impulse to apply.
// The impulse is subtracted from a and added to b by the caller.
func (e *engine) evadeFrom(a int, pos []physics.Vec2, owners []int, apply func(b int, imp physics.Vec2)) (int, error) {
	diameter := e.cfg.BallDiameter
	pa := pos[a]
	oa := owners[a]

	contacts := 0
	err := e.grid.QueryAround(pa, diameter, func(b int) bool {
		if b == a || !physics.CirclesOverlap(pa, pos[b], diameter) {
			return false
		}
		d := pos[b].Sub(pa)
		evasion := e.cfg.FriendlyEvasion
		if owners[b] != oa {
			evasion = e.cfg.EnemyEvasion
		}
		apply(b, d.Scale(evasion))
		contacts++
		return false
	})
	if err != nil {
		return contacts, fmt.Errorf("neighbors of particle %d: %w", a, err)
	}
	return contacts, nil
}

// steer moves each cursor by its player's held directions.
func (e *engine) steer(controls Controls) {
	for i := range e.cursors {
		d := controls[e.cursors[i].Owner]
		if d.Any() {
			e.cursors[i].Position = e.cursors[i].Position.Add(d.step(e.cfg.CursorSpeed))
		}
	}
}
