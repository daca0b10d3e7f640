/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package fault

import (
	"github.com/kentakayama/verifypin-harness/internal/util"
	"github.com/kentakayama/verifypin-harness/internal/verifypin"
)

// Recorder never faults. It keeps every fault point a run reaches, in
// order, which makes it the golden-run tracer.
type Recorder struct {
	points []verifypin.Point
}

func (r *Recorder) Fault(p verifypin.Point) bool {
	r.points = append(r.points, p)
	return false
}

func (r *Recorder) Points() []verifypin.Point {
	out := make([]verifypin.Point, len(r.points))
	copy(out, r.points)
	return out
}

// Targeted faults at each of its points the first time the point is reached.
type Targeted struct {
	targets util.Set[verifypin.Point]
	fired   util.Set[verifypin.Point]
}

func NewTargeted(points ...verifypin.Point) *Targeted {
	t := &Targeted{
		targets: util.NewSet[verifypin.Point](),
		fired:   util.NewSet[verifypin.Point](),
	}
	for _, p := range points {
		t.targets.Add(p)
	}
	return t
}

func (t *Targeted) Fault(p verifypin.Point) bool {
	if !t.targets.Has(p) || t.fired.Has(p) {
		return false
	}
	t.fired.Add(p)
	return true
}

// Applied returns how many targets were actually reached and faulted.
func (t *Targeted) Applied() int {
	return t.fired.Len()
}
