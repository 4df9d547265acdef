package apu

import "nescore/hw/snapshot"

// timer is a down counter clocked by the CPU. It reloads with its period and
// emits a clock when it reaches 0.
type timer struct {
	timer  uint16
	period uint16
}

func (t *timer) reset() {
	t.timer = 0
	t.period = 0
}

func (t *timer) tick() bool {
	if t.timer == 0 {
		t.timer = t.period
		return true
	}
	t.timer--
	return false
}

func (t *timer) saveState(state *snapshot.APUTimer) {
	state.Timer = t.timer
	state.Period = t.period
}

func (t *timer) setState(state *snapshot.APUTimer) {
	t.timer = state.Timer
	t.period = state.Period
}
