package hw

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"nescore/hw/input"
)

func readPort(cpu *CPU, addr uint16, n int) []uint8 {
	var bits []uint8
	for range n {
		bits = append(bits, cpu.Read8(addr))
	}
	return bits
}

func TestInputPorts(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Ports.SetButtons(0, input.A|input.Start|input.Right)
	cpu.Ports.SetButtons(1, input.B)

	// Strobe.
	cpu.Write8(0x4016, 1)
	cpu.Write8(0x4016, 0)

	want := []uint8{0x41, 0x40, 0x40, 0x41, 0x40, 0x40, 0x40, 0x41, 0x41, 0x41}
	if diff := cmp.Diff(want, readPort(cpu, 0x4016, 10)); diff != "" {
		t.Errorf("port 1 mismatch (-want +got):\n%s", diff)
	}
	want = []uint8{0x40, 0x41, 0x40, 0x40, 0x40, 0x40, 0x40, 0x40, 0x41}
	if diff := cmp.Diff(want, readPort(cpu, 0x4017, 9)); diff != "" {
		t.Errorf("port 2 mismatch (-want +got):\n%s", diff)
	}
}

func TestInputPortsStrobeHigh(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Ports.SetButtons(0, input.A)
	cpu.Write8(0x4016, 1)

	// While strobe is high, the first button is reported over and over.
	want := []uint8{0x41, 0x41, 0x41}
	if diff := cmp.Diff(want, readPort(cpu, 0x4016, 3)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// Buttons pressed after the latch aren't visible.
	cpu.Write8(0x4016, 0)
	cpu.Ports.SetButtons(0, input.B)
	want = []uint8{0x41, 0x40}
	if diff := cmp.Diff(want, readPort(cpu, 0x4016, 2)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestInputPortsState(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Ports.SetButtons(0, input.Select|input.Up)
	cpu.Write8(0x4016, 1)
	cpu.Write8(0x4016, 0)
	cpu.Read8(0x4016)

	state := cpu.Ports.State()
	var ports InputPorts
	ports.init()
	ports.SetState(&state)
	if diff := cmp.Diff(state, ports.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	for i := range 7 {
		if got, want := ports.In.Read8(0x4016, false), cpu.Read8(0x4016); got != want {
			t.Errorf("read %d: restored port = %02X, want %02X", i, got, want)
		}
	}
}
