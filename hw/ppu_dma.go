package hw

import (
	"nescore/emu/log"
	"nescore/hw/hwio"
)

// OAM DMA halts the CPU for 513 cycles, plus one alignment cycle when the
// transfer starts on an odd cycle, that is the cycle after the write.
const oamDMACycles = 513

// ppuDMA handles the DMA transfer of OAM (sprites attributes) to the PPU.
type ppuDMA struct {
	cpu *CPU

	OAMDMA hwio.Reg8
}

func (dma *ppuDMA) init(cpu *CPU) {
	dma.cpu = cpu
	dma.OAMDMA = hwio.Reg8{
		Name:    "OAMDMA",
		ReadCb:  func(uint8) uint8 { return 0 },
		WriteCb: dma.writeOAMDMA,
	}
}

// writeOAMDMA copies the 256 bytes of CPU page val into OAM, starting at
// the current OAMADDR.
func (dma *ppuDMA) writeOAMDMA(_, val uint8) {
	cpu := dma.cpu
	stall := int64(oamDMACycles) + cpu.instrEnd()&1

	log.ModCPU.DebugZ("OAM DMA transfer").
		Hex8("page", val).
		Int64("stall", stall).
		End()

	page := uint16(val) << 8
	for i := range uint16(0x100) {
		data := cpu.Read8(page | i)
		if cpu.PPU != nil {
			cpu.PPU.writeOAM(data)
		}
	}
	cpu.addStall(stall)
}
