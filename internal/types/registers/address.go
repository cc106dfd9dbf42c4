package registers

import (
	"fmt"
	"strings"
)

// Address is the offset of a custom chip register from the base
// of the custom register space ($DFF000). Only even offsets in
// [$000, $1FE] are valid.
type Address = uint16

const (
	BLTDDAT  Address = 0x000
	DMACONR  Address = 0x002
	VPOSR    Address = 0x004
	VHPOSR   Address = 0x006
	DSKDATR  Address = 0x008
	JOY0DAT  Address = 0x00A
	JOY1DAT  Address = 0x00C
	CLXDAT   Address = 0x00E
	ADKCONR  Address = 0x010
	POT0DAT  Address = 0x012
	POT1DAT  Address = 0x014
	POTGOR   Address = 0x016
	SERDATR  Address = 0x018
	DSKBYTR  Address = 0x01A
	INTENAR  Address = 0x01C
	INTREQR  Address = 0x01E
	DSKPTH   Address = 0x020
	DSKPTL   Address = 0x022
	DSKLEN   Address = 0x024
	DSKDAT   Address = 0x026
	REFPTR   Address = 0x028
	VPOSW    Address = 0x02A
	VHPOSW   Address = 0x02C
	COPCON   Address = 0x02E
	SERDAT   Address = 0x030
	SERPER   Address = 0x032
	POTGO    Address = 0x034
	JOYTEST  Address = 0x036
	STREQU   Address = 0x038
	STRVBL   Address = 0x03A
	STRHOR   Address = 0x03C
	STRLONG  Address = 0x03E
	BLTCON0  Address = 0x040
	BLTCON1  Address = 0x042
	BLTAFWM  Address = 0x044
	BLTALWM  Address = 0x046
	BLTCPTH  Address = 0x048
	BLTCPTL  Address = 0x04A
	BLTBPTH  Address = 0x04C
	BLTBPTL  Address = 0x04E
	BLTAPTH  Address = 0x050
	BLTAPTL  Address = 0x052
	BLTDPTH  Address = 0x054
	BLTDPTL  Address = 0x056
	BLTSIZE  Address = 0x058
	BLTCON0L Address = 0x05A // ECS
	BLTSIZV  Address = 0x05C // ECS
	BLTSIZH  Address = 0x05E // ECS
	BLTCMOD  Address = 0x060
	BLTBMOD  Address = 0x062
	BLTAMOD  Address = 0x064
	BLTDMOD  Address = 0x066
	BLTCDAT  Address = 0x070
	BLTBDAT  Address = 0x072
	BLTADAT  Address = 0x074
	DENISEID Address = 0x07C
	DSKSYNC  Address = 0x07E
	COP1LCH  Address = 0x080
	COP1LCL  Address = 0x082
	COP2LCH  Address = 0x084
	COP2LCL  Address = 0x086
	COPJMP1  Address = 0x088
	COPJMP2  Address = 0x08A
	COPINS   Address = 0x08C
	DIWSTRT  Address = 0x08E
	DIWSTOP  Address = 0x090
	DDFSTRT  Address = 0x092
	DDFSTOP  Address = 0x094
	DMACON   Address = 0x096
	CLXCON   Address = 0x098
	INTENA   Address = 0x09A
	INTREQ   Address = 0x09C
	ADKCON   Address = 0x09E
	AUD0LCH  Address = 0x0A0
	AUD0DAT  Address = 0x0AA
	AUD1DAT  Address = 0x0BA
	AUD2DAT  Address = 0x0CA
	AUD3DAT  Address = 0x0DA
	BPL1PTH  Address = 0x0E0
	BPL1PTL  Address = 0x0E2
	BPLCON0  Address = 0x100
	BPLCON1  Address = 0x102
	BPLCON2  Address = 0x104
	BPLCON3  Address = 0x106 // ECS
	BPL1MOD  Address = 0x108
	BPL2MOD  Address = 0x10A
	BPL1DAT  Address = 0x110
	SPR0PTH  Address = 0x120
	SPR0PTL  Address = 0x122
	SPR0POS  Address = 0x140
	SPR0CTL  Address = 0x142
	SPR0DATA Address = 0x144
	SPR0DATB Address = 0x146
	COLOR00  Address = 0x180
	COLOR31  Address = 0x1BE
	HTOTAL   Address = 0x1C0
	BEAMCON0 Address = 0x1DC
	DIWHIGH  Address = 0x1E4
	NOOP     Address = 0x1FE

	// Last is the highest valid register offset.
	Last Address = 0x1FE
)

// IsColor reports whether a is one of the 32 colour registers.
func IsColor(a Address) bool {
	return a >= COLOR00 && a <= COLOR31
}

var names [0x100]string

func init() {
	fixed := map[Address]string{
		BLTDDAT: "BLTDDAT", DMACONR: "DMACONR", VPOSR: "VPOSR", VHPOSR: "VHPOSR",
		DSKDATR: "DSKDATR", JOY0DAT: "JOY0DAT", JOY1DAT: "JOY1DAT", CLXDAT: "CLXDAT",
		ADKCONR: "ADKCONR", POT0DAT: "POT0DAT", POT1DAT: "POT1DAT", POTGOR: "POTGOR",
		SERDATR: "SERDATR", DSKBYTR: "DSKBYTR", INTENAR: "INTENAR", INTREQR: "INTREQR",
		DSKPTH: "DSKPTH", DSKPTL: "DSKPTL", DSKLEN: "DSKLEN", DSKDAT: "DSKDAT",
		REFPTR: "REFPTR", VPOSW: "VPOSW", VHPOSW: "VHPOSW", COPCON: "COPCON",
		SERDAT: "SERDAT", SERPER: "SERPER", POTGO: "POTGO", JOYTEST: "JOYTEST",
		STREQU: "STREQU", STRVBL: "STRVBL", STRHOR: "STRHOR", STRLONG: "STRLONG",
		BLTCON0: "BLTCON0", BLTCON1: "BLTCON1", BLTAFWM: "BLTAFWM", BLTALWM: "BLTALWM",
		BLTCPTH: "BLTCPTH", BLTCPTL: "BLTCPTL", BLTBPTH: "BLTBPTH", BLTBPTL: "BLTBPTL",
		BLTAPTH: "BLTAPTH", BLTAPTL: "BLTAPTL", BLTDPTH: "BLTDPTH", BLTDPTL: "BLTDPTL",
		BLTSIZE: "BLTSIZE", BLTCON0L: "BLTCON0L", BLTSIZV: "BLTSIZV", BLTSIZH: "BLTSIZH",
		BLTCMOD: "BLTCMOD", BLTBMOD: "BLTBMOD", BLTAMOD: "BLTAMOD", BLTDMOD: "BLTDMOD",
		BLTCDAT: "BLTCDAT", BLTBDAT: "BLTBDAT", BLTADAT: "BLTADAT",
		0x078: "SPRHDAT", 0x07A: "BPLHDAT", DENISEID: "DENISEID", DSKSYNC: "DSKSYNC",
		COP1LCH: "COP1LCH", COP1LCL: "COP1LCL", COP2LCH: "COP2LCH", COP2LCL: "COP2LCL",
		COPJMP1: "COPJMP1", COPJMP2: "COPJMP2", COPINS: "COPINS",
		DIWSTRT: "DIWSTRT", DIWSTOP: "DIWSTOP", DDFSTRT: "DDFSTRT", DDFSTOP: "DDFSTOP",
		DMACON: "DMACON", CLXCON: "CLXCON", INTENA: "INTENA", INTREQ: "INTREQ", ADKCON: "ADKCON",
		BPLCON0: "BPLCON0", BPLCON1: "BPLCON1", BPLCON2: "BPLCON2", BPLCON3: "BPLCON3",
		BPL1MOD: "BPL1MOD", BPL2MOD: "BPL2MOD",
		HTOTAL: "HTOTAL", 0x1C2: "HSSTOP", 0x1C4: "HBSTRT", 0x1C6: "HBSTOP",
		0x1C8: "VTOTAL", 0x1CA: "VSSTOP", 0x1CC: "VBSTRT", 0x1CE: "VBSTOP",
		0x1D0: "SPRHSTRT", 0x1D2: "SPRHSTOP", 0x1D4: "BPLHSTRT", 0x1D6: "BPLHSTOP",
		0x1D8: "HHPOSW", 0x1DA: "HHPOSR", BEAMCON0: "BEAMCON0", 0x1DE: "HSSTRT",
		0x1E0: "VSSTRT", 0x1E2: "HCENTER", DIWHIGH: "DIWHIGH", NOOP: "NO-OP",
	}
	for a, n := range fixed {
		names[a>>1] = n
	}
	for ch := Address(0); ch < 4; ch++ {
		base := AUD0LCH + ch*0x10
		for i, suffix := range []string{"LCH", "LCL", "LEN", "PER", "VOL", "DAT"} {
			names[(base+Address(i)*2)>>1] = fmt.Sprintf("AUD%d%s", ch, suffix)
		}
	}
	for p := Address(0); p < 8; p++ {
		names[(BPL1PTH+p*4)>>1] = fmt.Sprintf("BPL%dPTH", p+1)
		names[(BPL1PTL+p*4)>>1] = fmt.Sprintf("BPL%dPTL", p+1)
		names[(BPL1DAT+p*2)>>1] = fmt.Sprintf("BPL%dDAT", p+1)
		names[(SPR0PTH+p*4)>>1] = fmt.Sprintf("SPR%dPTH", p)
		names[(SPR0PTL+p*4)>>1] = fmt.Sprintf("SPR%dPTL", p)
		names[(SPR0POS+p*8)>>1] = fmt.Sprintf("SPR%dPOS", p)
		names[(SPR0CTL+p*8)>>1] = fmt.Sprintf("SPR%dCTL", p)
		names[(SPR0DATA+p*8)>>1] = fmt.Sprintf("SPR%dDATA", p)
		names[(SPR0DATB+p*8)>>1] = fmt.Sprintf("SPR%dDATB", p)
	}
	for c := Address(0); c < 32; c++ {
		names[(COLOR00+c*2)>>1] = fmt.Sprintf("COLOR%02d", c)
	}
}

// Name returns the name of the register at a, or its hex offset
// if the register is unnamed.
func Name(a Address) string {
	if a <= Last {
		if n := names[a>>1]; n != "" {
			return n
		}
	}
	return fmt.Sprintf("$%03X", a)
}

// Lookup returns the register called name, ignoring case.
func Lookup(name string) (Address, bool) {
	name = strings.ToUpper(name)
	for i, n := range names {
		if n != "" && n == name {
			return Address(i << 1), true
		}
	}
	return 0, false
}
