package video2d

// Registers decodes one engine's I/O register window (DISPCNT, the four
// BGxCNT/scroll/affine blocks, the window and blend controls, and master
// brightness) directly into the Engine fields RenderScanline reads, the
// same "CPU-visible register in, decoded state out" shape dma/timer/ipc
// use for their own windows. Layout below is this implementation's own
// convention:
//
//	0x00-0x01 DISPCNT low, 0x02-0x03 DISPCNT high
//	0x08-0x0F BG0CNT..BG3CNT (2 bytes each)
//	0x10-0x1F BG0HOFS/VOFS..BG3HOFS/VOFS (2+2 bytes each)
//	0x20-0x27 BG2 affine: PA,PB,PC,PD (2 bytes each)
//	0x28-0x2F BG2 X,Y (4 bytes each)
//	0x30-0x3F BG3 affine PA..PD, X, Y (same shape as BG2)
//	0x40-0x47 WIN0H, WIN1H, WIN0V, WIN1V (2 bytes each)
//	0x48-0x4B WININ, WINOUT
//	0x50-0x53 BLDCNT, BLDALPHA
//	0x54-0x55 BLDY
//	0x6C-0x6D MASTER_BRIGHT
type Registers struct {
	e *Engine

	dispcnt uint32
}

func NewRegisters(e *Engine) *Registers { return &Registers{e: e} }

const (
	offDISPCNT    = 0x00
	offBG0CNT     = 0x08
	offBG0HOFS    = 0x10
	offBG2PA      = 0x20
	offBG2X       = 0x28
	offBG2Y       = 0x2C
	offBG3PA      = 0x30
	offBG3X       = 0x38
	offBG3Y       = 0x3C
	offWIN0H      = 0x40
	offWIN1H      = 0x42
	offWIN0V      = 0x44
	offWIN1V      = 0x46
	offWININ      = 0x48
	offWINOUT     = 0x4A
	offBLDCNT     = 0x50
	offBLDALPHA   = 0x52
	offBLDY       = 0x54
	offMasterBright = 0x6C

	// WindowSize is the base-relative span System registers this handler
	// over.
	WindowSize = 0x70
)

func byteOfU32(v uint32, i int) byte   { return byte(v >> (8 * uint(i))) }
func byteOfU16(v uint16, i int) byte   { return byte(v >> (8 * uint(i))) }

func (r *Registers) ReadByte(addr uint32) (byte, bool) {
	switch {
	case addr >= offDISPCNT && addr < offDISPCNT+4:
		return byteOfU32(r.dispcnt, int(addr-offDISPCNT)), true
	case addr >= offBG0CNT && addr < offBG0CNT+8:
		n := int(addr-offBG0CNT) / 2
		return byteOfU16(r.e.BG[n].rawCNT(), int(addr-offBG0CNT)%2), true
	case addr >= offBLDCNT && addr < offBLDCNT+2:
		return byteOfU16(r.e.Blend.rawCNT(), int(addr-offBLDCNT)), true
	default:
		return 0, false
	}
}

func (r *Registers) WriteByte(addr uint32, v byte) bool {
	switch {
	case addr >= offDISPCNT && addr < offDISPCNT+4:
		shift := 8 * uint(addr-offDISPCNT)
		r.dispcnt = (r.dispcnt &^ (0xFF << shift)) | uint32(v)<<shift
		r.applyDISPCNT()
		return true

	case addr >= offBG0CNT && addr < offBG0CNT+8:
		n := int(addr-offBG0CNT) / 2
		byteIdx := int(addr-offBG0CNT) % 2
		r.e.BG[n].writeCNTByte(byteIdx, v)
		return true

	case addr >= offBG0HOFS && addr < offBG2PA:
		rel := int(addr - offBG0HOFS)
		n := rel / 4
		field := rel % 4
		switch field {
		case 0:
			r.e.BG[n].HOfs = (r.e.BG[n].HOfs &^ 0xFF) | int(v)
		case 1:
			r.e.BG[n].HOfs = (r.e.BG[n].HOfs &^ 0xFF00) | int(v)<<8
		case 2:
			r.e.BG[n].VOfs = (r.e.BG[n].VOfs &^ 0xFF) | int(v)
		case 3:
			r.e.BG[n].VOfs = (r.e.BG[n].VOfs &^ 0xFF00) | int(v)<<8
		}
		return true

	case addr >= offBG2PA && addr < offBG2X:
		return writeAffineParam(&r.e.BG[2], int(addr-offBG2PA), v)
	case addr >= offBG2X && addr < offBG2Y:
		writeRefByte(&r.e.BG[2].RefX, int(addr-offBG2X), v)
		r.e.BG[2].LatchReferencePoint()
		return true
	case addr >= offBG2Y && addr < offBG3PA:
		writeRefByte(&r.e.BG[2].RefY, int(addr-offBG2Y), v)
		r.e.BG[2].LatchReferencePoint()
		return true

	case addr >= offBG3PA && addr < offBG3X:
		return writeAffineParam(&r.e.BG[3], int(addr-offBG3PA), v)
	case addr >= offBG3X && addr < offBG3Y:
		writeRefByte(&r.e.BG[3].RefX, int(addr-offBG3X), v)
		r.e.BG[3].LatchReferencePoint()
		return true
	case addr >= offBG3Y && addr < offWIN0H:
		writeRefByte(&r.e.BG[3].RefY, int(addr-offBG3Y), v)
		r.e.BG[3].LatchReferencePoint()
		return true

	case addr >= offWIN0H && addr < offWIN0H+2:
		writeWindowH(&r.e.Windows.W0, int(addr-offWIN0H), v)
		return true
	case addr >= offWIN1H && addr < offWIN1H+2:
		writeWindowH(&r.e.Windows.W1, int(addr-offWIN1H), v)
		return true
	case addr >= offWIN0V && addr < offWIN0V+2:
		writeWindowV(&r.e.Windows.W0, int(addr-offWIN0V), v)
		return true
	case addr >= offWIN1V && addr < offWIN1V+2:
		writeWindowV(&r.e.Windows.W1, int(addr-offWIN1V), v)
		return true
	case addr == offWININ:
		writeWinMask(&r.e.Windows.W0, v, true)
		r.e.Windows.AnyActive = true
		return true
	case addr == offWININ+1:
		writeWinMask(&r.e.Windows.W1, v, true)
		r.e.Windows.AnyActive = true
		return true
	case addr == offWINOUT:
		writeWinMask(&r.e.Windows.Outside, v, true)
		return true
	case addr == offWINOUT+1:
		writeWinMask(&r.e.Windows.ObjWindow, v, true)
		r.e.Windows.ObjWindow.Enabled = true
		r.e.Windows.AnyActive = true
		return true

	case addr >= offBLDCNT && addr < offBLDCNT+2:
		r.e.Blend.writeCNTByte(int(addr-offBLDCNT), v)
		return true
	case addr >= offBLDALPHA && addr < offBLDALPHA+2:
		switch addr - offBLDALPHA {
		case 0:
			r.e.Blend.EVA = v & 0x1F
		case 1:
			r.e.Blend.EVB = v & 0x1F
		}
		return true
	case addr >= offBLDY && addr < offBLDY+2:
		if addr == offBLDY {
			r.e.Blend.EVY = v & 0x1F
		}
		return true

	case addr >= offMasterBright && addr < offMasterBright+2:
		switch addr - offMasterBright {
		case 0:
			r.e.Bright.Factor = v & 0x1F
		case 1:
			mode := v & 0x3
			switch mode {
			case 1:
				r.e.Bright.Mode = BlendBrighten
			case 2:
				r.e.Bright.Mode = BlendDarken
			default:
				r.e.Bright.Mode = BlendNone
			}
		}
		return true

	default:
		return false
	}
}

// applyDISPCNT decodes the composed 32-bit DISPCNT into the Engine's
// mode/enable fields.
func (r *Registers) applyDISPCNT() {
	v := r.dispcnt
	r.e.Mode = BGMode(v & 0x7)
	r.e.ScreenBase = int((v >> 27) & 0x7)
	for n := 0; n < 4; n++ {
		r.e.BGEnable[n] = v&(1<<(8+uint(n))) != 0
	}
	r.e.ObjEnable = v&(1<<12) != 0
}

func writeRefByte(ref *int32, byteIdx int, v byte) {
	shift := uint(byteIdx) * 8
	*ref = (*ref &^ (0xFF << shift)) | int32(v)<<shift
	// sign-extend the 28-bit reference point once its top byte lands.
	if byteIdx == 3 {
		*ref = (*ref << 4) >> 4
	}
}

func writeAffineParam(bg *BGControl, rel int, v byte) bool {
	field, byteIdx := rel/2, rel%2
	var target *int16
	switch field {
	case 0:
		target = &bg.DX
	case 1:
		target = &bg.DMX
	case 2:
		target = &bg.DY
	case 3:
		target = &bg.DMY
	default:
		return false
	}
	shift := uint(byteIdx) * 8
	*target = (*target &^ int16(0xFF<<shift)) | int16(v)<<shift
	return true
}

func writeWindowH(w *Window, byteIdx int, v byte) {
	if byteIdx == 0 {
		w.X1 = int(v)
	} else {
		w.X0 = int(v)
	}
	w.Enabled = true
}

func writeWindowV(w *Window, byteIdx int, v byte) {
	if byteIdx == 0 {
		w.Y1 = int(v)
	} else {
		w.Y0 = int(v)
	}
	w.Enabled = true
}

func writeWinMask(w *Window, v byte, effectByte bool) {
	for n := 0; n < 4; n++ {
		w.LayerEnable[LayerID(n)] = v&(1<<uint(n)) != 0
	}
	w.LayerEnable[LayerOBJ] = v&(1<<4) != 0
	w.EffectEnable = v&(1<<5) != 0
}

// rawCNT/writeCNTByte give BGControl a byte-addressable view of its own
// BGxCNT fields, for Registers to expose without BGControl needing to know
// about bus addressing itself.
func (b *BGControl) rawCNT() uint16 {
	var v uint16
	v |= uint16(b.Priority) & 0x3
	v |= uint16(b.CharBaseBlock&0xF) << 2
	if b.Mosaic {
		v |= 1 << 6
	}
	if b.Palette256 {
		v |= 1 << 7
	}
	v |= uint16(b.ScreenBaseBlock&0x1F) << 8
	if b.AffineWrap {
		v |= 1 << 13
	}
	v |= uint16(b.ScreenSize&0x3) << 14
	return v
}

func (b *BGControl) writeCNTByte(byteIdx int, v byte) {
	cur := b.rawCNT()
	shift := uint(byteIdx) * 8
	cur = (cur &^ (0xFF << shift)) | uint16(v)<<shift
	b.Priority = int(cur & 0x3)
	b.CharBaseBlock = int((cur >> 2) & 0xF)
	b.Mosaic = cur&(1<<6) != 0
	b.Palette256 = cur&(1<<7) != 0
	b.ScreenBaseBlock = int((cur >> 8) & 0x1F)
	b.AffineWrap = cur&(1<<13) != 0
	b.ScreenSize = int((cur >> 14) & 0x3)
}

func (bl *BlendControl) rawCNT() uint16 {
	var v uint16
	for n := 0; n < int(layerCount); n++ {
		if bl.Top[n] {
			v |= 1 << uint(n)
		}
		if bl.Bottom[n] {
			v |= 1 << uint(n+8)
		}
	}
	v |= uint16(bl.Mode) << 6
	return v
}

func (bl *BlendControl) writeCNTByte(byteIdx int, v byte) {
	cur := bl.rawCNT()
	shift := uint(byteIdx) * 8
	cur = (cur &^ (0xFF << shift)) | uint16(v)<<shift
	for n := 0; n < int(layerCount); n++ {
		bl.Top[n] =cur&(1<<uint(n)) != 0
		bl.Bottom[n] = cur&(1<<uint(n+8)) != 0
	}
	bl.Mode = BlendMode((cur >> 6) & 0x3)
}
