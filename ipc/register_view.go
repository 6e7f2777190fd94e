package ipc

// View7 and View9 each expose one core's register window onto a shared
// Block, since the two cores see asymmetric registers (IPCSYNC/IPCFIFOCNT/
// IPCFIFOSEND/IPCFIFORECV) at the same relative offsets but acting on
// opposite FIFO directions. Layout (base-relative, this implementation's
// own convention): 0-1 IPCSYNC, 2-3 IPCFIFOCNT, 4-7 IPCFIFOSEND (write),
// 8-11 IPCFIFORECV (read, pops on completing a 4-byte read).
type View7 struct {
	b *Block

	recvWord  uint32
	recvValid bool
	recvByte  int

	sendWord uint32
	sendByte int
}

func NewView7(b *Block) *View7 { return &View7{b: b} }

func (v *View7) ReadByte(addr uint32) (byte, bool) {
	switch addr {
	case 0:
		return v.b.ReadSync7(), true
	case 1:
		return 0, true
	case 2:
		return fifoCntLow(v.b.Empty7(), v.b.Full7(), v.b.Error7()), true
	case 3:
		return fifoCntHigh(v.b.to7.irqSend, v.b.to7.irqRecv), true
	case 8, 9, 10, 11:
		if addr == 8 {
			w, ok := v.b.Receive7()
			v.recvWord, v.recvValid = w, ok
		}
		if !v.recvValid {
			return 0xFF, true
		}
		return byte(v.recvWord >> (8 * (addr - 8))), true
	default:
		return 0, false
	}
}

func (v *View7) WriteByte(addr uint32, b byte) bool {
	switch addr {
	case 0:
		v.b.WriteSync7(b)
		return true
	case 1:
		return true
	case 2:
		return true // fifo enable bit not separately modelled; Send/Receive always available
	case 3:
		v.b.to7.irqSend = b&(1<<0) != 0
		v.b.to7.irqRecv = b&(1<<1) != 0
		if b&(1<<7) != 0 {
			v.b.Clear7()
		}
		return true
	case 4, 5, 6, 7:
		shift := 8 * (addr - 4)
		v.sendWord = (v.sendWord &^ (0xFF << shift)) | uint32(b)<<shift
		if addr == 7 {
			v.b.Send7(v.sendWord)
		}
		return true
	default:
		return false
	}
}

// View9 mirrors View7 from the ARM9 side.
type View9 struct {
	b *Block

	recvWord  uint32
	recvValid bool

	sendWord uint32
}

func NewView9(b *Block) *View9 { return &View9{b: b} }

func (v *View9) ReadByte(addr uint32) (byte, bool) {
	switch addr {
	case 0:
		return v.b.ReadSync9(), true
	case 1:
		return 0, true
	case 2:
		return fifoCntLow(v.b.Empty9(), v.b.Full9(), v.b.Error9()), true
	case 3:
		return fifoCntHigh(v.b.to9.irqSend, v.b.to9.irqRecv), true
	case 8, 9, 10, 11:
		if addr == 8 {
			w, ok := v.b.Receive9()
			v.recvWord, v.recvValid = w, ok
		}
		if !v.recvValid {
			return 0xFF, true
		}
		return byte(v.recvWord >> (8 * (addr - 8))), true
	default:
		return 0, false
	}
}

func (v *View9) WriteByte(addr uint32, b byte) bool {
	switch addr {
	case 0:
		v.b.WriteSync9(b)
		return true
	case 1:
		return true
	case 2:
		return true
	case 3:
		v.b.to9.irqSend = b&(1<<0) != 0
		v.b.to9.irqRecv = b&(1<<1) != 0
		if b&(1<<7) != 0 {
			v.b.Clear9()
		}
		return true
	case 4, 5, 6, 7:
		shift := 8 * (addr - 4)
		v.sendWord = (v.sendWord &^ (0xFF << shift)) | uint32(b)<<shift
		if addr == 7 {
			v.b.Send9(v.sendWord)
		}
		return true
	default:
		return false
	}
}

func fifoCntLow(empty, full, err bool) byte {
	var v byte
	if empty {
		v |= 1 << 0
	}
	if full {
		v |= 1 << 1
	}
	if err {
		v |= 1 << 6
	}
	return v
}

func fifoCntHigh(irqSend, irqRecv bool) byte {
	var v byte
	if irqSend {
		v |= 1 << 0
	}
	if irqRecv {
		v |= 1 << 1
	}
	return v
}
