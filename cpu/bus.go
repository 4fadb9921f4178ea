package cpu

// Bus is the capability a CPU requires of its host. It is the only way
// the interpreter touches the outside world: memory, I/O ports, and the
// per-cycle clock. A host's default implementation is the bus package's
// SystemBus, but any type satisfying this interface works.
type Bus interface {
	MemRead(addr uint16) byte
	MemWrite(addr uint16, value byte)

	// IOIn and IOOut receive the low and high bytes of the port address
	// exactly as the instruction forms them: distinct on the Z80
	// ((C) addressing uses BC, (n) addressing pairs A with n), identical
	// on the 8080 (IN/OUT n always place n on both halves).
	IOIn(portLow, portHigh byte) byte
	IOOut(portLow, portHigh, value byte)
}

// M1Hook lets a bus observe opcode fetches (front-panel address latching,
// breakpoints). Optional: a Bus that doesn't implement it is fine.
type M1Hook interface {
	OnM1(pc uint16)
}

// DMAAckHook lets a bus observe DMA bus-grant acknowledgement.
type DMAAckHook interface {
	OnDMAAck()
}

// HaltHook lets a bus observe HALT entry; its presence is also what spec.md
// §4.1.5 calls "a front-panel collaborator attached" — when present, DI;HALT
// idles rather than stopping the machine with ErrOpHalt.
type HaltHook interface {
	OnHalt()
}

// DMAHandler services a bus-request grant and reports T-states consumed.
type DMAHandler interface {
	ServiceDMA() int
}
