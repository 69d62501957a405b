package soc

// Stats holds statistics for the whole SoC.
type Stats struct {
	// Cycles is the total number of clock edges simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64

	FetchStalls uint64
	BusStalls   uint64
	Traps       uint64
	Returns     uint64
	Illegal     uint64

	MEPCCaptures       uint64
	MEPCSoftwareWrites uint64
	MEPCCollisions     uint64

	CPUWrites    uint64
	DMAWrites    uint64
	MaskedWrites uint64
	Handoffs     uint64

	DMATransfers uint64
	DMAWords     uint64
	DMARejected  uint64

	UARTFrames    uint64
	UARTDropped   uint64
	UARTBytes     uint64
	FramingErrors uint64

	TimerInterrupts uint64

	FetchHits   uint64
	FetchMisses uint64
}

// CPI returns cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}
