package internal

// Memory is the flat 4 KB address space of the VM.
type Memory struct {
	data [TotalMemory]uint8
}

// Read returns the byte stored at address.
func (m *Memory) Read(address uint16) (uint8, error) {
	if int(address) >= len(m.data) {
		return 0, &BoundsError{Op: "read", Address: address}
	}
	return m.data[address], nil
}

// Write stores value at address.
func (m *Memory) Write(address uint16, value uint8) error {
	if int(address) >= len(m.data) {
		return &BoundsError{Op: "write", Address: address}
	}
	m.data[address] = value
	return nil
}

// Load copies data into memory starting at address.
func (m *Memory) Load(address uint16, data []byte) error {
	end := int(address) + len(data)
	if end > len(m.data) {
		return &BoundsError{Op: "write", Address: uint16(end - 1)}
	}
	copy(m.data[address:], data)
	return nil
}

// Clear zeroes the whole address space.
func (m *Memory) Clear() {
	m.data = [TotalMemory]uint8{}
}
