package internal

// Display is the 64 px x 32 px monochrome frame buffer. Pixel (x, y) lives at
// index y*ScreenWidth + x and is always 0 or 1.
type Display struct {
	pixels [DisplaySize]uint8
}

// DrawRow XORs one 8 pixel sprite row onto the buffer with its leftmost pixel
// at (x, y), most significant bit first. Columns wrap around the right edge,
// rows below the bottom edge are clipped. It reports whether any lit pixel
// was turned off.
func (d *Display) DrawRow(row uint8, x, y uint8) bool {
	if int(y) >= ScreenHeight {
		return false
	}
	collision := false
	base := int(y) * ScreenWidth
	for bitIdx := 0; bitIdx < 8; bitIdx++ {
		bit := (row >> (7 - bitIdx)) & 0x1
		if bit == 0 {
			continue
		}
		px := &d.pixels[base+(int(x)+bitIdx)%ScreenWidth]
		if *px == 1 {
			collision = true
		}
		*px ^= bit
	}
	return collision
}

// Clear resets all pixels to a value of 0.
func (d *Display) Clear() {
	d.pixels = [DisplaySize]uint8{}
}

// Snapshot returns a copy of the pixel buffer.
func (d *Display) Snapshot() [DisplaySize]uint8 {
	return d.pixels
}

// Pixel returns the value of the pixel at (x, y).
func (d *Display) Pixel(x, y int) uint8 {
	return d.pixels[y*ScreenWidth+x]
}
