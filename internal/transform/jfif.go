package transform

// withDensity inserts a JFIF APP0 segment carrying dpi as the pixel density
// right after the SOI marker. image/jpeg writes no APP0, so print tools fall
// back to 72 dpi without it. Data that already has APP0, or is not a JPEG,
// is returned unchanged.
func withDensity(data []byte, dpi int) []byte {
	if dpi <= 0 || len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return data
	}
	if data[2] == 0xFF && data[3] == 0xE0 {
		return data
	}
	if dpi > 0xFFFF {
		dpi = 0xFFFF
	}
	d0, d1 := byte(dpi>>8), byte(dpi)
	app0 := []byte{
		0xFF, 0xE0, // APP0
		0x00, 0x10, // segment length
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x01, // version 1.1
		0x01,   // density in dots per inch
		d0, d1, // X density
		d0, d1, // Y density
		0x00, 0x00, // no thumbnail
	}
	out := make([]byte, 0, len(data)+len(app0))
	out = append(out, data[:2]...)
	out = append(out, app0...)
	return append(out, data[2:]...)
}
