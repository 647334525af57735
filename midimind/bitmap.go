package midimind

// NoteBitmap sets bit n%8 of byte n/8 for every note n. Notes above 127 are ignored
func NoteBitmap(notes []uint8) [16]byte {
	var bitmap [16]byte
	for _, n := range notes {
		if n > 127 {
			continue
		}
		bitmap[n/8] |= 1 << (n % 8)
	}
	return bitmap
}

// BitmapNotes lists the notes set in a bitmap in ascending order
func BitmapNotes(bitmap [16]byte) []uint8 {
	var notes []uint8
	for n := range 128 {
		if bitmap[n/8]&(1<<(n%8)) != 0 {
			notes = append(notes, uint8(n))
		}
	}
	return notes
}

// Encode7BitBitmap makes the 128-bit bitmap safe for a SysEx payload. Bytes 0-15 hold the low 7 bits of
// each source byte and the high bits are packed seven per byte into bytes 16-18.
func Encode7BitBitmap(bitmap [16]byte) [19]byte {
	var out [19]byte
	for i, b := range bitmap {
		out[i] = b & 0x7F
		if b&0x80 != 0 {
			out[16+i/7] |= 1 << (i % 7)
		}
	}
	return out
}

// Decode7BitBitmap reverses Encode7BitBitmap
func Decode7BitBitmap(encoded [19]byte) [16]byte {
	var out [16]byte
	for i := range out {
		out[i] = encoded[i] & 0x7F
		if encoded[16+i/7]&(1<<(i%7)) != 0 {
			out[i] |= 0x80
		}
	}
	return out
}
