package input

// KeyBitmapSize is the byte length of a bitmap covering every key code up to
// KeyMax. It matches the buffer the kernel fills for EVIOCGKEY/EVIOCGBIT(EV_KEY).
const KeyBitmapSize = int(KeyMax)/8 + 1

// KeyBitmap records which keys are held, one bit per key code.
type KeyBitmap [KeyBitmapSize]uint8

// Pressed reports whether the key is held.
func (b *KeyBitmap) Pressed(c Code) bool {
	if c > KeyMax {
		return false
	}
	return b[c/8]&(1<<(c%8)) != 0
}

// Set marks the key held or released.
func (b *KeyBitmap) Set(c Code, held bool) {
	if c > KeyMax {
		return
	}
	if held {
		b[c/8] |= 1 << (c % 8)
	} else {
		b[c/8] &^= 1 << (c % 8)
	}
}

// Apply updates the bitmap from a raw event. Non-key events are ignored;
// repeats keep the key held.
func (b *KeyBitmap) Apply(e Event) {
	if e.Type != EvKey {
		return
	}
	b.Set(e.Code, e.Transition() != Up)
}

// Held returns the codes of all held keys in ascending order.
func (b *KeyBitmap) Held() []Code {
	var keys []Code
	for i := 0; i <= int(KeyMax); i++ {
		if b[i/8]&(1<<uint(i%8)) != 0 {
			keys = append(keys, Code(i))
		}
	}
	return keys
}

// Reset releases every key.
func (b *KeyBitmap) Reset() {
	for i := range b {
		b[i] = 0
	}
}
