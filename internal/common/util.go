package common

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used to remove secrets such as passwords from memory after use.
// A nil slice is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
