package core

// JenkinsHash is Bob Jenkins' 32-bit integer mix, used to turn a frame index
// into a well distributed per-frame seed.
func JenkinsHash(a uint32) uint32 {
	a = (a + 0x7ed55d16) + (a << 12)
	a = (a ^ 0xc761c23c) ^ (a >> 19)
	a = (a + 0x165667b1) + (a << 5)
	a = (a + 0xd3a2646c) ^ (a << 9)
	a = (a + 0xfd7046c5) + (a << 3)
	a = (a ^ 0xb55a4f09) ^ (a >> 16)
	return a
}

// PackPixel packs a pixel coordinate into one seed word
func PackPixel(x, y int) uint64 {
	return uint64(uint32(x)) | uint64(uint32(y))<<32
}
