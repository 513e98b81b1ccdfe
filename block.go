package ustar

// BlocksFor returns the number of blocks occupied by a payload of size bytes.
func BlocksFor(size int64) int64 {
	return (size + blockSize - 1) / blockSize
}

// NextHeaderOffset returns the offset of the header following the one found
// at offset, whose payload is size bytes long.
func NextHeaderOffset(offset, size int64) int64 {
	return offset + headerSize + BlocksFor(size)*blockSize
}
