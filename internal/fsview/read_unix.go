//go:build unix

package fsview

import (
	"os"

	"golang.org/x/sys/unix"
)

// mappedFile is a read-only POSIX mmap handle, used on unix platforms.
type mappedFile struct {
	data []byte
}

func mmapFile(path string) (mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return mappedFile{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return mappedFile{}, err
	}
	size := info.Size()
	if size == 0 {
		return mappedFile{data: []byte{}}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return mappedFile{}, err
	}
	return mappedFile{data: data}, nil
}

func (m mappedFile) Bytes() []byte {
	return m.data
}

func (m mappedFile) Close() error {
	if len(m.data) == 0 {
		return nil
	}
	return unix.Munmap(m.data)
}
