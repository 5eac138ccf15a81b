//go:build !unix

package fsview

import "os"

// mappedFile falls back to a plain read on platforms without POSIX mmap.
// The >1MiB threshold still selects this path; it just isn't a real map.
type mappedFile struct {
	data []byte
}

func mmapFile(path string) (mappedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mappedFile{}, err
	}
	return mappedFile{data: data}, nil
}

func (m mappedFile) Bytes() []byte {
	return m.data
}

func (m mappedFile) Close() error {
	return nil
}
