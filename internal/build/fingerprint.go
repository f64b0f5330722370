package build

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"sync"
)

// Fingerprinter computes content hashes of source trees so watch mode can
// skip rebuilds when an event did not change any bytes. Editors commonly emit
// several writes per save.
type Fingerprinter struct {
	crcTable *crc32.Table
	last     map[string]uint32
	mutex    sync.Mutex
}

// NewFingerprinter creates an empty fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{
		crcTable: crc32.MakeTable(crc32.Castagnoli),
		last:     make(map[string]uint32),
	}
}

// Sum hashes the names and contents of the files under root matching
// pattern. Unreadable files contribute only their name.
func (f *Fingerprinter) Sum(root, pattern string) (uint32, error) {
	files, err := matchFiles(root, pattern)
	if err != nil {
		return 0, err
	}

	sum := crc32.New(f.crcTable)
	var size [8]byte
	for _, file := range files {
		sum.Write([]byte(file))
		content, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		binary.LittleEndian.PutUint64(size[:], uint64(len(content)))
		sum.Write(size[:])
		sum.Write(content)
	}
	return sum.Sum32(), nil
}

// Changed reports whether the tree under root differs from the last time
// Changed was called for the same key. The first call always reports true.
func (f *Fingerprinter) Changed(key, root, pattern string) (bool, error) {
	sum, err := f.Sum(root, pattern)
	if err != nil {
		return true, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()
	prev, seen := f.last[key]
	f.last[key] = sum
	return !seen || prev != sum, nil
}
