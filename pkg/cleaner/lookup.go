// pkg/cleaner/lookup.go
package cleaner

import "sync"

// ZipLookup remembers the ZIP code synthesized for a guid so that every
// cleaning pass repairs the same guid with the same code.
type ZipLookup struct {
	mu   sync.RWMutex
	zips map[string]string
}

// NewZipLookup creates an empty lookup
func NewZipLookup() *ZipLookup {
	return &ZipLookup{zips: make(map[string]string)}
}

// Get returns the synthesized ZIP for guid, if any
func (l *ZipLookup) Get(guid string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	zip, ok := l.zips[guid]
	return zip, ok
}

// Set records the synthesized ZIP for guid. An existing entry wins.
func (l *ZipLookup) Set(guid, zip string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.zips[guid]; ok {
		return existing
	}
	l.zips[guid] = zip
	return zip
}

// Resolve returns the ZIP stored for guid, generating and storing one with
// generate when there is none yet. reused reports whether an entry existed.
func (l *ZipLookup) Resolve(guid string, generate func() string) (zip string, reused bool) {
	if zip, ok := l.Get(guid); ok {
		return zip, true
	}
	return l.Set(guid, generate()), false
}

// Len returns the number of guids with a synthesized ZIP
func (l *ZipLookup) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.zips)
}

// Snapshot returns a copy of the lookup contents
func (l *ZipLookup) Snapshot() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]string, len(l.zips))
	for guid, zip := range l.zips {
		out[guid] = zip
	}
	return out
}
