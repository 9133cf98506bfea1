// Package address abstracts the document address bar and history stack
// behind a small port interface, so the synchronization engine can run
// without a real browsing context and so one owner can coordinate access
// to what is otherwise tab-wide mutable state.
package address

// Port is the address-bar collaborator the synchronizer writes through.
//
// Implementations are expected to treat the address as a single current
// value plus a history stack. The synchronizer only ever reads the
// current value and appends or replaces entries; it never walks history
// itself.
type Port interface {
	// Read returns the current address.
	Read() string

	// Push makes addr current and appends a new history entry.
	Push(addr string)

	// Replace makes addr current without creating a history entry.
	Replace(addr string)
}
