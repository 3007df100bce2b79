package repositories

// SlotStore is a key-value store of whole documents. Every Save replaces
// the previous contents of the slot; there are no partial updates.
type SlotStore interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}
