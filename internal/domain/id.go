package domain

import "strconv"

// ID identifies a persisted record. The zero value is an unsaved identity;
// only storage adapters mint persisted ones through PersistedID.
type ID struct {
	value     int64
	persisted bool
}

// PersistedID returns the identity assigned by storage on insert.
func PersistedID(v int64) ID {
	return ID{value: v, persisted: true}
}

// Value returns the numeric identity and whether the record has been persisted.
func (id ID) Value() (int64, bool) {
	return id.value, id.persisted
}

// IsPersisted reports whether storage has assigned this identity.
func (id ID) IsPersisted() bool {
	return id.persisted
}

// Int64 returns the numeric identity, or -1 for an unsaved record.
func (id ID) Int64() int64 {
	if !id.persisted {
		return -1
	}
	return id.value
}

func (id ID) String() string {
	if !id.persisted {
		return "unsaved"
	}
	return strconv.FormatInt(id.value, 10)
}
