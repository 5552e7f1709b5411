package util

import (
	"container/list"
	"sync"

	"gorm.io/gorm"
)

// LRU cache for medical record number -> patient ID.
// MRNs never change once assigned, so entries never go stale; a deleted
// patient is the only case callers must handle with Remove.
type patientEntry struct {
	mrn string
	id  uint
}

type PatientIDCache struct {
	mu       sync.Mutex
	ll       *list.List
	cache    map[string]*list.Element
	capacity int
}

// NewPatientIDCache returns an LRU cache with the given capacity.
// If capacity <= 0, a default of 1000 is used.
func NewPatientIDCache(capacity int) *PatientIDCache {
	if capacity <= 0 {
		capacity = 1000
	}
	return &PatientIDCache{
		ll:       list.New(),
		cache:    make(map[string]*list.Element),
		capacity: capacity,
	}
}

// Get returns the patient ID and true if present in cache.
func (c *PatientIDCache) Get(mrn string) (uint, bool) {
	if c == nil {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.cache[mrn]; ok {
		c.ll.MoveToFront(ele)
		if e, ok := ele.Value.(patientEntry); ok {
			return e.id, true
		}
	}
	return 0, false
}

// Set stores the patient ID for mrn.
func (c *PatientIDCache) Set(mrn string, id uint) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.cache[mrn]; ok {
		c.ll.MoveToFront(ele)
		ele.Value = patientEntry{mrn: mrn, id: id}
		return
	}
	ele := c.ll.PushFront(patientEntry{mrn: mrn, id: id})
	c.cache[mrn] = ele
	if c.ll.Len() > c.capacity {
		// evict least recently used
		tail := c.ll.Back()
		if tail != nil {
			if e, ok := tail.Value.(patientEntry); ok {
				delete(c.cache, e.mrn)
			}
			c.ll.Remove(tail)
		}
	}
}

func (c *PatientIDCache) Remove(mrn string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.cache[mrn]; ok {
		c.ll.Remove(ele)
		delete(c.cache, mrn)
	}
}

func (c *PatientIDCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// LookupPatientID returns the ID of the live patient holding mrn, using the
// cache and falling back to the DB. Returns 0 when no such patient exists.
func (c *PatientIDCache) LookupPatientID(db *gorm.DB, mrn string) (uint, error) {
	if mrn == "" {
		return 0, nil
	}
	if id, ok := c.Get(mrn); ok {
		return id, nil
	}
	if db == nil {
		return 0, nil
	}
	var ids []uint
	err := db.Table("patients").
		Where("medical_record_number = ? AND deleted_at IS NULL", mrn).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	c.Set(mrn, ids[0])
	return ids[0], nil
}
