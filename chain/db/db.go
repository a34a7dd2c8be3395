package db

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type IStore interface {
	Put(key []byte, value []byte) error
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Delete(key []byte) error
	Write(batch *leveldb.Batch) error
	NewIterator(prefix []byte) iterator.Iterator
	Close() error
}

type LevelDBStore struct {
	db *leveldb.DB // LevelDB instance
}

const (
	// used to compute the size of bloom filter bits array, too small will lead to
	// high false positive rate.
	BITSPERKEY = 10
)

// NewMemLevelDBStore opens a leveldb instance backed by memory only. Nothing
// survives Close.
func NewMemLevelDBStore() (*LevelDBStore, error) {
	opts := &opt.Options{
		Filter: filter.NewBloomFilter(BITSPERKEY),
	}

	db, err := leveldb.Open(storage.NewMemStorage(), opts)
	if err != nil {
		return nil, err
	}

	return &LevelDBStore{db: db}, nil
}

func (self *LevelDBStore) Put(key []byte, value []byte) error {
	return self.db.Put(key, value, nil)
}

func (self *LevelDBStore) Get(key []byte) ([]byte, error) {
	return self.db.Get(key, nil)
}

func (self *LevelDBStore) Has(key []byte) (bool, error) {
	return self.db.Has(key, nil)
}

func (self *LevelDBStore) Delete(key []byte) error {
	return self.db.Delete(key, nil)
}

// Write applies the batch atomically.
func (self *LevelDBStore) Write(batch *leveldb.Batch) error {
	return self.db.Write(batch, nil)
}

func (self *LevelDBStore) NewIterator(prefix []byte) iterator.Iterator {
	return self.db.NewIterator(util.BytesPrefix(prefix), nil)
}

func (self *LevelDBStore) Close() error {
	return self.db.Close()
}
