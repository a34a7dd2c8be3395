package db

import (
	"errors"
	"fmt"

	"github.com/nknorg/powledger/block"
	"github.com/syndtr/goleveldb/leveldb"
)

var ErrBlockNotFound = errors.New("block not found")

// ChainStore keeps the blocks of one chain keyed by their position, starting
// at 1. It does no locking of its own; the owner serializes access.
type ChainStore struct {
	st IStore

	currentHeight uint64
}

func NewChainStore() (*ChainStore, error) {
	st, err := NewMemLevelDBStore()
	if err != nil {
		return nil, err
	}

	return &ChainStore{st: st}, nil
}

func (cs *ChainStore) Close() error {
	return cs.st.Close()
}

// Height returns the number of stored blocks.
func (cs *ChainStore) Height() uint64 {
	return cs.currentHeight
}

// GetBlock returns the block at position height (1 based).
func (cs *ChainStore) GetBlock(height uint64) (*block.Block, error) {
	if height == 0 || height > cs.currentHeight {
		return nil, ErrBlockNotFound
	}

	buf, err := cs.st.Get(BlockKey(height))
	if err == leveldb.ErrNotFound {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}

	b := &block.Block{}
	if err := b.Unmarshal(buf); err != nil {
		return nil, fmt.Errorf("decode block %d: %w", height, err)
	}
	return b, nil
}

// Blocks returns every stored block in chain order.
func (cs *ChainStore) Blocks() ([]*block.Block, error) {
	blocks := make([]*block.Block, 0, cs.currentHeight)

	iter := cs.st.NewIterator([]byte{byte(DATA_Block)})
	defer iter.Release()
	for iter.Next() {
		b := &block.Block{}
		if err := b.Unmarshal(iter.Value()); err != nil {
			return nil, fmt.Errorf("decode block: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	if uint64(len(blocks)) != cs.currentHeight {
		return nil, fmt.Errorf("store has %d blocks, expected %d", len(blocks), cs.currentHeight)
	}
	return blocks, nil
}

// Append stores b after the current last block.
func (cs *ChainStore) Append(b *block.Block) error {
	buf, err := b.Marshal()
	if err != nil {
		return err
	}

	height := cs.currentHeight + 1
	batch := new(leveldb.Batch)
	batch.Put(BlockKey(height), buf)
	batch.Put(CurrentHeightKey(), encodeHeight(height))
	if err := cs.st.Write(batch); err != nil {
		return err
	}

	cs.currentHeight = height
	return nil
}

// Replace swaps the whole stored chain for blocks in a single batch, so the
// store never holds a mix of the two.
func (cs *ChainStore) Replace(blocks []*block.Block) error {
	batch := new(leveldb.Batch)
	for i, b := range blocks {
		buf, err := b.Marshal()
		if err != nil {
			return err
		}
		batch.Put(BlockKey(uint64(i+1)), buf)
	}
	for h := uint64(len(blocks)) + 1; h <= cs.currentHeight; h++ {
		batch.Delete(BlockKey(h))
	}
	batch.Put(CurrentHeightKey(), encodeHeight(uint64(len(blocks))))

	if err := cs.st.Write(batch); err != nil {
		return err
	}

	cs.currentHeight = uint64(len(blocks))
	return nil
}

// persistedHeight reads the height record back from the store.
func (cs *ChainStore) persistedHeight() (uint64, error) {
	buf, err := cs.st.Get(CurrentHeightKey())
	if err == leveldb.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeHeight(buf), nil
}
