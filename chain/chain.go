// Package chain implements the append-only, hash-linked audit record of a
// backtest run. A chain built solely through Append validates; any later
// edit to a stored block is detected by IsValid.
package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenesisHash is the previous-hash sentinel carried by block 0.
var GenesisHash = strings.Repeat("0", 64)

// genesisPayload is the fixed payload of the block written at creation.
var genesisPayload = []byte("genesis")

// Block is one link in the audit chain. All fields are set by Append and
// never mutated afterward.
type Block struct {
	Index    int       `json:"index"`
	Time     time.Time `json:"time"`
	Payload  []byte    `json:"payload"`
	PrevHash string    `json:"prev_hash"`
	Hash     string    `json:"hash"`
}

// digest computes a block's hash over its index, timestamp, payload, and
// previous-block hash. The timestamp enters as UTC nanoseconds so the hash
// survives serialization round trips.
func digest(index int, t time.Time, payload []byte, prevHash string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s|", index, t.UTC().UnixNano(), prevHash)
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Chain is an ordered sequence of blocks, genesis first. It is owned by a
// single driver per run and is not safe for concurrent use.
type Chain struct {
	Name   string  `json:"name"`
	Blocks []Block `json:"blocks"`
}

// New creates a chain containing only the genesis block.
func New(name string) *Chain {
	c := &Chain{Name: name}
	c.append(time.Now().UTC(), genesisPayload)
	return c
}

// Append adds a block carrying payload and returns it.
func (c *Chain) Append(payload []byte) Block {
	return c.append(time.Now().UTC(), payload)
}

func (c *Chain) append(t time.Time, payload []byte) Block {
	prev := GenesisHash
	index := len(c.Blocks)
	if index > 0 {
		prev = c.Blocks[index-1].Hash
	}
	b := Block{
		Index:    index,
		Time:     t,
		Payload:  payload,
		PrevHash: prev,
		Hash:     digest(index, t, payload, prev),
	}
	c.Blocks = append(c.Blocks, b)
	return b
}

// Len returns the number of blocks, genesis included.
func (c *Chain) Len() int { return len(c.Blocks) }

// Last returns the most recently appended block.
func (c *Chain) Last() Block { return c.Blocks[len(c.Blocks)-1] }

// IsValid walks the chain from genesis forward, recomputing every block's
// hash and checking each link against its predecessor. It never returns an
// error: a corrupted chain is simply not valid.
func (c *Chain) IsValid() bool {
	for i, b := range c.Blocks {
		if b.Index != i {
			return false
		}
		if b.Hash != digest(b.Index, b.Time, b.Payload, b.PrevHash) {
			return false
		}
		if i == 0 {
			if b.PrevHash != GenesisHash {
				return false
			}
			continue
		}
		prev := c.Blocks[i-1]
		if b.PrevHash != digest(prev.Index, prev.Time, prev.Payload, prev.PrevHash) {
			return false
		}
	}
	return true
}
