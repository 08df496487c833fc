// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/storage"
)

// Doubly linked list of a node's positions, built on top of the position
// struct. Entries are stored outside the list; keeping the links inline
// avoids a second lookup table when iterating.

var slotNodeLists = storage.NameToSlot("node-position-lists")

type listMeta struct {
	Head *archon.Bytes32 `rlp:"nil"`
	Tail *archon.Bytes32 `rlp:"nil"`
	Size uint64
}

type lists struct {
	meta *storage.Mapping[archon.Address, *listMeta]
}

func newLists(sctx *storage.Context) *lists {
	return &lists{
		meta: storage.NewMapping[archon.Address, *listMeta](sctx, slotNodeLists),
	}
}

// link appends the position to the node's list tail.
func (l *lists) link(s *Service, node archon.Address, id archon.Bytes32, entry *Position) error {
	meta, err := l.meta.Get(node)
	if err != nil {
		return err
	}

	if meta.Tail == nil {
		head := id
		meta.Head = &head
	} else {
		tailEntry, err := s.Get(*meta.Tail)
		if err != nil {
			return err
		}
		if tailEntry.IsEmpty() {
			return errors.New("tail entry is empty")
		}
		next := id
		tailEntry.Next = &next
		if err := s.Set(*meta.Tail, tailEntry); err != nil {
			return err
		}
		prev := *meta.Tail
		entry.Prev = &prev
	}

	tail := id
	meta.Tail = &tail
	meta.Size++
	return l.meta.Set(node, meta)
}

// unlink removes the position from the node's list.
func (l *lists) unlink(s *Service, node archon.Address, id archon.Bytes32, entry *Position) error {
	meta, err := l.meta.Get(node)
	if err != nil {
		return err
	}
	if meta.Size == 0 {
		return errors.New("unlink from empty list")
	}

	if entry.Prev == nil {
		// entry is the head
		if meta.Head == nil || *meta.Head != id {
			return errors.New("entry is not linked")
		}
		meta.Head = entry.Next
	} else {
		prevEntry, err := s.Get(*entry.Prev)
		if err != nil {
			return err
		}
		if prevEntry.IsEmpty() {
			return errors.New("prev entry is empty")
		}
		prevEntry.Next = entry.Next
		if err := s.Set(*entry.Prev, prevEntry); err != nil {
			return err
		}
	}

	if entry.Next == nil {
		// entry is the tail
		meta.Tail = entry.Prev
	} else {
		nextEntry, err := s.Get(*entry.Next)
		if err != nil {
			return err
		}
		if nextEntry.IsEmpty() {
			return errors.New("next entry is empty")
		}
		nextEntry.Prev = entry.Prev
		if err := s.Set(*entry.Next, nextEntry); err != nil {
			return err
		}
	}

	entry.Prev = nil
	entry.Next = nil
	meta.Size--
	return l.meta.Set(node, meta)
}

// forEach walks the node's list from head to tail.
func (l *lists) forEach(s *Service, node archon.Address, fn func(id archon.Bytes32, entry *Position) error) error {
	meta, err := l.meta.Get(node)
	if err != nil {
		return err
	}
	next := meta.Head
	for next != nil {
		id := *next
		entry, err := s.Get(id)
		if err != nil {
			return err
		}
		if entry.IsEmpty() {
			return errors.Errorf("linked position %s is empty", id.AbbrevString())
		}
		next = entry.Next
		if err := fn(id, entry); err != nil {
			return err
		}
	}
	return nil
}
