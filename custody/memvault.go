// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custody

import (
	"math/big"
	"sync"

	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
)

// MemVault is an in-process vault keeping certificates and balances in
// memory. It backs tests and single-node deployments without an external
// custody service.
type MemVault struct {
	lock      sync.Mutex
	owners    map[archon.Bytes32]archon.Address
	deposited map[archon.Address]*big.Int
	rewards   map[archon.Address]*big.Int
}

var _ Vault = (*MemVault)(nil)

// NewMemVault creates an empty in-memory vault.
func NewMemVault() *MemVault {
	return &MemVault{
		owners:    make(map[archon.Bytes32]archon.Address),
		deposited: make(map[archon.Address]*big.Int),
		rewards:   make(map[archon.Address]*big.Int),
	}
}

func (v *MemVault) IssueCertificate(id archon.Bytes32, owner archon.Address) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	if _, ok := v.owners[id]; ok {
		return errors.Errorf("certificate %s already issued", id.AbbrevString())
	}
	v.owners[id] = owner
	return nil
}

func (v *MemVault) RedeemCertificate(id archon.Bytes32) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	if _, ok := v.owners[id]; !ok {
		return errors.Errorf("certificate %s not issued", id.AbbrevString())
	}
	delete(v.owners, id)
	return nil
}

func (v *MemVault) OwnerOf(id archon.Bytes32) (archon.Address, error) {
	v.lock.Lock()
	defer v.lock.Unlock()

	return v.owners[id], nil
}

func (v *MemVault) DepositPrincipal(owner archon.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative deposit")
	}
	v.lock.Lock()
	defer v.lock.Unlock()

	v.deposited[owner] = add(v.deposited[owner], amount)
	return nil
}

func (v *MemVault) WithdrawPrincipal(owner archon.Address, amount *big.Int) error {
	v.lock.Lock()
	defer v.lock.Unlock()

	cur := v.deposited[owner]
	if cur == nil || cur.Cmp(amount) < 0 {
		return errors.Errorf("insufficient custody balance for %s", owner)
	}
	v.deposited[owner] = new(big.Int).Sub(cur, amount)
	return nil
}

func (v *MemVault) PayReward(owner archon.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative reward")
	}
	v.lock.Lock()
	defer v.lock.Unlock()

	v.rewards[owner] = add(v.rewards[owner], amount)
	return nil
}

// Deposited returns the owner's principal currently held in custody.
func (v *MemVault) Deposited(owner archon.Address) *big.Int {
	v.lock.Lock()
	defer v.lock.Unlock()

	return add(nil, v.deposited[owner])
}

// RewardsPaid returns the total rewards paid out to the owner so far.
func (v *MemVault) RewardsPaid(owner archon.Address) *big.Int {
	v.lock.Lock()
	defer v.lock.Unlock()

	return add(nil, v.rewards[owner])
}

func add(a, b *big.Int) *big.Int {
	sum := new(big.Int)
	if a != nil {
		sum.Set(a)
	}
	if b != nil {
		sum.Add(sum, b)
	}
	return sum
}
