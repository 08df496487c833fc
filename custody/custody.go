// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package custody defines the ledger's view of principal-token custody and
// ownership certificates. The ledger never manages token balances itself; it
// calls the vault on stake creation, withdrawal and redemption.
package custody

import (
	"math/big"

	"github.com/archon-network/archon/archon"
)

// Vault issues ownership certificates for positions and moves principal and
// reward tokens between the protocol and its participants.
type Vault interface {
	// IssueCertificate records owner as the holder of the position.
	IssueCertificate(id archon.Bytes32, owner archon.Address) error
	// RedeemCertificate invalidates the position's certificate.
	RedeemCertificate(id archon.Bytes32) error
	// OwnerOf returns the certificate holder, or the zero address if the
	// certificate was never issued or has been redeemed.
	OwnerOf(id archon.Bytes32) (archon.Address, error)

	// DepositPrincipal locks amount of the owner's tokens into custody.
	DepositPrincipal(owner archon.Address, amount *big.Int) error
	// WithdrawPrincipal releases amount from custody back to the owner.
	WithdrawPrincipal(owner archon.Address, amount *big.Int) error
	// PayReward transfers amount of reward tokens to the owner.
	PayReward(owner archon.Address, amount *big.Int) error
}
