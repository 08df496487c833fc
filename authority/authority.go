// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority gates the privileged ledger operations. The ledger
// consults it as a precondition; role management itself lives outside the
// ledger.
package authority

import "github.com/archon-network/archon/archon"

// Authorizer answers whether a caller may invoke a privileged operation.
type Authorizer interface {
	CanSlash(caller archon.Address) bool
	CanSetRewards(caller archon.Address) bool
	CanRegisterNode(caller archon.Address) bool
	CanManageTiers(caller archon.Address) bool
}

// Static is a fixed allowlist authorizer. Admins may slash and set rewards;
// node registration is open to everyone unless restricted.
type Static struct {
	admins     map[archon.Address]bool
	openAccess bool
}

var _ Authorizer = (*Static)(nil)

// NewStatic creates an authorizer with the given admin set. With
// openRegistration, any address may register a node.
func NewStatic(admins []archon.Address, openRegistration bool) *Static {
	set := make(map[archon.Address]bool, len(admins))
	for _, a := range admins {
		set[a] = true
	}
	return &Static{admins: set, openAccess: openRegistration}
}

func (s *Static) CanSlash(caller archon.Address) bool {
	return s.admins[caller]
}

func (s *Static) CanSetRewards(caller archon.Address) bool {
	return s.admins[caller]
}

func (s *Static) CanRegisterNode(caller archon.Address) bool {
	return s.openAccess || s.admins[caller]
}

func (s *Static) CanManageTiers(caller archon.Address) bool {
	return s.admins[caller]
}
