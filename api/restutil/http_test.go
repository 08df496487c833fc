// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-network/archon/ledger/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"nil error", nil, http.StatusOK},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest},
		{"forbidden", Forbidden(errors.New("no")), http.StatusForbidden},
		{"not found", NotFound(errors.New("gone")), http.StatusNotFound},
		{"custom status", HTTPError(errors.New("slow down"), http.StatusTooManyRequests), http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tc.err })
			h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestConvertRevert(t *testing.T) {
	rec := httptest.NewRecorder()
	h := WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
		return ConvertRevert(reverts.EntityNotFound("no such thing"))
	})
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h = WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
		return ConvertRevert(reverts.NotOwner("not yours"))
	})
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	h = WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
		return ConvertRevert(reverts.InvalidEpoch("too early"))
	})
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.NoError(t, ConvertRevert(nil))
}

func TestParseJSONStrict(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"a":1,"b":2}`), &v))
}
