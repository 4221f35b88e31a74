package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("line 2: %w", NotFound("Cart item 5 not found"))
	tx := TransactionFailure(err)

	assert.True(t, errors.Is(tx, ErrTransactionFailure))
	assert.True(t, errors.Is(tx, ErrNotFound))
	assert.False(t, errors.Is(tx, ErrValidation))
	assert.Equal(t, KindTransactionFailure, KindOf(tx))
}

func TestStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         http.StatusBadRequest,
		KindMissingIdentity:    http.StatusBadRequest,
		KindNotFound:           http.StatusNotFound,
		KindAuthFailure:        http.StatusUnauthorized,
		KindForbidden:          http.StatusForbidden,
		KindTransactionFailure: http.StatusInternalServerError,
		KindInternal:           http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestPublic(t *testing.T) {
	msg, details := Public(Validation("Quantity must be a positive integer"))
	assert.Equal(t, "Quantity must be a positive integer", msg)
	assert.Empty(t, details)

	msg, details = Public(TransactionFailure(NotFound("Cart item 9 not found")))
	assert.Equal(t, "Transaction failed: Cart item 9 not found", msg)
	assert.Equal(t, "Cart item 9 not found", details)

	msg, details = Public(errors.New("connection refused"))
	assert.Equal(t, "Internal server error", msg)
	assert.Equal(t, "connection refused", details)
}
