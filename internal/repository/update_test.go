package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBuilder(t *testing.T) {
	var b setBuilder
	assert.True(t, b.empty())

	b.add("name", "Roxy")
	b.add("total_rooms", 5)
	assert.False(t, b.empty())
	assert.Equal(t, "name = ?, total_rooms = ?", b.clause())
	assert.Equal(t, []interface{}{"Roxy", 5}, b.args)
}
