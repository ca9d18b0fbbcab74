package channel

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParamSpec(t *testing.T) {
	params := []Param{
		"A",
		nil,
		true,
		3,
		nil,
	}

	var (
		a   string
		b   bool
		c   int
		opt int
	)

	check := ParamSpec(4,
		AssertAndStore(&a),
		nil,
		AssertAndStore(&b),
		AssertAndStore(&c),
		Optional(AssertAndStore(&opt)),
	)
	assert.NoError(t, check(params))
	assert.Equal(t, "A", a)
	assert.Equal(t, true, b)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0, opt)
}

func TestParamSpec_Errors(t *testing.T) {
	var s string
	assert.ErrorIs(t, ParamSpec(2, AssertAndStore(&s))([]Param{"a"}), ErrNotEnoughParams)
	assert.ErrorIs(t, MapParam(&s, []Param{5}), ErrUnexpectedParam)
	assert.Error(t, ParamSpec(1, AssertAndStore[string](nil))([]Param{"a"}))
}

func TestMapParam_InListener(t *testing.T) {
	ch := newTestChannel(t)
	_, err := ch.Subscribe(testEvent, func(params ...Param) any {
		var n int
		if err := MapParam(&n, params); err != nil {
			return err
		}
		return n * 2
	})
	assert.NoError(t, err)
	result, ok := ch.PublishSync(testEvent, 5)
	assert.True(t, ok)
	assert.Equal(t, 10, result)

	result, ok = ch.PublishSync(testEvent, "five")
	assert.True(t, ok)
	assert.ErrorIs(t, result.(error), ErrUnexpectedParam)
}
