package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/recipe-ai/backend/internal/testhelpers"
)

func TestRecoverAndExitClosesResources(t *testing.T) {
	log := testhelpers.Logger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var closed []string
	res := &resources{log: log}
	res.add("database", func() error {
		closed = append(closed, "database")
		return nil
	})
	res.add("redis", func() error {
		closed = append(closed, "redis")
		return errors.New("already closed")
	})

	code := -1
	func() {
		defer recoverAndExit(log, cancel, res, func(c int) { code = c })
		panic("boom")
	}()

	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"redis", "database"}, closed)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	res.Close()
	assert.Len(t, closed, 2)
}

func TestRecoverAndExitWithoutPanic(t *testing.T) {
	res := &resources{log: testhelpers.Logger()}
	called := false
	res.add("database", func() error {
		called = true
		return nil
	})

	code := -1
	func() {
		defer recoverAndExit(res.log, func() {}, res, func(c int) { code = c })
	}()

	assert.Equal(t, -1, code)
	assert.False(t, called)
}
