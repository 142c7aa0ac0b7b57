package cancel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCancel(t *testing.T) {
	token := NewToken()
	require.False(t, token.Fired())

	token.Cancel("user navigated away")
	require.True(t, token.Fired())

	cause := context.Cause(token.Context())
	var ce *CanceledError
	require.ErrorAs(t, cause, &ce)
	assert.Equal(t, "user navigated away", ce.Reason)
}

func TestTokenCancelIdempotent(t *testing.T) {
	token := NewToken()
	token.Cancel("first")
	token.Cancel("second")

	var ce *CanceledError
	require.ErrorAs(t, context.Cause(token.Context()), &ce)
	assert.Equal(t, "first", ce.Reason, "first cancellation reason must win")
}

func TestGroupCancel(t *testing.T) {
	group := NewGroup()
	require.False(t, group.Fired())

	group.Cancel("shutdown")
	require.True(t, group.Fired())
	assert.True(t, IsExplicit(context.Cause(group.Context())))
}

func TestCanceledErrorMessage(t *testing.T) {
	assert.Equal(t, "request canceled", (&CanceledError{}).Error())
	assert.Equal(t, "request canceled: told to", (&CanceledError{Reason: "told to"}).Error())
}

func TestClassification(t *testing.T) {
	assert.True(t, IsExplicit(&CanceledError{Reason: "x"}))
	assert.False(t, IsExplicit(ErrAttemptTimeout))
	assert.False(t, IsExplicit(context.DeadlineExceeded))

	assert.True(t, IsTimeout(ErrAttemptTimeout))
	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.False(t, IsTimeout(&CanceledError{}))
}

func TestComposeFiresWhenAnyParentFires(t *testing.T) {
	token := NewToken()
	group := NewGroup()

	ctx, stop := Compose(context.Background(), token.Context(), group.Context())
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("derived context fired before any parent")
	default:
	}

	group.Cancel("group down")

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("derived context did not fire after parent fired")
	}

	require.True(t, IsExplicit(context.Cause(ctx)))
}

func TestComposeAlreadyFiredParent(t *testing.T) {
	token := NewToken()
	token.Cancel("pre-fired")

	ctx, stop := Compose(context.Background(), token.Context())
	defer stop()

	require.Error(t, ctx.Err())
	assert.True(t, IsExplicit(context.Cause(ctx)))
}

func TestComposeIgnoresNilParents(t *testing.T) {
	ctx, stop := Compose(nil, nil)

	select {
	case <-ctx.Done():
		t.Fatal("derived context fired with no live parents")
	default:
	}

	stop()
	require.Error(t, ctx.Err())
}

func TestComposeParentStaysObservable(t *testing.T) {
	token := NewToken()
	ctx, stop := Compose(token.Context())
	stop()

	require.Error(t, ctx.Err())
	assert.False(t, token.Fired(), "stopping the composition must not cancel the parent")
}

func TestWithAttemptTimeoutFires(t *testing.T) {
	ctx, cancel := WithAttemptTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("attempt timeout did not fire")
	}

	assert.True(t, IsTimeout(context.Cause(ctx)))
	assert.False(t, IsExplicit(context.Cause(ctx)))
}

func TestWithAttemptTimeoutDisarm(t *testing.T) {
	ctx, cancel := WithAttemptTimeout(context.Background(), 20*time.Millisecond)
	cancel()

	time.Sleep(40 * time.Millisecond)
	assert.NotErrorIs(t, context.Cause(ctx), ErrAttemptTimeout, "disarmed timer must not fire as timeout")
}

func TestWithAttemptTimeoutZeroIsNoop(t *testing.T) {
	parent := context.Background()
	ctx, cancel := WithAttemptTimeout(parent, 0)
	defer cancel()

	assert.Equal(t, parent, ctx)
}
