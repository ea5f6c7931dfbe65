package conversation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/widgetlabs/chatbot-widget/internal/model/chat"
	"github.com/widgetlabs/chatbot-widget/internal/service/conversation"
)

func TestAppendReturnsPosition(t *testing.T) {
	store := conversation.NewStore(nil)

	assert.Equal(t, 0, store.Append(chat.NewMessage(chat.SenderSelf, "hi")))
	assert.Equal(t, 1, store.Append(chat.NewPlaceholder()))
	assert.Equal(t, 2, store.Len())
}

func TestUpdateAtPartialPatch(t *testing.T) {
	store := conversation.NewStore(nil)
	store.Append(chat.NewPlaceholder())

	text := "Hel"
	store.UpdateAt(0, conversation.Patch{Text: &text})

	got := store.Snapshot()[0]
	assert.Equal(t, "Hel", got.Text)
	assert.True(t, got.IsTyping, "patch without IsTyping must not touch the flag")

	typing := false
	store.UpdateAt(0, conversation.Patch{IsTyping: &typing})
	got = store.Snapshot()[0]
	assert.Equal(t, "Hel", got.Text)
	assert.False(t, got.IsTyping)
}

func TestUpdateAtOutOfBoundsIsNoop(t *testing.T) {
	store := conversation.NewStore(nil)
	store.Append(chat.NewMessage(chat.SenderSelf, "hi"))

	text := "stale"
	store.UpdateAt(5, conversation.Patch{Text: &text})
	store.UpdateAt(-1, conversation.Patch{Text: &text})

	assert.Equal(t, "hi", store.Snapshot()[0].Text)
}

func TestClearInvalidatesIndices(t *testing.T) {
	store := conversation.NewStore(nil)
	index := store.Append(chat.NewPlaceholder())

	store.Clear()
	require.Equal(t, 0, store.Len())

	// A reveal tick racing the clear must be swallowed.
	text := "stale"
	store.UpdateAt(index, conversation.Patch{Text: &text})
	assert.Equal(t, 0, store.Len())
}

func TestReactions(t *testing.T) {
	store := conversation.NewStore(nil)
	store.Append(chat.NewMessage(chat.SenderSelf, "hi"))
	store.Append(chat.NewMessage(chat.SenderAssistant, "yo"))

	store.LikeAt(1)
	store.LikeAt(1)
	store.DislikeAt(1)

	got := store.Snapshot()[1]
	assert.Equal(t, 2, got.Likes)
	assert.Equal(t, 1, got.Dislikes)

	// Self messages and bad indices are no-ops.
	store.LikeAt(0)
	store.DislikeAt(0)
	store.LikeAt(7)

	snap := store.Snapshot()
	assert.Zero(t, snap[0].Likes)
	assert.Zero(t, snap[0].Dislikes)
}

func TestEveryMutationNotifies(t *testing.T) {
	calls := 0
	store := conversation.NewStore(func() { calls++ })

	store.Append(chat.NewMessage(chat.SenderAssistant, "yo"))
	text := "y"
	store.UpdateAt(0, conversation.Patch{Text: &text})
	store.LikeAt(0)
	store.DislikeAt(0)
	store.Clear()

	assert.Equal(t, 5, calls)
}

func TestNotifyReadsBackConsistentState(t *testing.T) {
	var store *conversation.Store
	var observed []int
	store = conversation.NewStore(func() {
		observed = append(observed, store.Len())
	})

	store.Append(chat.NewMessage(chat.SenderSelf, "a"))
	store.Append(chat.NewMessage(chat.SenderSelf, "b"))
	store.Clear()

	assert.Equal(t, []int{1, 2, 0}, observed)
}

func TestAppendIfHonorsGuard(t *testing.T) {
	store := conversation.NewStore(nil)

	index, ok := store.AppendIf(chat.NewMessage(chat.SenderSelf, "hi"), func() bool { return true })
	require.True(t, ok)
	assert.Equal(t, 0, index)

	index, ok = store.AppendIf(chat.NewPlaceholder(), func() bool { return false })
	assert.False(t, ok)
	assert.Equal(t, -1, index)
	assert.Equal(t, 1, store.Len(), "failed guard must not insert")
}

func TestAppendIfFailureDoesNotNotify(t *testing.T) {
	calls := 0
	store := conversation.NewStore(func() { calls++ })

	store.AppendIf(chat.NewPlaceholder(), func() bool { return false })
	assert.Zero(t, calls)

	store.AppendIf(chat.NewPlaceholder(), func() bool { return true })
	assert.Equal(t, 1, calls)
}

func TestUpdateAtIfHonorsGuard(t *testing.T) {
	store := conversation.NewStore(nil)
	store.Append(chat.NewPlaceholder())

	text := "par"
	applied := store.UpdateAtIf(0, conversation.Patch{Text: &text}, func() bool { return false })
	assert.False(t, applied)
	assert.Equal(t, "", store.Snapshot()[0].Text)

	applied = store.UpdateAtIf(0, conversation.Patch{Text: &text}, func() bool { return true })
	assert.True(t, applied)
	assert.Equal(t, "par", store.Snapshot()[0].Text)

	applied = store.UpdateAtIf(4, conversation.Patch{Text: &text}, func() bool { return true })
	assert.False(t, applied, "out of bounds reports not applied")
}

func TestSnapshotIsACopy(t *testing.T) {
	store := conversation.NewStore(nil)
	store.Append(chat.NewMessage(chat.SenderAssistant, "yo"))

	snap := store.Snapshot()
	snap[0].Text = "mutated"

	assert.Equal(t, "yo", store.Snapshot()[0].Text)
}
