package subscription

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filevault/botcore/internal/platform"
)

func checkerFor(members map[int64]platform.MemberStatus) MembershipChecker {
	return func(ctx context.Context, chatID, principalID int64) (platform.Member, error) {
		status, ok := members[chatID]
		if !ok {
			status = platform.MemberStatusLeft
		}
		return platform.Member{UserID: principalID, Status: status}, nil
	}
}

func TestCheckPassesWhenNoChannelsRequired(t *testing.T) {
	g := New(checkerFor(nil), nil)
	ok, pending := g.Check(context.Background(), 1, nil)
	assert.True(t, ok)
	assert.Nil(t, pending)
}

func TestCheckBypassesExemptPrincipals(t *testing.T) {
	g := New(checkerFor(nil), func(id int64) bool { return id == 1 })
	ok, pending := g.Check(context.Background(), 1, []RequiredChannel{{ChatID: 100}})
	assert.True(t, ok)
	assert.Nil(t, pending)
}

func TestCheckPassesWhenMember(t *testing.T) {
	g := New(checkerFor(map[int64]platform.MemberStatus{100: platform.MemberStatusMember}), nil)
	ok, pending := g.Check(context.Background(), 1, []RequiredChannel{{ChatID: 100}})
	require.True(t, ok)
	assert.Nil(t, pending)
}

func TestCheckReportsMissingChannels(t *testing.T) {
	g := New(checkerFor(map[int64]platform.MemberStatus{100: platform.MemberStatusMember}), nil)
	ok, pending := g.Check(context.Background(), 1, []RequiredChannel{{ChatID: 100}, {ChatID: 200, Username: "required"}})
	require.False(t, ok)
	require.NotNil(t, pending)
	require.Len(t, pending.Missing, 1)
	assert.Equal(t, int64(200), pending.Missing[0].ChatID)
}

func TestCheckTreatsLeftAndBannedAsNotSubscribed(t *testing.T) {
	g := New(checkerFor(map[int64]platform.MemberStatus{
		100: platform.MemberStatusLeft,
		200: platform.MemberStatusBanned,
	}), nil)
	ok, pending := g.Check(context.Background(), 1, []RequiredChannel{{ChatID: 100}, {ChatID: 200}})
	require.False(t, ok)
	require.Len(t, pending.Missing, 2)
}
