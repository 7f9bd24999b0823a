package likestests

import (
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/vkqa/likes-contract-tests/vkapi"
)

const (
	defaultItemID     = 1
	nonexistentItemID = 666

	// Owners whose posts the test user cannot reach. Owner 1's wall rejects with an access
	// error, owner 2's profile is private.
	accessDeniedOwnerID   = 1
	privateProfileOwnerID = 2

	// Random item ids for the "not liked" check are drawn from this range.
	minUnlikedItemID = 2
	maxUnlikedItemID = 21
)

const (
	TagSetup = "setup"
	TagSmoke = "smoke"
	TagLikes = "likes"
)

// Scenario names that other scenarios depend on.
const (
	resetLikeState = "reset like state"
	addLikeToPost  = "add like to post"
	deleteLikeFrom = "delete like from post"
)

// Scenario is one named test in the suite.
type Scenario struct {
	Name        string
	Description string
	Tags        []string
	Priority    ldvalue.OptionalInt
	Requires    []string
	Run         func(*T)
}

// AllScenarios is the whole suite in declaration order. Run order is decided by framework.Plan.
var AllScenarios = []Scenario{
	{
		Name:        resetLikeState,
		Description: "removes a like left on the default post by an earlier run",
		Tags:        []string{TagSetup},
		Priority:    ldvalue.NewOptionalInt(-1),
		Run:         doResetLikeState,
	},
	{
		Name:        addLikeToPost,
		Description: "likes the user's own post",
		Tags:        []string{TagSmoke, TagLikes},
		Priority:    ldvalue.NewOptionalInt(0),
		Requires:    []string{resetLikeState},
		Run:         doAddLikeToPost,
	},
	{
		Name:        "add like with private owner",
		Description: "liking a post on a private profile is rejected",
		Tags:        []string{TagLikes},
		Run:         doAddLikeWithPrivateOwner,
	},
	{
		Name:        "is liked",
		Description: "the liked post is reported as liked and a random other post is not",
		Tags:        []string{TagSmoke, TagLikes},
		Priority:    ldvalue.NewOptionalInt(1),
		Requires:    []string{addLikeToPost},
		Run:         doIsLiked,
	},
	{
		Name:        "is liked with private owner",
		Description: "checking a like on an inaccessible wall is rejected",
		Tags:        []string{TagLikes},
		Run:         doIsLikedWithPrivateOwner,
	},
	{
		Name:        "get likes owners",
		Description: "the user is the only one in the post's list of likers",
		Tags:        []string{TagSmoke, TagLikes},
		Priority:    ldvalue.NewOptionalInt(2),
		Requires:    []string{addLikeToPost},
		Run:         doGetLikesOwners,
	},
	{
		Name:        "get likes owners without item id",
		Description: "listing likers without an item id is a parameter error",
		Tags:        []string{TagLikes},
		Run:         doGetLikesOwnersWithoutItemID,
	},
	{
		Name:        deleteLikeFrom,
		Description: "removes the like added earlier",
		Tags:        []string{TagSmoke, TagLikes},
		Priority:    ldvalue.NewOptionalInt(3),
		Requires:    []string{addLikeToPost},
		Run:         doDeleteLikeFromPost,
	},
	{
		Name:        "delete nonexistent like",
		Description: "removing a like that was never added is rejected",
		Tags:        []string{TagLikes},
		Run:         doDeleteNonexistentLike,
	},
	{
		Name:        "like state restored",
		Description: "the default post is no longer liked after the run",
		Tags:        []string{TagSmoke, TagLikes},
		Priority:    ldvalue.NewOptionalInt(4),
		Requires:    []string{deleteLikeFrom},
		Run:         doLikeStateRestored,
	},
}

func doResetLikeState(t *T) {
	liked, err := t.Likes().IsLiked(t.Actor(), vkapi.TypePost, defaultItemID).Execute(t.Ctx())
	require.NoError(t, err)
	if !liked.Liked.Bool() {
		t.Debug("post %d is not liked, nothing to reset", defaultItemID)
		return
	}

	t.Debug("removing like left on post %d", defaultItemID)
	t.Expect(
		Observe(t.Likes().Delete(t.Actor(), vkapi.TypePost, defaultItemID).OwnerID(t.UserID()).Execute(t.Ctx())),
		ExpectSuccess(),
	)
	after, err := t.Likes().IsLiked(t.Actor(), vkapi.TypePost, defaultItemID).Execute(t.Ctx())
	require.NoError(t, err)
	require.Equal(t, vkapi.No, after.Liked, "like was not removed")
}

func doAddLikeToPost(t *T) {
	t.Expect(
		Observe(t.Likes().Add(t.Actor(), vkapi.TypePost, defaultItemID).OwnerID(t.UserID()).Execute(t.Ctx())),
		ExpectResponse(vkapi.AddResponse{Likes: 1}),
	)
}

func doAddLikeWithPrivateOwner(t *T) {
	t.Expect(
		Observe(t.Likes().Add(t.Actor(), vkapi.TypePost, defaultItemID).OwnerID(privateProfileOwnerID).Execute(t.Ctx())),
		ExpectFailure(vkapi.CategoryPrivateProfile, vkapi.CodePrivateProfile),
	)
}

func doIsLiked(t *T) {
	rows := []struct {
		name     string
		itemID   int
		expected vkapi.IsLikedResponse
	}{
		{"liked post", defaultItemID, vkapi.IsLikedResponse{Liked: vkapi.Yes, Copied: vkapi.No}},
		{"random unliked post", t.randomItemID(minUnlikedItemID, maxUnlikedItemID), vkapi.IsLikedResponse{Liked: vkapi.No, Copied: vkapi.No}},
	}
	for _, row := range rows {
		row := row
		t.Run(row.name, func(t *T) {
			t.Debug("checking post %d", row.itemID)
			t.Expect(
				Observe(t.Likes().IsLiked(t.Actor(), vkapi.TypePost, row.itemID).Execute(t.Ctx())),
				ExpectResponse(row.expected),
			)
		})
	}
}

func doIsLikedWithPrivateOwner(t *T) {
	t.Expect(
		Observe(t.Likes().IsLiked(t.Actor(), vkapi.TypePost, defaultItemID).OwnerID(accessDeniedOwnerID).Execute(t.Ctx())),
		ExpectFailure(vkapi.CategoryAccess, vkapi.CodeAccessDenied),
	)
}

func doGetLikesOwners(t *T) {
	t.Expect(
		Observe(t.Likes().GetList(t.Actor(), vkapi.TypePost).ItemID(defaultItemID).Execute(t.Ctx())),
		ExpectResponse(vkapi.GetListResponse{Count: 1, Items: []int{t.UserID()}}),
	)
}

func doGetLikesOwnersWithoutItemID(t *T) {
	t.Expect(
		Observe(t.Likes().GetList(t.Actor(), vkapi.TypePost).Execute(t.Ctx())),
		ExpectFailure(vkapi.CategoryParam, vkapi.CodeParam),
	)
}

func doDeleteLikeFromPost(t *T) {
	t.Expect(
		Observe(t.Likes().Delete(t.Actor(), vkapi.TypePost, defaultItemID).OwnerID(t.UserID()).Execute(t.Ctx())),
		ExpectResponse(vkapi.DeleteResponse{Likes: 0}),
	)
}

func doDeleteNonexistentLike(t *T) {
	t.Expect(
		Observe(t.Likes().Delete(t.Actor(), vkapi.TypePost, nonexistentItemID).OwnerID(t.UserID()).Execute(t.Ctx())),
		ExpectFailure(vkapi.CategoryAccess, vkapi.CodeAccessDenied),
	)
}

func doLikeStateRestored(t *T) {
	t.Expect(
		Observe(t.Likes().IsLiked(t.Actor(), vkapi.TypePost, defaultItemID).Execute(t.Ctx())),
		ExpectResponse(vkapi.IsLikedResponse{Liked: vkapi.No, Copied: vkapi.No}),
	)
}
