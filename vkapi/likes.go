package vkapi

import (
	"context"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Likes builds requests for the likes.* methods. Each builder is used once: set the optional
// parameters, then call Execute.
type Likes struct {
	client *Client
}

func newParams(targetType Type) params {
	return params{}.setString("type", string(targetType))
}

// AddQuery is a likes.add request.
type AddQuery struct {
	likes      *Likes
	actor      UserActor
	targetType Type
	itemID     int
	ownerID    ldvalue.OptionalInt
	accessKey  string
}

// Add adds the item to the actor's likes list.
func (l *Likes) Add(actor UserActor, targetType Type, itemID int) *AddQuery {
	return &AddQuery{likes: l, actor: actor, targetType: targetType, itemID: itemID}
}

// OwnerID sets the owner of the item. The API defaults it to the actor.
func (q *AddQuery) OwnerID(ownerID int) *AddQuery {
	q.ownerID = ldvalue.NewOptionalInt(ownerID)
	return q
}

// AccessKey sets the access key for items in private groups.
func (q *AddQuery) AccessKey(accessKey string) *AddQuery {
	q.accessKey = accessKey
	return q
}

func (q *AddQuery) Execute(ctx context.Context) (AddResponse, error) {
	p := newParams(q.targetType).
		setInt("item_id", q.itemID).
		setOptionalInt("owner_id", q.ownerID)
	if q.accessKey != "" {
		p.setString("access_key", q.accessKey)
	}
	var resp AddResponse
	err := q.likes.client.call(ctx, "likes.add", q.actor, p, &resp)
	return resp, err
}

// DeleteQuery is a likes.delete request.
type DeleteQuery struct {
	likes      *Likes
	actor      UserActor
	targetType Type
	itemID     int
	ownerID    ldvalue.OptionalInt
}

// Delete removes the item from the actor's likes list.
func (l *Likes) Delete(actor UserActor, targetType Type, itemID int) *DeleteQuery {
	return &DeleteQuery{likes: l, actor: actor, targetType: targetType, itemID: itemID}
}

func (q *DeleteQuery) OwnerID(ownerID int) *DeleteQuery {
	q.ownerID = ldvalue.NewOptionalInt(ownerID)
	return q
}

func (q *DeleteQuery) Execute(ctx context.Context) (DeleteResponse, error) {
	p := newParams(q.targetType).
		setInt("item_id", q.itemID).
		setOptionalInt("owner_id", q.ownerID)
	var resp DeleteResponse
	err := q.likes.client.call(ctx, "likes.delete", q.actor, p, &resp)
	return resp, err
}

// GetListQuery is a likes.getList request. The item id is optional at the builder level so that
// its absence can be tested against the API.
type GetListQuery struct {
	likes      *Likes
	actor      UserActor
	targetType Type
	itemID     ldvalue.OptionalInt
	ownerID    ldvalue.OptionalInt
	offset     ldvalue.OptionalInt
	count      ldvalue.OptionalInt
	filter     string
}

// GetList returns the ids of users who liked an item.
func (l *Likes) GetList(actor UserActor, targetType Type) *GetListQuery {
	return &GetListQuery{likes: l, actor: actor, targetType: targetType}
}

func (q *GetListQuery) ItemID(itemID int) *GetListQuery {
	q.itemID = ldvalue.NewOptionalInt(itemID)
	return q
}

func (q *GetListQuery) OwnerID(ownerID int) *GetListQuery {
	q.ownerID = ldvalue.NewOptionalInt(ownerID)
	return q
}

func (q *GetListQuery) Offset(offset int) *GetListQuery {
	q.offset = ldvalue.NewOptionalInt(offset)
	return q
}

func (q *GetListQuery) Count(count int) *GetListQuery {
	q.count = ldvalue.NewOptionalInt(count)
	return q
}

// Filter selects "likes" or "copies".
func (q *GetListQuery) Filter(filter string) *GetListQuery {
	q.filter = filter
	return q
}

func (q *GetListQuery) Execute(ctx context.Context) (GetListResponse, error) {
	p := newParams(q.targetType).
		setOptionalInt("item_id", q.itemID).
		setOptionalInt("owner_id", q.ownerID).
		setOptionalInt("offset", q.offset).
		setOptionalInt("count", q.count)
	if q.filter != "" {
		p.setString("filter", q.filter)
	}
	var resp GetListResponse
	err := q.likes.client.call(ctx, "likes.getList", q.actor, p, &resp)
	return resp, err
}

// IsLikedQuery is a likes.isLiked request.
type IsLikedQuery struct {
	likes      *Likes
	actor      UserActor
	targetType Type
	itemID     int
	ownerID    ldvalue.OptionalInt
	userID     ldvalue.OptionalInt
}

// IsLiked checks whether a user has the item in their likes list.
func (l *Likes) IsLiked(actor UserActor, targetType Type, itemID int) *IsLikedQuery {
	return &IsLikedQuery{likes: l, actor: actor, targetType: targetType, itemID: itemID}
}

func (q *IsLikedQuery) OwnerID(ownerID int) *IsLikedQuery {
	q.ownerID = ldvalue.NewOptionalInt(ownerID)
	return q
}

// UserID sets the user to check. The API defaults it to the actor.
func (q *IsLikedQuery) UserID(userID int) *IsLikedQuery {
	q.userID = ldvalue.NewOptionalInt(userID)
	return q
}

func (q *IsLikedQuery) Execute(ctx context.Context) (IsLikedResponse, error) {
	p := newParams(q.targetType).
		setInt("item_id", q.itemID).
		setOptionalInt("owner_id", q.ownerID).
		setOptionalInt("user_id", q.userID)
	var resp IsLikedResponse
	err := q.likes.client.call(ctx, "likes.isLiked", q.actor, p, &resp)
	return resp, err
}
