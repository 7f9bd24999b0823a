package vkapi

// Type identifies the kind of object a like is attached to.
type Type string

const (
	TypePost          Type = "post"
	TypeComment       Type = "comment"
	TypePhoto         Type = "photo"
	TypeAudio         Type = "audio"
	TypeVideo         Type = "video"
	TypeNote          Type = "note"
	TypeMarket        Type = "market"
	TypePhotoComment  Type = "photo_comment"
	TypeVideoComment  Type = "video_comment"
	TypeTopicComment  Type = "topic_comment"
	TypeMarketComment Type = "market_comment"
	TypeSitepage      Type = "sitepage"
)

// AllTypes lists every Type the likes methods accept.
var AllTypes = []Type{
	TypePost,
	TypeComment,
	TypePhoto,
	TypeAudio,
	TypeVideo,
	TypeNote,
	TypeMarket,
	TypePhotoComment,
	TypeVideoComment,
	TypeTopicComment,
	TypeMarketComment,
	TypeSitepage,
}

// Valid reports whether t is one of AllTypes.
func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BoolInt is the API's 0/1 boolean encoding.
type BoolInt int

const (
	No  BoolInt = 0
	Yes BoolInt = 1
)

func (b BoolInt) Bool() bool { return b == Yes }

func (b BoolInt) String() string {
	if b == Yes {
		return "yes"
	}
	return "no"
}

// UserActor identifies the user on whose behalf a call is made.
type UserActor struct {
	ID          int
	AccessToken string
}

// UserAuthResponse is the result of an authorization-code exchange.
type UserAuthResponse struct {
	UserID      int
	AccessToken string
	ExpiresIn   int
}

type AddResponse struct {
	Likes int `json:"likes"`
}

type DeleteResponse struct {
	Likes int `json:"likes"`
}

type GetListResponse struct {
	Count int   `json:"count"`
	Items []int `json:"items"`
}

type IsLikedResponse struct {
	Liked  BoolInt `json:"liked"`
	Copied BoolInt `json:"copied"`
}
