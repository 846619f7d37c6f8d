package model

// Follow is a directed edge follower -> followee.
type Follow struct {
	Follower string `db:"follower" json:"follower"`
	Followee string `db:"followee" json:"followee"`
}

type FollowListResponse struct {
	Accounts []string `json:"accounts"`
}

type FollowStatusResponse struct {
	IsFollowing bool `json:"is_following"`
}
